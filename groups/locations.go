package groups

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/bpdavis86/planning-center-backend/backend"
	"github.com/bpdavis86/planning-center-backend/maps"
)

// SharedLocationsProvider lists the tenant-wide locations through the
// v2 API. The v2 endpoint has no write access and hands back ids a
// given group cannot always use, so writes go through the per-group
// LocationsProvider instead.
type SharedLocationsProvider struct {
	client *backend.Client
}

// Query lists all shared locations. The endpoint supports no filter
// parameters.
func (p *SharedLocationsProvider) Query(ctx context.Context) ([]LocationData, error) {
	return backend.QueryAll[LocationData](ctx, p.client, p.client.Endpoints.GroupsLocationsAPI(), nil, 0)
}

// LocationsProvider manages one group's meeting locations through the
// groups v1 JSON endpoints, which unlike v2 accept writes.
type LocationsProvider struct {
	client  *backend.Client
	groupID int64
}

func (p *LocationsProvider) settingsURL() string {
	return fmt.Sprintf("%s/%d/settings", p.client.Endpoints.GroupsFrontend(), p.groupID)
}

// Query lists the locations this group can use, shared ones included.
func (p *LocationsProvider) Query(ctx context.Context) ([]LocationV1, error) {
	body, err := p.client.GetJSON(ctx, p.client.Endpoints.GroupLocationsV1API(p.groupID), nil)
	if err != nil {
		return nil, err
	}
	var res locationV1Response
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, err
	}
	return res.Locations, nil
}

// LocationOptions carries the optional knobs of location creation; the
// zero value gives an approximate, shared location with the vendor's
// default 1000 radius.
type LocationOptions struct {
	DisplayPreference DisplayPreference
	// Exclusive makes the location private to this group instead of
	// shared with the whole tenant.
	Exclusive bool
	// ApproxLatitude and ApproxLongitude place the circle shown in
	// approximate display mode. Nil defaults to the exact coordinate
	// rounded to two decimals.
	ApproxLatitude  *float64
	ApproxLongitude *float64
	// Radius of the approximate display circle. Zero defaults to 1000.
	Radius int
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// createBase posts the location form shared by Create and
// CreateCustom and returns the new location's id.
func (p *LocationsProvider) createBase(
	ctx context.Context,
	name, formattedAddress string,
	latitude, longitude float64,
	opts LocationOptions,
	addressData url.Values,
) (int64, error) {
	if opts.DisplayPreference == "" {
		opts.DisplayPreference = DisplayApproximate
	}
	if opts.Radius == 0 {
		opts.Radius = 1000
	}
	approxLat := round2(latitude)
	if opts.ApproxLatitude != nil {
		approxLat = *opts.ApproxLatitude
	}
	approxLng := round2(longitude)
	if opts.ApproxLongitude != nil {
		approxLng = *opts.ApproxLongitude
	}
	groupID := ""
	if opts.Exclusive {
		groupID = strconv.FormatInt(p.groupID, 10)
	}

	form := url.Values{}
	form.Set("location[display_preference]", string(opts.DisplayPreference))
	form.Set("location[id]", "new")
	form.Set("location[group_id]", groupID)
	form.Set("location[permissions][can_share]", "true")
	form.Set("location[name]", name)
	form.Set("location[formatted_address]", formattedAddress)
	form.Set("location[latitude]", formatFloat(latitude))
	form.Set("location[longitude]", formatFloat(longitude))
	form.Set("location[approximation][center][lat]", formatFloat(approxLat))
	form.Set("location[approximation][center][lng]", formatFloat(approxLng))
	form.Set("location[approximation][radius]", strconv.Itoa(opts.Radius))
	for key, values := range addressData {
		for _, v := range values {
			form.Add(key, v)
		}
	}

	res, err := p.client.PostForm(ctx, p.client.Endpoints.GroupLocationsV1API(p.groupID), form, backend.MutateOptions{
		CSRFPage: p.settingsURL(),
	})
	if err != nil {
		return 0, err
	}
	var created locationV1Response
	if err := json.Unmarshal(res.Body(), &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// Create adds a physical location from Google Maps geocode data,
// translating each address component into the form fields the location
// editor would submit.
func (p *LocationsProvider) Create(ctx context.Context, name string, geocode *maps.GeocodeData, opts LocationOptions) (int64, error) {
	if geocode == nil {
		return 0, fmt.Errorf("geocode data is required, use CreateCustom for custom addresses")
	}
	addressData := url.Values{}
	for i, c := range geocode.AddressComponents {
		addressData.Set(fmt.Sprintf("location[address_data][%d][long_name]", i), c.LongName)
		addressData.Set(fmt.Sprintf("location[address_data][%d][short_name]", i), c.ShortName)
		for _, t := range c.Types {
			addressData.Add(fmt.Sprintf("location[address_data][%d][types][]", i), t)
		}
	}
	return p.createBase(ctx, name, geocode.FormattedAddress,
		geocode.Geometry.Location.Lat, geocode.Geometry.Location.Lng,
		opts, addressData)
}

// CreateCustom adds a physical location without geocode backing; the
// address is stored as a single custom full_address component.
func (p *LocationsProvider) CreateCustom(ctx context.Context, name, formattedAddress string, latitude, longitude float64, opts LocationOptions) (int64, error) {
	addressData := url.Values{}
	addressData.Set("location[address_data][0][long_name]", formattedAddress)
	addressData.Set("location[address_data][0][short_name]", formattedAddress)
	addressData.Add("location[address_data][0][types][]", "custom")
	addressData.Add("location[address_data][0][types][]", "full_address")
	return p.createBase(ctx, name, formattedAddress, latitude, longitude, opts, addressData)
}

// Delete removes a location from the lists this group sees. Deleting a
// shared location removes it for every group.
func (p *LocationsProvider) Delete(ctx context.Context, locationID int64) error {
	_, err := p.client.Delete(ctx, p.client.Endpoints.GroupLocationV1API(p.groupID, locationID), backend.MutateOptions{
		CSRFPage: p.settingsURL(),
	})
	return err
}
