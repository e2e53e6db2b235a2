package groups

import (
	"context"
	"testing"
	"time"

	"github.com/bpdavis86/planning-center-backend/maps"

	"github.com/stretchr/testify/require"
)

func TestSharedLocationsQuery(t *testing.T) {
	provider, _, cleanup := setup(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	locations, err := provider.Locations.Query(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, locations, 1)
	require.Equal(t, "Main Campus", locations[0].Attributes.Name)
	require.Equal(t, DisplayApproximate, locations[0].Attributes.DisplayPreference)
}

func TestGroupLocationsQuery(t *testing.T) {
	provider, _, cleanup := setup(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	group, err := provider.Get(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	locations, err := group.Locations.Query(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, locations, 1)
	require.EqualValues(t, 314, locations[0].ID)
	require.Equal(t, "123 Main St, Springfield", locations[0].FormattedAddress)
}

func TestGroupLocationCreate(t *testing.T) {
	provider, vendor, cleanup := setup(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	group, err := provider.Get(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}

	geocode := &maps.GeocodeData{
		FormattedAddress: "456 Oak Ave, Springfield, IL 62701, USA",
		Geometry: maps.Geometry{
			Location: maps.LatLng{Lat: 39.791234, Lng: -89.644321},
		},
		AddressComponents: []maps.AddressComponent{
			{LongName: "456", ShortName: "456", Types: []string{"street_number"}},
			{LongName: "Oak Avenue", ShortName: "Oak Ave", Types: []string{"route"}},
			{LongName: "Springfield", ShortName: "Springfield", Types: []string{"locality", "political"}},
		},
	}

	id, err := group.Locations.Create(ctx, "Oak House", geocode, LocationOptions{})
	if err != nil {
		t.Fatal(err)
	}
	require.EqualValues(t, 9100, id)

	form := vendor.lastForm("/api/v1/groups/42/locations.json")
	require.Equal(t, "new", form.Get("location[id]"))
	require.Equal(t, "Oak House", form.Get("location[name]"))
	require.Equal(t, "456 Oak Ave, Springfield, IL 62701, USA", form.Get("location[formatted_address]"))
	require.Equal(t, "approximate", form.Get("location[display_preference]"))
	// shared by default, an empty group_id marks the location shared
	require.True(t, form.Has("location[group_id]"))
	require.Equal(t, "", form.Get("location[group_id]"))
	require.Equal(t, "39.791234", form.Get("location[latitude]"))
	// approximate center defaults to the exact point rounded to two
	// decimals
	require.Equal(t, "39.79", form.Get("location[approximation][center][lat]"))
	require.Equal(t, "-89.64", form.Get("location[approximation][center][lng]"))
	require.Equal(t, "1000", form.Get("location[approximation][radius]"))

	require.Equal(t, "Oak Avenue", form.Get("location[address_data][1][long_name]"))
	require.Equal(t, "Oak Ave", form.Get("location[address_data][1][short_name]"))
	require.Equal(t, []string{"locality", "political"}, form["location[address_data][2][types][]"])
}

func TestGroupLocationCreateCustom(t *testing.T) {
	provider, vendor, cleanup := setup(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	group, err := provider.Get(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}

	id, err := group.Locations.CreateCustom(ctx, "Back Field", "the field behind the church", 39.8, -89.6, LocationOptions{
		DisplayPreference: DisplayHidden,
		Exclusive:         true,
		Radius:            500,
	})
	if err != nil {
		t.Fatal(err)
	}
	require.EqualValues(t, 9100, id)

	form := vendor.lastForm("/api/v1/groups/42/locations.json")
	require.Equal(t, "hidden", form.Get("location[display_preference]"))
	require.Equal(t, "42", form.Get("location[group_id]"))
	require.Equal(t, "500", form.Get("location[approximation][radius]"))
	require.Equal(t, []string{"custom", "full_address"}, form["location[address_data][0][types][]"])
}

func TestGroupLocationDelete(t *testing.T) {
	provider, vendor, cleanup := setup(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	group, err := provider.Get(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	err = group.Locations.Delete(ctx, 9100)
	if err != nil {
		t.Fatal(err)
	}
	require.NotNil(t, vendor.lastForm("/api/v1/groups/42/locations/9100.json"))
}
