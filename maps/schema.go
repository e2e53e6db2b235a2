package maps

import "fmt"

// googleResponse is the envelope shared by the Maps Platform JSON
// endpoints. ZERO_RESULTS is not an error, it just means no data.
type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

func (r googleResponse) statusError() error {
	switch r.Status {
	case "OK", "ZERO_RESULTS":
		return nil
	}
	if r.ErrorMessage != "" {
		return fmt.Errorf("maps API error %s: %s", r.Status, r.ErrorMessage)
	}
	return fmt.Errorf("maps API error %s", r.Status)
}

type findPlaceResponse struct {
	googleResponse
	Candidates []FindPlaceData `json:"candidates"`
}

type FindPlaceData struct {
	FormattedAddress string `json:"formatted_address"`
	Name             string `json:"name"`
	PlaceID          string `json:"place_id"`
}

type geocodeResponse struct {
	googleResponse
	Results []GeocodeData `json:"results"`
}

// GeocodeData mirrors one result of the geocoding API; its address
// components feed the location creation form field for field.
type GeocodeData struct {
	AddressComponents []AddressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
	Geometry          Geometry           `json:"geometry"`
	PlaceID           string             `json:"place_id"`
	Types             []string           `json:"types"`
}

type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type Geometry struct {
	Location     LatLng    `json:"location"`
	LocationType string    `json:"location_type"`
	Viewport     *Viewport `json:"viewport"`
	Bounds       *Viewport `json:"bounds"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Viewport struct {
	Northeast LatLng `json:"northeast"`
	Southwest LatLng `json:"southwest"`
}
