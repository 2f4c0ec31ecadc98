package types

import "strings"

// DeliveryAddress is the structured drop-off location stored with each order.
// Persisted as jsonb through GORM's json serializer.
type DeliveryAddress struct {
	Street       string   `json:"street"`
	Apartment    *string  `json:"apartment,omitempty"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	Zip          string   `json:"zip"`
	Instructions *string  `json:"instructions,omitempty"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
}

// MissingFields returns the names of required address fields that are empty.
// Street, city, state, and zip are all mandatory at checkout.
func (a DeliveryAddress) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(a.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.State) == "" {
		missing = append(missing, "state")
	}
	if strings.TrimSpace(a.Zip) == "" {
		missing = append(missing, "zip")
	}
	return missing
}

// HasCoordinates reports whether the address carries a usable lat/lng pair.
func (a DeliveryAddress) HasCoordinates() bool {
	return a.Lat != nil && a.Lng != nil
}
