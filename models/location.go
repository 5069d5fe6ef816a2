package models

import (
	"encoding/json"
	"errors"
)

var ErrInvalidLocation = errors.New("invalid location format")

// Address is a structured street address.
type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	Area    string `bson:"area,omitempty" json:"area,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Pincode string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

// Coordinates is a lat/lng pair.
type Coordinates struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Location is a tagged variant: exactly one of Address or Coords is
// set. The wire format historically mixed both shapes in one untyped
// field, so parsing sniffs the shape instead of trusting a tag.
type Location struct {
	Address *Address     `bson:"address,omitempty" json:"address,omitempty"`
	Coords  *Coordinates `bson:"coords,omitempty" json:"coords,omitempty"`
}

// IsZero reports whether neither variant is set.
func (l Location) IsZero() bool {
	return l.Address == nil && l.Coords == nil
}

// ParseLocation accepts the location field as submitted by clients:
// either a JSON object, or that same object JSON-encoded as a string.
// An object carrying numeric lat/lng keys decodes as Coordinates;
// anything else with at least one address field decodes as Address.
func ParseLocation(raw []byte) (Location, error) {
	var val interface{}
	if err := json.Unmarshal(raw, &val); err != nil {
		return Location{}, ErrInvalidLocation
	}

	// Unwrap a JSON-encoded string payload.
	if s, ok := val.(string); ok {
		if err := json.Unmarshal([]byte(s), &val); err != nil {
			return Location{}, ErrInvalidLocation
		}
	}

	obj, ok := val.(map[string]interface{})
	if !ok {
		return Location{}, ErrInvalidLocation
	}

	lat, hasLat := asFloat(obj["lat"])
	lng, hasLng := asFloat(obj["lng"])
	if hasLat && hasLng {
		return Location{Coords: &Coordinates{Lat: lat, Lng: lng}}, nil
	}

	addr := Address{
		Street:  asString(obj["street"]),
		Area:    asString(obj["area"]),
		City:    asString(obj["city"]),
		State:   asString(obj["state"]),
		Pincode: asString(obj["pincode"]),
	}
	if addr == (Address{}) {
		return Location{}, ErrInvalidLocation
	}
	return Location{Address: &addr}, nil
}

func asFloat(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
