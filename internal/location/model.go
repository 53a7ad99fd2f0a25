// File: internal/location/model.go
package location

import "educycle_backend/internal/shared"

// Radii the search widens to when nothing is found nearby.
const (
	DefaultRadiusKm  = 5.0
	ExpandedRadiusKm = 20.0
	MaxRadiusKm      = 50.0
)

// PickupQuery is GET /location/pickup-points. Coordinates win over city/area.
type PickupQuery struct {
	City     string   `form:"city"`
	Area     string   `form:"area"`
	Lat      *float64 `form:"lat" binding:"omitempty,latitude"`
	Lon      *float64 `form:"lon" binding:"omitempty,longitude"`
	RadiusKm float64  `form:"radius" binding:"omitempty,gt=0,lte=500"`
}

type UserLocation struct {
	Lat             float64         `json:"lat"`
	Lon             float64         `json:"lon"`
	DetectedAddress *shared.Address `json:"detected_address"`
}

// PickupPoint is a verified NGO that can receive or hand over books.
type PickupPoint struct {
	UID        string  `json:"uid"`
	Name       string  `json:"name"`
	City       string  `json:"city"`
	Area       string  `json:"area"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	DistanceKm float64 `json:"distance_km"`
}

type PickupResult struct {
	UserLocation   UserLocation  `json:"user_location"`
	PickupPoints   []PickupPoint `json:"pickup_points"`
	SearchExpanded bool          `json:"search_expanded"`
}
