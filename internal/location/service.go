// File: internal/location/service.go
package location

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"educycle_backend/internal/common"
	"educycle_backend/internal/shared"

	"go.uber.org/zap"
)

// Candidates lists users that may serve as pickup points.
type Candidates interface {
	ListPickupCandidates(ctx context.Context) ([]shared.User, error)
}

type Service interface {
	FindPickupPoints(ctx context.Context, q PickupQuery) (*PickupResult, error)
}

type ServiceImplementation struct {
	geocoder   shared.Geocoder
	candidates Candidates
	logger     *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(geocoder shared.Geocoder, candidates Candidates, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{geocoder: geocoder, candidates: candidates, logger: logger.Named("location")}
}

// FindPickupPoints locates the caller and lists NGO pickup points by distance. An
// empty result at the requested radius widens to 20 km and then 50 km.
func (s *ServiceImplementation) FindPickupPoints(ctx context.Context, q PickupQuery) (*PickupResult, error) {
	origin, err := s.resolveOrigin(ctx, q)
	if err != nil {
		return nil, err
	}

	all, err := s.candidates.ListPickupCandidates(ctx)
	if err != nil {
		return nil, err
	}
	ranked := rank(all, origin.Lat, origin.Lon)

	radius := q.RadiusKm
	if radius <= 0 {
		radius = DefaultRadiusKm
	}
	points := within(ranked, radius)
	expanded := false
	if len(points) == 0 && radius < ExpandedRadiusKm {
		points = within(ranked, ExpandedRadiusKm)
		expanded = true
	}
	if len(points) == 0 && radius < MaxRadiusKm {
		points = within(ranked, MaxRadiusKm)
		expanded = true
	}

	s.logger.Debug("Pickup search", zap.Float64("lat", origin.Lat), zap.Float64("lon", origin.Lon),
		zap.Float64("radius_km", radius), zap.Int("found", len(points)), zap.Bool("expanded", expanded))
	return &PickupResult{UserLocation: *origin, PickupPoints: points, SearchExpanded: expanded}, nil
}

func (s *ServiceImplementation) resolveOrigin(ctx context.Context, q PickupQuery) (*UserLocation, error) {
	if q.Lat != nil && q.Lon != nil {
		loc := &UserLocation{Lat: *q.Lat, Lon: *q.Lon}
		if addr, err := s.geocoder.Reverse(ctx, *q.Lat, *q.Lon); err != nil {
			s.logger.Warn("Reverse geocoding failed", zap.Error(err))
		} else {
			loc.DetectedAddress = addr
		}
		return loc, nil
	}

	city, area := strings.TrimSpace(q.City), strings.TrimSpace(q.Area)
	if city == "" {
		return nil, common.ErrBadRequest.WithDetails("Provide either (lat, lon) or (city, area)")
	}
	queries := []string{city}
	if area != "" {
		queries = []string{fmt.Sprintf("%s, %s", area, city), city}
	}
	for _, query := range queries {
		point, err := s.geocoder.Geocode(ctx, query)
		if err != nil {
			s.logger.Error("Geocoding failed", zap.String("query", query), zap.Error(err))
			return nil, common.ErrServiceUnavailable.WithDetails("Geocoding service unavailable")
		}
		if point != nil {
			return &UserLocation{Lat: point.Lat, Lon: point.Lon}, nil
		}
	}
	return nil, common.ErrNotFound.WithDetails("Could not identify location")
}

// rank returns every candidate with coordinates, nearest first.
func rank(users []shared.User, lat, lon float64) []PickupPoint {
	out := make([]PickupPoint, 0, len(users))
	for _, u := range users {
		if u.Latitude == nil || u.Longitude == nil {
			continue
		}
		d := HaversineKm(lat, lon, *u.Latitude, *u.Longitude)
		out = append(out, PickupPoint{
			UID:        u.UID,
			Name:       u.PublicName(),
			City:       u.City,
			Area:       u.Area,
			Lat:        *u.Latitude,
			Lon:        *u.Longitude,
			DistanceKm: math.Round(d*100) / 100,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}

func within(ranked []PickupPoint, radiusKm float64) []PickupPoint {
	out := []PickupPoint{}
	for _, p := range ranked {
		if p.DistanceKm > radiusKm {
			break
		}
		out = append(out, p)
	}
	return out
}
