package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// GeoErrorCode classifies a failed position lookup.
type GeoErrorCode int

const (
	GeoPermissionDenied GeoErrorCode = iota + 1
	GeoPositionUnavailable
	GeoTimeout
)

func (c GeoErrorCode) String() string {
	switch c {
	case GeoPermissionDenied:
		return "permission_denied"
	case GeoPositionUnavailable:
		return "position_unavailable"
	case GeoTimeout:
		return "timeout"
	}
	return "unknown"
}

// GeoError is returned by positioners.
type GeoError struct {
	Code GeoErrorCode
	Err  error
}

func (e *GeoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geolocation %s: %v", e.Code, e.Err)
	}
	return "geolocation " + e.Code.String()
}

func (e *GeoError) Unwrap() error { return e.Err }

// Positioner yields the caller's coordinates.
type Positioner interface {
	Position(ctx context.Context) (lat, lon float64, err error)
}

// PositionerFunc adapts a function to Positioner.
type PositionerFunc func(ctx context.Context) (float64, float64, error)

func (f PositionerFunc) Position(ctx context.Context) (float64, float64, error) { return f(ctx) }

// PickupSource names the step of the chain that produced a result.
type PickupSource string

const (
	SourceDevice PickupSource = "device"
	SourceIP     PickupSource = "ip"
	SourceManual PickupSource = "manual"
)

// ErrNoLocation means every step failed and no manual city was given.
var ErrNoLocation = errors.New("no location available: enter a city")

// PickupLocator finds pickup points from the best location it can get: the device
// position, then an IP lookup, then the manual city/area.
type PickupLocator struct {
	client *Client
	device Positioner
	ip     Positioner
}

// NewPickupLocator builds a locator. device and ip may be nil to skip those steps.
func NewPickupLocator(c *Client, device, ip Positioner) *PickupLocator {
	return &PickupLocator{client: c, device: device, ip: ip}
}

// PickupOutcome is a located search result.
type PickupOutcome struct {
	Result *PickupResult
	Source PickupSource
	// DeviceErr holds the device failure when a later step answered.
	DeviceErr error
}

// Locate runs the chain. Server errors from a coordinate search end the chain, since
// a worse position would hit the same failure.
func (l *PickupLocator) Locate(ctx context.Context, city, area string, radiusKm float64) (*PickupOutcome, error) {
	outcome := &PickupOutcome{}
	for _, step := range []struct {
		source PickupSource
		pos    Positioner
	}{{SourceDevice, l.device}, {SourceIP, l.ip}} {
		if step.pos == nil {
			continue
		}
		lat, lon, err := step.pos.Position(ctx)
		if err != nil {
			if step.source == SourceDevice {
				outcome.DeviceErr = err
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		res, err := l.client.PickupPoints(ctx, PickupSearch{Lat: &lat, Lon: &lon, RadiusKm: radiusKm})
		if err != nil {
			return nil, err
		}
		outcome.Result, outcome.Source = res, step.source
		return outcome, nil
	}

	if strings.TrimSpace(city) == "" {
		return nil, ErrNoLocation
	}
	res, err := l.client.PickupPoints(ctx, PickupSearch{City: city, Area: area, RadiusKm: radiusKm})
	if err != nil {
		return nil, err
	}
	outcome.Result, outcome.Source = res, SourceManual
	return outcome, nil
}

// IPPositioner asks an ip-api style JSON endpoint for the caller's approximate position.
type IPPositioner struct {
	URL        string
	HTTPClient *http.Client
}

// NewIPPositioner uses ipapi.co unless url is set.
func NewIPPositioner(url string) *IPPositioner {
	if url == "" {
		url = "https://ipapi.co/json/"
	}
	return &IPPositioner{URL: url, HTTPClient: &http.Client{Timeout: 5 * time.Second}}
}

func (p *IPPositioner) Position(ctx context.Context) (float64, float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return 0, 0, &GeoError{Code: GeoPositionUnavailable, Err: err}
	}
	res, err := p.HTTPClient.Do(req)
	if err != nil {
		code := GeoPositionUnavailable
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			code = GeoTimeout
		}
		return 0, 0, &GeoError{Code: code, Err: err}
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return 0, 0, &GeoError{Code: GeoPositionUnavailable, Err: fmt.Errorf("ip lookup returned %d", res.StatusCode)}
	}
	var body struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil || body.Latitude == nil || body.Longitude == nil {
		return 0, 0, &GeoError{Code: GeoPositionUnavailable, Err: errors.New("ip lookup returned no coordinates")}
	}
	return *body.Latitude, *body.Longitude, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
