// Package geofence decides whether a reported position lies inside the
// rectangular region of interest.
package geofence

import (
	"errors"
	"fmt"
)

// Default region of interest: the stretch of the IJsselmeer coast around
// Andijk/Medemblik that the display was built for.
const (
	DefaultMinLat = 52.64667
	DefaultMaxLat = 52.74778
	DefaultMinLon = 5.02139
	DefaultMaxLon = 5.30444
)

// BoundingBox is a latitude/longitude rectangle in decimal degrees (WGS84).
// All four edges are inclusive.
type BoundingBox struct {
	// MinLat is the southern edge (-90 to +90)
	MinLat float64 `json:"min_lat" yaml:"min_lat"`

	// MaxLat is the northern edge (-90 to +90)
	MaxLat float64 `json:"max_lat" yaml:"max_lat"`

	// MinLon is the western edge (-180 to +180)
	MinLon float64 `json:"min_lon" yaml:"min_lon"`

	// MaxLon is the eastern edge (-180 to +180)
	MaxLon float64 `json:"max_lon" yaml:"max_lon"`
}

// DefaultRegion returns the built-in region of interest.
func DefaultRegion() BoundingBox {
	return BoundingBox{
		MinLat: DefaultMinLat,
		MaxLat: DefaultMaxLat,
		MinLon: DefaultMinLon,
		MaxLon: DefaultMaxLon,
	}
}

// Contains reports whether (lat, lon) lies inside the box, edges included.
// NaN and out-of-range coordinates never match.
func (b BoundingBox) Contains(lat, lon float64) bool {
	// Written so that any comparison against NaN yields false.
	return b.MinLat <= lat && lat <= b.MaxLat &&
		b.MinLon <= lon && lon <= b.MaxLon
}

// Validate checks that the box is well formed.
func (b BoundingBox) Validate() error {
	if b.MinLat < -90 || b.MaxLat > 90 {
		return fmt.Errorf("latitude range [%.5f, %.5f] outside -90..90", b.MinLat, b.MaxLat)
	}
	if b.MinLon < -180 || b.MaxLon > 180 {
		return fmt.Errorf("longitude range [%.5f, %.5f] outside -180..180", b.MinLon, b.MaxLon)
	}
	if b.MinLat > b.MaxLat {
		return errors.New("min_lat is greater than max_lat")
	}
	if b.MinLon > b.MaxLon {
		return errors.New("min_lon is greater than max_lon")
	}
	return nil
}

// String formats the box for log output.
func (b BoundingBox) String() string {
	return fmt.Sprintf("%.5f°N..%.5f°N, %.5f°E..%.5f°E", b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
}
