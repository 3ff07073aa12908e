package tile

import (
	"fmt"
	"math"
)

// MaxLat is the highest latitude representable in the Web Mercator
// projection. Tile y values diverge beyond it.
const MaxLat = 85.05112878

// Coord addresses a single tile in the slippy-map pyramid.
type Coord struct {
	Z int
	X int
	Y int
}

// Path returns the z/x/y path fragment used in tile URLs and store keys.
func (c Coord) Path() string {
	return fmt.Sprintf("%d/%d/%d", c.Z, c.X, c.Y)
}

func (c Coord) String() string { return c.Path() }

// DomainError reports a latitude/longitude pair outside the projectable
// domain.
type DomainError struct {
	Lat float64
	Lon float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("tile: coordinates outside projection domain: lat=%g lon=%g", e.Lat, e.Lon)
}

// FromLatLon converts a latitude/longitude pair in degrees to the tile
// containing it at the given zoom level.
//
// Latitudes at or beyond the Web Mercator limit (~85.0511 degrees) have no
// tile representation and return a *DomainError rather than a divergent y
// value. Longitudes are not clamped: values outside [-180, 180) produce x
// values outside the 0..2^zoom-1 grid.
func FromLatLon(lat, lon float64, zoom int) (Coord, error) {
	if zoom < 0 {
		return Coord{}, fmt.Errorf("tile: negative zoom %d", zoom)
	}
	if math.Abs(lat) >= MaxLat || math.IsNaN(lat) || math.IsNaN(lon) {
		return Coord{}, &DomainError{Lat: lat, Lon: lon}
	}

	latRad := lat * math.Pi / 180
	n := math.Exp2(float64(zoom))
	x := int(math.Floor((lon + 180) / 360 * n))
	y := int(math.Floor((1 - math.Asinh(math.Tan(latRad))/math.Pi) / 2 * n))

	return Coord{Z: zoom, X: x, Y: y}, nil
}
