// Package geo holds the distance and grid helpers used by duplicate detection
// and hotspot analysis. Everything here is pure.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used by Haversine.
const EarthRadiusMeters = 6371000.0

// boxSlack widens BoundingBox so float rounding never clips a point that lies
// exactly on the radius.
const boxSlack = 1e-9

// Point is a WGS84 coordinate.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the point lies within the legal coordinate ranges.
func (p Point) Valid() bool {
	return ValidLatitude(p.Latitude) && ValidLongitude(p.Longitude)
}

// ValidLatitude reports whether lat is a finite value in [-90, 90].
func ValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && lat >= -90 && lat <= 90
}

// ValidLongitude reports whether lon is a finite value in [-180, 180].
func ValidLongitude(lon float64) bool {
	return !math.IsNaN(lon) && lon >= -180 && lon <= 180
}

// Haversine calculates the great-circle distance between two points in meters
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Distance is Haversine between two points, in meters.
func Distance(a, b Point) float64 {
	return Haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// Bounds is an axis-aligned latitude/longitude box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether p lies inside the box (edges inclusive).
func (b Bounds) Contains(p Point) bool {
	return p.Latitude >= b.MinLat && p.Latitude <= b.MaxLat &&
		p.Longitude >= b.MinLon && p.Longitude <= b.MaxLon
}

// BoundingBox returns a box that contains every point within radiusMeters of
// center, on the same sphere Haversine uses. Used as a cheap prefilter before
// the exact Haversine check.
func BoundingBox(center Point, radiusMeters float64) Bounds {
	angular := radiusMeters / EarthRadiusMeters
	dLat := angular*180/math.Pi + boxSlack

	// The widest longitude offset on a circle of angular radius d around
	// latitude phi is asin(sin d / cos phi).
	dLon := 180.0
	cosLat := math.Cos(center.Latitude * math.Pi / 180)
	if angular < math.Pi/2 && cosLat > 1e-9 {
		if s := math.Sin(angular) / cosLat; s < 1 {
			dLon = math.Min(180, math.Asin(s)*180/math.Pi+boxSlack)
		}
	}

	return Bounds{
		MinLat: math.Max(-90, center.Latitude-dLat),
		MinLon: math.Max(-180, center.Longitude-dLon),
		MaxLat: math.Min(90, center.Latitude+dLat),
		MaxLon: math.Min(180, center.Longitude+dLon),
	}
}

// Extent returns the bounding box of points. ok is false when points is empty.
func Extent(points []Point) (b Bounds, ok bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b = Bounds{
		MinLat: points[0].Latitude, MaxLat: points[0].Latitude,
		MinLon: points[0].Longitude, MaxLon: points[0].Longitude,
	}
	for _, p := range points[1:] {
		b.MinLat = math.Min(b.MinLat, p.Latitude)
		b.MaxLat = math.Max(b.MaxLat, p.Latitude)
		b.MinLon = math.Min(b.MinLon, p.Longitude)
		b.MaxLon = math.Max(b.MaxLon, p.Longitude)
	}
	return b, true
}

// Cell identifies one square of a fixed-size degree grid. Row and Col are
// global indices (floor(coord / size)) so a cell keeps its identity when the
// set of points changes.
type Cell struct {
	Row int64
	Col int64
}

// Grid is a fixed-size latitude/longitude grid.
type Grid struct {
	SizeDegrees float64
}

// NewGrid returns a grid with cells of sizeDegrees on each side.
func NewGrid(sizeDegrees float64) (Grid, error) {
	if !(sizeDegrees > 0) || math.IsInf(sizeDegrees, 0) {
		return Grid{}, fmt.Errorf("geo: grid cell size must be positive, got %v", sizeDegrees)
	}
	return Grid{SizeDegrees: sizeDegrees}, nil
}

// CellOf returns the cell containing p.
func (g Grid) CellOf(p Point) Cell {
	return Cell{
		Row: int64(math.Floor(p.Latitude / g.SizeDegrees)),
		Col: int64(math.Floor(p.Longitude / g.SizeDegrees)),
	}
}

// Bounds returns the box covered by c.
func (g Grid) Bounds(c Cell) Bounds {
	return Bounds{
		MinLat: float64(c.Row) * g.SizeDegrees,
		MinLon: float64(c.Col) * g.SizeDegrees,
		MaxLat: float64(c.Row+1) * g.SizeDegrees,
		MaxLon: float64(c.Col+1) * g.SizeDegrees,
	}
}

// Center returns the midpoint of c.
func (g Grid) Center(c Cell) Point {
	b := g.Bounds(c)
	return Point{
		Latitude:  (b.MinLat + b.MaxLat) / 2,
		Longitude: (b.MinLon + b.MaxLon) / 2,
	}
}

// ID returns a stable textual identifier for c, e.g. "r23215:c72636".
func (c Cell) ID() string {
	return fmt.Sprintf("r%d:c%d", c.Row, c.Col)
}
