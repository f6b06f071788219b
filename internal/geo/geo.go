package geo

import (
	"errors"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Coordinates are stored as EPSG 4326 (degrees) and projected to 3857 for
// planar offset math. Web mercator stretches ground distances by 1/cos(lat),
// so every translation applies the inverse scale at the coordinate's latitude.
// Good to well under 0.1% for spans below 5 km outside polar latitudes.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Coordinate is a WGS 84 position in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinate validates and creates a Coordinate.
func NewCoordinate(latitude, longitude float64) (Coordinate, error) {
	if math.IsNaN(latitude) || math.IsNaN(longitude) ||
		latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return Coordinate{}, ErrInvalidCoordinates
	}
	return Coordinate{Latitude: latitude, Longitude: longitude}, nil
}

// to3857 projects the coordinate to web mercator meters.
func (c Coordinate) to3857() (x, y float64) {
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ = f(c.Longitude, c.Latitude, 0)
	return x, y
}

// from3857 unprojects web mercator meters back to degrees.
func from3857(x, y float64) Coordinate {
	f := wgs84.EPSG().Transform(3857, 4326)
	lon, lat, _ := f(x, y, 0)
	return Coordinate{Latitude: lat, Longitude: lon}
}

// mercatorScale is the factor that converts ground meters at the coordinate's
// latitude into 3857 map meters.
func (c Coordinate) mercatorScale() float64 {
	return 1 / math.Cos(c.Latitude*math.Pi/180)
}

// Translate returns the coordinate v away from c. The vector magnitude is
// interpreted as ground meters, direction 0 = north, pi/2 = east.
func (c Coordinate) Translate(v Vector2) Coordinate {
	if v.Magnitude == 0 {
		return c
	}
	x, y := c.to3857()
	s := c.mercatorScale()
	return from3857(x+v.X()*s, y+v.Y()*s)
}

// OffsetTo returns the vector from c to other in ground meters.
func (c Coordinate) OffsetTo(other Coordinate) Vector2 {
	x1, y1 := c.to3857()
	x2, y2 := other.to3857()
	s := c.mercatorScale()
	return Vector2FromXY((x2-x1)/s, (y2-y1)/s)
}

// DistanceTo returns the ground distance in meters between two coordinates.
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	return c.OffsetTo(other).Magnitude
}

// Point3857 returns the coordinate as a simplefeatures point in 3857.
func (c Coordinate) Point3857() geom.Point {
	x, y := c.to3857()
	return geom.NewPoint(geom.Coordinates{XY: geom.XY{X: x, Y: y}})
}
