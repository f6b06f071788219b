package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoordinate(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon float64
		wantErr  bool
	}{
		{"valid", 30.2672, -97.7431, false},
		{"equator", 0, 0, false},
		{"lat out of range", 91, 0, true},
		{"lon out of range", 0, 181, true},
		{"nan", math.NaN(), 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCoordinate(tc.lat, tc.lon)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoordinates)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVector2Add(t *testing.T) {
	north := NewVector2(0, 100)
	east := NewVector2(math.Pi/2, 100)

	sum := north.Add(east)
	assert.InDelta(t, math.Pi/4, sum.Direction, 1e-9)
	assert.InDelta(t, 100*math.Sqrt2, sum.Magnitude, 1e-9)

	// adding the negation cancels out despite sin/cos rounding residue
	cancelled := north.Add(north.Negated())
	assert.True(t, cancelled.IsZero())

	skewed := NewVector2(1.234, 87.5)
	assert.True(t, skewed.Add(skewed.Negated()).IsZero())
}

func TestVector2Normalization(t *testing.T) {
	v := NewVector2(-math.Pi/2, 50)
	assert.InDelta(t, 3*math.Pi/2, v.Direction, 1e-9)

	// negative magnitude flips the direction
	v = NewVector2(0, -50)
	assert.InDelta(t, math.Pi, v.Direction, 1e-9)
	assert.Equal(t, 50.0, v.Magnitude)
}

func TestTranslateNorth(t *testing.T) {
	origin := Coordinate{Latitude: 30, Longitude: -97}
	moved := origin.Translate(NewVector2(0, 100))

	assert.InDelta(t, origin.Longitude, moved.Longitude, 1e-9)
	assert.Greater(t, moved.Latitude, origin.Latitude)
	assert.InDelta(t, 100, origin.DistanceTo(moved), 0.1)
}

func TestTranslateOffsetRoundTrip(t *testing.T) {
	origin := Coordinate{Latitude: 47.61, Longitude: -122.33}
	v := NewVector2(1.2, 350)

	moved := origin.Translate(v)
	back := origin.OffsetTo(moved)
	assert.InDelta(t, v.Direction, back.Direction, 1e-6)
	assert.InDelta(t, v.Magnitude, back.Magnitude, 0.01)
}

func TestTranslateZeroVector(t *testing.T) {
	origin := Coordinate{Latitude: 30, Longitude: -97}
	assert.Equal(t, origin, origin.Translate(Vector2{}))
}

func TestTranslateHighLatitudeScale(t *testing.T) {
	// ground distance must hold regardless of mercator distortion
	origin := Coordinate{Latitude: 60, Longitude: 10}
	moved := origin.Translate(NewVector2(math.Pi/2, 500))
	assert.InDelta(t, 500, origin.DistanceTo(moved), 1)
}

func TestPathLength(t *testing.T) {
	origin := Coordinate{Latitude: 30, Longitude: -97}
	a := origin.Translate(NewVector2(0, 100))
	b := a.Translate(NewVector2(math.Pi/2, 100))

	assert.InDelta(t, 200, PathLength([]Coordinate{origin, a, b}), 0.5)
	assert.Equal(t, 0.0, PathLength([]Coordinate{origin}))
}

func TestFootprintLine(t *testing.T) {
	origin := Coordinate{Latitude: 30, Longitude: -97}
	offsets := []Vector2{NewVector2(0, 0), NewVector2(0, 100), NewVector2(math.Pi/2, 100)}

	line := FootprintLine(origin, offsets)
	require.Equal(t, 3, line.Coordinates().Length())

	empty := FootprintLine(origin, offsets[:1])
	assert.Equal(t, 0, empty.Coordinates().Length())
}
