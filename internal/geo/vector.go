package geo

import "math"

// Vector2 is a polar offset: direction in radians clockwise from north,
// magnitude in ground meters.
type Vector2 struct {
	Direction float64 `json:"direction"`
	Magnitude float64 `json:"magnitude"`
}

// NewVector2 creates a vector with the direction normalized to [0, 2*pi).
func NewVector2(direction, magnitude float64) Vector2 {
	if magnitude < 0 {
		magnitude = -magnitude
		direction += math.Pi
	}
	return Vector2{Direction: normalizeAngle(direction), Magnitude: magnitude}
}

// zeroMagnitude snaps sub-nanometer residue, so exact Cartesian
// cancellation yields the zero vector despite sin/cos rounding.
const zeroMagnitude = 1e-9

// Vector2FromXY converts Cartesian east/north meters to a polar vector.
func Vector2FromXY(x, y float64) Vector2 {
	magnitude := math.Hypot(x, y)
	if magnitude < zeroMagnitude {
		return Vector2{}
	}
	return Vector2{Direction: normalizeAngle(math.Atan2(x, y)), Magnitude: magnitude}
}

// X is the east component in meters.
func (v Vector2) X() float64 {
	return v.Magnitude * math.Sin(v.Direction)
}

// Y is the north component in meters.
func (v Vector2) Y() float64 {
	return v.Magnitude * math.Cos(v.Direction)
}

// Add sums two offsets in Cartesian space and converts back to polar.
func (v Vector2) Add(other Vector2) Vector2 {
	return Vector2FromXY(v.X()+other.X(), v.Y()+other.Y())
}

// Negated returns the vector pointing the opposite way.
func (v Vector2) Negated() Vector2 {
	if v.Magnitude == 0 {
		return v
	}
	return Vector2{Direction: normalizeAngle(v.Direction + math.Pi), Magnitude: v.Magnitude}
}

// IsZero reports whether the vector has no magnitude.
func (v Vector2) IsZero() bool {
	return v.Magnitude == 0
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
