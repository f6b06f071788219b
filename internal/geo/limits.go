package geo

// AltitudeRange bounds the altitude of a component, meters above takeoff.
type AltitudeRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DistanceTolerance is the achievement tolerance around a target position.
type DistanceTolerance struct {
	Horizontal float64 `json:"horizontal"`
	Vertical   float64 `json:"vertical"`
}

// MotionLimit constrains one axis of drone motion.
type MotionLimit struct {
	VelocityMax     float64 `json:"velocityMax"`
	AccelerationMax float64 `json:"accelerationMax"`
}

// MotionLimits constrains drone motion on all axes. Rotational values are in
// radians per second (squared).
type MotionLimits struct {
	Horizontal MotionLimit `json:"horizontal"`
	Vertical   MotionLimit `json:"vertical"`
	Rotational MotionLimit `json:"rotational"`
}

// DefaultMotionLimits returns conservative plan-level defaults.
func DefaultMotionLimits() MotionLimits {
	return MotionLimits{
		Horizontal: MotionLimit{VelocityMax: 10, AccelerationMax: 3},
		Vertical:   MotionLimit{VelocityMax: 4, AccelerationMax: 2},
		Rotational: MotionLimit{VelocityMax: 1, AccelerationMax: 0.5},
	}
}
