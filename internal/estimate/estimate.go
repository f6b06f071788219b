// Package estimate derives rough flight figures from a component tree.
package estimate

import (
	"math"
	"time"

	"github.com/planforge/planforge/internal/component"
	"github.com/planforge/planforge/internal/geo"
)

// Summary is a rough flight estimate for a component tree.
type Summary struct {
	Time                  time.Duration `json:"time"`
	Distance              float64       `json:"distance"`
	HorizontalVelocityMax float64       `json:"horizontalVelocityMax"`
	AltitudeMax           float64       `json:"altitudeMax"`
	Photos                int           `json:"photos"`
	Videos                int           `json:"videos"`
}

// Estimate walks the resolved tree in traversal order, sums ground distance
// between consecutive positioned components, and divides each leg by the
// horizontal velocity limit in effect there. Camera commands are counted
// along the way. Orbits contribute one full circumference.
func Estimate(root component.Component) Summary {
	var s Summary

	plan, isPlan := root.(*component.Plan)
	limits := geo.DefaultMotionLimits()
	if isPlan {
		limits = plan.MotionLimits
	}

	rootNode := component.Resolve(root)
	prev := rootNode.AbsoluteCoordinate()

	for _, node := range rootNode.Descendants() {
		c := node.Component
		eff := effectiveLimits(node, limits)
		if eff.Horizontal.VelocityMax > s.HorizontalVelocityMax {
			s.HorizontalVelocityMax = eff.Horizontal.VelocityMax
		}

		switch v := c.(type) {
		case *component.Command:
			switch v.Action {
			case component.CommandTakePhoto:
				s.Photos++
			case component.CommandStartVideo:
				s.Videos++
			}
			continue
		case *component.Orbit:
			s.Distance += 2 * math.Pi * v.Radius
			s.Time += legTime(2*math.Pi*v.Radius, eff)
			trackAltitude(&s, v.AltitudeRange)
		case *component.Destination:
			trackAltitude(&s, v.AltitudeRange)
		case *component.Map:
			trackAltitude(&s, v.AltitudeRange)
		case *component.Facade:
			trackAltitude(&s, v.AltitudeRange)
		case *component.Waypoint:
			if v.Altitude > s.AltitudeMax {
				s.AltitudeMax = v.Altitude
			}
		}

		if _, ok := c.(component.Positional); !ok {
			continue
		}
		coord := node.AbsoluteCoordinate()
		leg := prev.DistanceTo(coord)
		s.Distance += leg
		s.Time += legTime(leg, eff)
		prev = coord
	}

	return s
}

// PathCoordinates returns the absolute coordinates of every positioned
// component in traversal order, starting at the root anchor.
func PathCoordinates(root component.Component) []geo.Coordinate {
	rootNode := component.Resolve(root)
	path := []geo.Coordinate{rootNode.AbsoluteCoordinate()}
	for _, node := range rootNode.Descendants() {
		if _, ok := node.Component.(component.Positional); ok {
			path = append(path, node.AbsoluteCoordinate())
		}
	}
	return path
}

// effectiveLimits resolves the motion limits in effect at a node: the
// nearest ancestor override, falling back to the plan limits.
func effectiveLimits(n *component.Node, plan geo.MotionLimits) geo.MotionLimits {
	for cur := n; cur != nil; cur = cur.Parent {
		if o := cur.Component.Meta().LimitsOverride; o != nil {
			return *o
		}
	}
	return plan
}

func legTime(distance float64, limits geo.MotionLimits) time.Duration {
	v := limits.Horizontal.VelocityMax
	if v <= 0 || distance <= 0 {
		return 0
	}
	return time.Duration(distance / v * float64(time.Second))
}

func trackAltitude(s *Summary, r geo.AltitudeRange) {
	if r.Max > s.AltitudeMax {
		s.AltitudeMax = r.Max
	}
}
