package component

import (
	"github.com/planforge/planforge/internal/geo"
)

// TemporalSlots are the optional sub-trees positional variants run around
// arrival: approach while traveling, immediate on arrival, achieved once the
// position is held within tolerance.
type TemporalSlots struct {
	Approach  Slot `json:"approachComponent"`
	Immediate Slot `json:"immediateComponent"`
	Achieved  Slot `json:"achievedComponent"`
}

func (t *TemporalSlots) slotComponents() []Component {
	var out []Component
	for _, s := range []Slot{t.Approach, t.Immediate, t.Achieved} {
		if s.C != nil {
			out = append(out, s.C)
		}
	}
	return out
}

// Plan is the root variant. It carries the authoritative coordinate every
// descendant offset chain resolves against, plus plan-level drone defaults.
type Plan struct {
	Type Kind `json:"type"`
	Core
	Coordinate       geo.Coordinate     `json:"coordinate"`
	TakeoffOffset    geo.Vector2        `json:"takeoffOffset"`
	MotionLimits     geo.MotionLimits   `json:"droneMotionLimits"`
	Children         Sequence           `json:"children,omitempty"`
	PointsOfInterest []*PointOfInterest `json:"pointsOfInterest,omitempty"`
}

// NewPlan creates a plan anchored at the given coordinate.
func NewPlan(coordinate geo.Coordinate) *Plan {
	return &Plan{
		Type:         KindPlan,
		Core:         newCore(),
		Coordinate:   coordinate,
		MotionLimits: geo.DefaultMotionLimits(),
	}
}

func (p *Plan) Kind() Kind { return KindPlan }

func (p *Plan) Subcomponents() []Component {
	out := make([]Component, 0, len(p.Children)+len(p.PointsOfInterest))
	out = append(out, p.Children...)
	for _, poi := range p.PointsOfInterest {
		out = append(out, poi)
	}
	return out
}

// PointOfInterestByID resolves a point of interest reference. Dangling ids
// resolve to nil, which is valid.
func (p *Plan) PointOfInterestByID(id string) *PointOfInterest {
	for _, poi := range p.PointsOfInterest {
		if poi.ID == id {
			return poi
		}
	}
	return nil
}

// List groups an ordered sequence of child components with no geometry of
// its own.
type List struct {
	Type Kind `json:"type"`
	Core
	Children Sequence `json:"children,omitempty"`
}

// NewList creates an empty list.
func NewList() *List {
	return &List{Type: KindList, Core: newCore()}
}

func (l *List) Kind() Kind { return KindList }

func (l *List) Subcomponents() []Component {
	out := make([]Component, len(l.Children))
	copy(out, l.Children)
	return out
}

// Destination sends the drone to a single offset position.
type Destination struct {
	Type Kind `json:"type"`
	Core
	TemporalSlots
	DestinationOffset    geo.Vector2           `json:"destinationOffset"`
	AltitudeRange        geo.AltitudeRange     `json:"altitudeRange"`
	AchievementTolerance geo.DistanceTolerance `json:"achievementTolerance"`
	PointOfInterestID    string                `json:"pointOfInterestId,omitempty"`
}

// NewDestination creates a destination at the given offset.
func NewDestination(offset geo.Vector2) *Destination {
	return &Destination{Type: KindDestination, Core: newCore(), DestinationOffset: offset}
}

func (d *Destination) Kind() Kind                  { return KindDestination }
func (d *Destination) Offset() geo.Vector2         { return d.DestinationOffset }
func (d *Destination) SetOffset(v geo.Vector2)     { d.DestinationOffset = v }
func (d *Destination) RepositionIfIncluded() bool  { return true }
func (d *Destination) Subcomponents() []Component  { return d.slotComponents() }
func (d *Destination) ReferenceOffsets() []geo.Vector2 {
	return []geo.Vector2{{}}
}

// OrbitDirection is the direction of travel around an orbit center.
type OrbitDirection string

const (
	OrbitClockwise        OrbitDirection = "clockwise"
	OrbitCounterClockwise OrbitDirection = "counterClockwise"
)

// Orbit circles a center offset at a fixed radius.
type Orbit struct {
	Type Kind `json:"type"`
	Core
	TemporalSlots
	CenterOffset      geo.Vector2       `json:"centerOffset"`
	Radius            float64           `json:"radius"`
	Direction         OrbitDirection    `json:"direction,omitempty"`
	AltitudeRange     geo.AltitudeRange `json:"altitudeRange"`
	PointOfInterestID string            `json:"pointOfInterestId,omitempty"`
}

// NewOrbit creates a clockwise orbit around the given center offset.
func NewOrbit(center geo.Vector2, radius float64) *Orbit {
	return &Orbit{
		Type:         KindOrbit,
		Core:         newCore(),
		CenterOffset: center,
		Radius:       radius,
		Direction:    OrbitClockwise,
	}
}

func (o *Orbit) Kind() Kind                 { return KindOrbit }
func (o *Orbit) Offset() geo.Vector2        { return o.CenterOffset }
func (o *Orbit) SetOffset(v geo.Vector2)    { o.CenterOffset = v }
func (o *Orbit) RepositionIfIncluded() bool { return true }
func (o *Orbit) Subcomponents() []Component { return o.slotComponents() }
func (o *Orbit) ReferenceOffsets() []geo.Vector2 {
	return []geo.Vector2{{}}
}

// Path flies an ordered sequence of waypoints.
type Path struct {
	Type Kind `json:"type"`
	Core
	TemporalSlots
	DestinationOffset geo.Vector2 `json:"destinationOffset"`
	CornerRadius      float64     `json:"cornerRadius,omitempty"`
	Waypoints         []*Waypoint `json:"waypoints,omitempty"`
}

// NewPath creates an empty path anchored at the given offset.
func NewPath(offset geo.Vector2) *Path {
	return &Path{Type: KindPath, Core: newCore(), DestinationOffset: offset}
}

func (p *Path) Kind() Kind                 { return KindPath }
func (p *Path) Offset() geo.Vector2        { return p.DestinationOffset }
func (p *Path) SetOffset(v geo.Vector2)    { p.DestinationOffset = v }
func (p *Path) RepositionIfIncluded() bool { return true }

func (p *Path) Subcomponents() []Component {
	out := make([]Component, 0, len(p.Waypoints)+3)
	for _, w := range p.Waypoints {
		out = append(out, w)
	}
	return append(out, p.slotComponents()...)
}

func (p *Path) ReferenceOffsets() []geo.Vector2 {
	out := make([]geo.Vector2, len(p.Waypoints))
	for i, w := range p.Waypoints {
		out[i] = w.DestinationOffset
	}
	return out
}

// MapPattern selects how a map component covers its boundary.
type MapPattern string

const (
	MapPatternGrid      MapPattern = "grid"
	MapPatternPerimeter MapPattern = "perimeter"
)

// Map covers a boundary polygon with a capture pattern.
type Map struct {
	Type Kind `json:"type"`
	Core
	TemporalSlots
	CenterOffset   geo.Vector2       `json:"centerOffset"`
	Pattern        MapPattern        `json:"pattern,omitempty"`
	GridSpacing    float64           `json:"gridSpacing,omitempty"`
	AltitudeRange  geo.AltitudeRange `json:"altitudeRange"`
	BoundaryPoints []*BoundaryPoint  `json:"boundaryPoints,omitempty"`
}

// NewMap creates a grid map around the given center offset.
func NewMap(center geo.Vector2) *Map {
	return &Map{Type: KindMap, Core: newCore(), CenterOffset: center, Pattern: MapPatternGrid}
}

func (m *Map) Kind() Kind                 { return KindMap }
func (m *Map) Offset() geo.Vector2        { return m.CenterOffset }
func (m *Map) SetOffset(v geo.Vector2)    { m.CenterOffset = v }
func (m *Map) RepositionIfIncluded() bool { return true }

func (m *Map) Subcomponents() []Component {
	out := make([]Component, 0, len(m.BoundaryPoints)+3)
	for _, b := range m.BoundaryPoints {
		out = append(out, b)
	}
	return append(out, m.slotComponents()...)
}

func (m *Map) ReferenceOffsets() []geo.Vector2 {
	out := make([]geo.Vector2, len(m.BoundaryPoints))
	for i, b := range m.BoundaryPoints {
		out[i] = b.DestinationOffset
	}
	return out
}

// Facade scans a vertical surface described by markers.
type Facade struct {
	Type Kind `json:"type"`
	Core
	TemporalSlots
	CenterOffset  geo.Vector2       `json:"centerOffset"`
	AltitudeRange geo.AltitudeRange `json:"altitudeRange"`
	Markers       []*Marker         `json:"markers,omitempty"`
}

// NewFacade creates an empty facade around the given center offset.
func NewFacade(center geo.Vector2) *Facade {
	return &Facade{Type: KindFacade, Core: newCore(), CenterOffset: center}
}

func (f *Facade) Kind() Kind                 { return KindFacade }
func (f *Facade) Offset() geo.Vector2        { return f.CenterOffset }
func (f *Facade) SetOffset(v geo.Vector2)    { f.CenterOffset = v }
func (f *Facade) RepositionIfIncluded() bool { return true }

func (f *Facade) Subcomponents() []Component {
	out := make([]Component, 0, len(f.Markers)+3)
	for _, m := range f.Markers {
		out = append(out, m)
	}
	return append(out, f.slotComponents()...)
}

func (f *Facade) ReferenceOffsets() []geo.Vector2 {
	out := make([]geo.Vector2, len(f.Markers))
	for i, m := range f.Markers {
		out[i] = m.DestinationOffset
	}
	return out
}

// CommandAction identifies what a command component does when reached.
type CommandAction string

const (
	CommandTakePhoto  CommandAction = "takePhoto"
	CommandStartVideo CommandAction = "startVideo"
	CommandStopVideo  CommandAction = "stopVideo"
	CommandGimbalTilt CommandAction = "gimbalTilt"
	CommandWait       CommandAction = "wait"
)

// Command executes a single drone or camera action with no geometry.
type Command struct {
	Type Kind `json:"type"`
	Core
	Action  CommandAction `json:"action"`
	Channel uint          `json:"channel,omitempty"`
	Value   float64       `json:"value,omitempty"`
}

// NewCommand creates a command for the given action.
func NewCommand(action CommandAction) *Command {
	return &Command{Type: KindCommand, Core: newCore(), Action: action}
}

func (c *Command) Kind() Kind { return KindCommand }
