package component

import (
	"github.com/planforge/planforge/internal/geo"
)

// Waypoint is a structural child of Path. Its offset is relative to the
// path's resolved coordinate.
type Waypoint struct {
	Type Kind `json:"type"`
	Core
	DestinationOffset geo.Vector2 `json:"destinationOffset"`
	Altitude          float64     `json:"altitude,omitempty"`
}

// NewWaypoint creates a waypoint at the given offset and altitude.
func NewWaypoint(offset geo.Vector2, altitude float64) *Waypoint {
	return &Waypoint{Type: KindWaypoint, Core: newCore(), DestinationOffset: offset, Altitude: altitude}
}

func (w *Waypoint) Kind() Kind              { return KindWaypoint }
func (w *Waypoint) Offset() geo.Vector2     { return w.DestinationOffset }
func (w *Waypoint) SetOffset(v geo.Vector2) { w.DestinationOffset = v }

// BoundaryPoint is a structural child of Map, one vertex of its boundary.
type BoundaryPoint struct {
	Type Kind `json:"type"`
	Core
	DestinationOffset geo.Vector2 `json:"destinationOffset"`
}

// NewBoundaryPoint creates a boundary vertex at the given offset.
func NewBoundaryPoint(offset geo.Vector2) *BoundaryPoint {
	return &BoundaryPoint{Type: KindBoundaryPoint, Core: newCore(), DestinationOffset: offset}
}

func (b *BoundaryPoint) Kind() Kind              { return KindBoundaryPoint }
func (b *BoundaryPoint) Offset() geo.Vector2     { return b.DestinationOffset }
func (b *BoundaryPoint) SetOffset(v geo.Vector2) { b.DestinationOffset = v }

// Marker is a structural child of Facade, one capture position on the
// scanned surface.
type Marker struct {
	Type Kind `json:"type"`
	Core
	DestinationOffset geo.Vector2 `json:"destinationOffset"`
	Altitude          float64     `json:"altitude,omitempty"`
}

// NewMarker creates a marker at the given offset and altitude.
func NewMarker(offset geo.Vector2, altitude float64) *Marker {
	return &Marker{Type: KindMarker, Core: newCore(), DestinationOffset: offset, Altitude: altitude}
}

func (m *Marker) Kind() Kind              { return KindMarker }
func (m *Marker) Offset() geo.Vector2     { return m.DestinationOffset }
func (m *Marker) SetOffset(v geo.Vector2) { m.DestinationOffset = v }

// PointOfInterest is owned by Plan and referenced by id from destinations
// and orbits. References are non-owning; dangling ids are valid.
type PointOfInterest struct {
	Type Kind `json:"type"`
	Core
	DestinationOffset geo.Vector2 `json:"destinationOffset"`
	Altitude          float64     `json:"altitude,omitempty"`
}

// NewPointOfInterest creates a point of interest at the given offset.
func NewPointOfInterest(offset geo.Vector2) *PointOfInterest {
	return &PointOfInterest{Type: KindPointOfInterest, Core: newCore(), DestinationOffset: offset}
}

func (p *PointOfInterest) Kind() Kind              { return KindPointOfInterest }
func (p *PointOfInterest) Offset() geo.Vector2     { return p.DestinationOffset }
func (p *PointOfInterest) SetOffset(v geo.Vector2) { p.DestinationOffset = v }
