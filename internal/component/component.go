package component

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/planforge/planforge/internal/geo"
)

// Kind discriminates component variants on the wire. Every serialized node
// carries it in its "type" field.
type Kind string

const (
	KindPlan        Kind = "PlanComponent"
	KindList        Kind = "ListComponent"
	KindDestination Kind = "DestinationComponent"
	KindOrbit       Kind = "OrbitComponent"
	KindPath        Kind = "PathComponent"
	KindMap         Kind = "MapComponent"
	KindFacade      Kind = "FacadeComponent"
	KindCommand     Kind = "CommandComponent"

	KindWaypoint        Kind = "Waypoint"
	KindBoundaryPoint   Kind = "BoundaryPoint"
	KindMarker          Kind = "Marker"
	KindPointOfInterest Kind = "PointOfInterest"
)

// ErrUnknownKind is returned when a serialized node carries a type
// discriminator no variant claims.
var ErrUnknownKind = errors.New("unknown component kind")

// DisplayName is the human name of the kind, e.g. "Plan" for PlanComponent.
func (k Kind) DisplayName() string {
	return strings.TrimSuffix(string(k), "Component")
}

// Descriptors are the user-facing naming fields shared by all variants.
type Descriptors struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Source links an included component back to the repository document it was
// included from. Updated is the document's updated timestamp as of the last
// accepted (or rejected) sync.
type Source struct {
	Path    string    `json:"path"`
	Updated time.Time `json:"updated"`
}

// Core holds the fields every component variant shares. Variants embed it.
type Core struct {
	ID             string            `json:"id"`
	Descriptors    Descriptors       `json:"descriptors"`
	Required       bool              `json:"required,omitempty"`
	Exclusive      bool              `json:"exclusive,omitempty"`
	Reference      string            `json:"reference,omitempty"`
	Source         *Source           `json:"source,omitempty"`
	LimitsOverride *geo.MotionLimits `json:"motionLimitsOverride,omitempty"`
}

// Meta returns the shared fields of the component.
func (c *Core) Meta() *Core { return c }

// Offset is the positional offset from the parent's resolved coordinate.
// Variants without a position keep the zero vector.
func (c *Core) Offset() geo.Vector2 { return geo.Vector2{} }

// ReferenceOffsets is nil for variants without footprint geometry.
func (c *Core) ReferenceOffsets() []geo.Vector2 { return nil }

// RepositionIfIncluded reports whether inclusion should re-anchor the
// component at the selection coordinate.
func (c *Core) RepositionIfIncluded() bool { return false }

// Subcomponents returns the owned children in traversal order.
func (c *Core) Subcomponents() []Component { return nil }

// Component is the interface all variants implement.
type Component interface {
	Kind() Kind
	Meta() *Core
	Offset() geo.Vector2
	ReferenceOffsets() []geo.Vector2
	RepositionIfIncluded() bool
	Subcomponents() []Component
}

// Positional is implemented by variants anchored by an offset from the
// parent's resolved coordinate.
type Positional interface {
	Component
	SetOffset(geo.Vector2)
}

// NewID returns a fresh component id.
func NewID() string {
	return uuid.NewString()
}

func newCore() Core {
	return Core{ID: NewID()}
}

// Encode serializes a component to JSON with its kind discriminator.
func Encode(c Component) ([]byte, error) {
	return json.Marshal(c)
}

// Decode deserializes a component by its "type" discriminator.
func Decode(data []byte) (Component, error) {
	var probe struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decoding component: %w", err)
	}
	c := newByKind(probe.Type)
	if c == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, probe.Type)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", probe.Type, err)
	}
	return c, nil
}

func newByKind(k Kind) Component {
	switch k {
	case KindPlan:
		return &Plan{Type: KindPlan}
	case KindList:
		return &List{Type: KindList}
	case KindDestination:
		return &Destination{Type: KindDestination}
	case KindOrbit:
		return &Orbit{Type: KindOrbit}
	case KindPath:
		return &Path{Type: KindPath}
	case KindMap:
		return &Map{Type: KindMap}
	case KindFacade:
		return &Facade{Type: KindFacade}
	case KindCommand:
		return &Command{Type: KindCommand}
	case KindWaypoint:
		return &Waypoint{Type: KindWaypoint}
	case KindBoundaryPoint:
		return &BoundaryPoint{Type: KindBoundaryPoint}
	case KindMarker:
		return &Marker{Type: KindMarker}
	case KindPointOfInterest:
		return &PointOfInterest{Type: KindPointOfInterest}
	default:
		return nil
	}
}

// Sequence is an ordered list of polymorphic child components.
type Sequence []Component

func (s Sequence) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, len(s))
	for i, c := range s {
		raw, err := Encode(c)
		if err != nil {
			return nil, err
		}
		out[i] = raw
	}
	return json.Marshal(out)
}

func (s *Sequence) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(Sequence, 0, len(raws))
	for _, raw := range raws {
		c, err := Decode(raw)
		if err != nil {
			return err
		}
		out = append(out, c)
	}
	*s = out
	return nil
}

// Slot holds an optional polymorphic child component.
type Slot struct {
	C Component
}

// IsEmpty reports whether the slot holds no component.
func (s Slot) IsEmpty() bool { return s.C == nil }

func (s Slot) MarshalJSON() ([]byte, error) {
	if s.C == nil {
		return []byte("null"), nil
	}
	return Encode(s.C)
}

func (s *Slot) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		s.C = nil
		return nil
	}
	c, err := Decode(data)
	if err != nil {
		return err
	}
	s.C = c
	return nil
}
