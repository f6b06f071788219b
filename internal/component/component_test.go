package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planforge/planforge/internal/geo"
)

func TestDecodeUnknownKind(t *testing.T) {
	_, err := Decode([]byte(`{"type":"TeleportComponent","id":"x"}`))
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = Decode([]byte(`{"id":"x"}`))
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestEncodeDecodePolymorphicChildren(t *testing.T) {
	list := NewList()
	list.Descriptors.Name = "sequence"
	list.Children = append(list.Children, NewCommand(CommandTakePhoto), NewDestination(geo.NewVector2(0, 25)))

	raw, err := Encode(list)
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)

	back, ok := decoded.(*List)
	require.True(t, ok)
	assert.Equal(t, "sequence", back.Descriptors.Name)
	require.Len(t, back.Children, 2)
	assert.Equal(t, KindCommand, back.Children[0].Kind())
	assert.Equal(t, KindDestination, back.Children[1].Kind())
}

func TestSlotRoundTrip(t *testing.T) {
	dest := NewDestination(geo.Vector2{})
	dest.Approach = Slot{C: NewCommand(CommandStartVideo)}

	raw, err := Encode(dest)
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)

	back := decoded.(*Destination)
	require.False(t, back.Approach.IsEmpty())
	assert.Equal(t, KindCommand, back.Approach.C.Kind())
	assert.True(t, back.Immediate.IsEmpty())
	assert.True(t, back.Achieved.IsEmpty())
}

func TestKindDisplayName(t *testing.T) {
	assert.Equal(t, "Plan", KindPlan.DisplayName())
	assert.Equal(t, "Waypoint", KindWaypoint.DisplayName())
}

func TestNewIDUnique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}

var (
	_ Positional = (*Destination)(nil)
	_ Positional = (*Orbit)(nil)
	_ Positional = (*Path)(nil)
	_ Positional = (*Map)(nil)
	_ Positional = (*Facade)(nil)
	_ Positional = (*Waypoint)(nil)
	_ Component  = (*Plan)(nil)
	_ Component  = (*List)(nil)
	_ Component  = (*Command)(nil)
)
