package clipboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planforge/planforge/internal/component"
	"github.com/planforge/planforge/internal/geo"
)

func TestPushRegeneratesIDs(t *testing.T) {
	cb := New()
	dest := component.NewDestination(geo.NewVector2(0, 100))
	dest.Meta().Descriptors.Name = "My Stop"

	require.NoError(t, cb.Push(dest))
	require.Equal(t, 1, cb.Len())

	items, err := cb.Items()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.NotEqual(t, dest.Meta().ID, items[0].Meta().ID)
	assert.Equal(t, "My Stop", items[0].Meta().Descriptors.Name)
}

func TestItemsAreIndependentClones(t *testing.T) {
	cb := New()
	require.NoError(t, cb.Push(component.NewDestination(geo.NewVector2(0, 100))))

	first, err := cb.Items()
	require.NoError(t, err)
	second, err := cb.Items()
	require.NoError(t, err)

	// each paste gets its own identity
	assert.NotEqual(t, first[0].Meta().ID, second[0].Meta().ID)
}

func TestRemove(t *testing.T) {
	cb := New()
	a := component.NewDestination(geo.NewVector2(0, 1))
	a.Meta().Descriptors.Name = "a"
	b := component.NewDestination(geo.NewVector2(0, 2))
	b.Meta().Descriptors.Name = "b"
	require.NoError(t, cb.Push(a))
	require.NoError(t, cb.Push(b))

	cb.Remove(0)
	items, err := cb.Items()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].Meta().Descriptors.Name)

	cb.Remove(5)
	assert.Equal(t, 1, cb.Len())
}

func TestClear(t *testing.T) {
	cb := New()
	require.NoError(t, cb.Push(component.NewDestination(geo.NewVector2(0, 1))))
	cb.Clear()
	assert.Zero(t, cb.Len())
}
