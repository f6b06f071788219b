package component

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planforge/planforge/internal/geo"
)

func testPlan() (*Plan, *List, *Destination) {
	plan := NewPlan(geo.Coordinate{Latitude: 30, Longitude: -97})
	list := NewList()
	dest := NewDestination(geo.NewVector2(0, 100))
	list.Children = append(list.Children, dest)
	plan.Children = append(plan.Children, list)
	return plan, list, dest
}

func TestAbsoluteCoordinateComposition(t *testing.T) {
	plan, _, dest := testPlan()
	root := Resolve(plan)

	node := root.FindDescendant(dest.ID)
	require.NotNil(t, node)

	// list contributes no offset, so the destination sits 100m north of
	// the plan coordinate
	abs := node.AbsoluteCoordinate()
	back := plan.Coordinate.OffsetTo(abs)
	assert.InDelta(t, 100, back.Magnitude, 0.1)
	assert.InDelta(t, 0, back.Direction, 1e-6)
}

func TestAbsoluteCoordinateWithoutPlanRoot(t *testing.T) {
	list := NewList()
	dest := NewDestination(geo.NewVector2(math.Pi/2, 50))
	list.Children = append(list.Children, dest)

	node := Resolve(list).FindDescendant(dest.ID)
	require.NotNil(t, node)

	// no plan anchor: offsets accumulate from (0, 0)
	abs := node.AbsoluteCoordinate()
	assert.InDelta(t, 50, (geo.Coordinate{}).DistanceTo(abs), 1)
}

func TestDescendantsPreOrder(t *testing.T) {
	plan, list, dest := testPlan()
	second := NewCommand(CommandTakePhoto)
	list.Children = append(list.Children, second)

	nodes := Resolve(plan).Descendants()
	require.Len(t, nodes, 3)
	assert.Same(t, list, nodes[0].Component.(*List))
	assert.Same(t, dest, nodes[1].Component.(*Destination))
	assert.Same(t, second, nodes[2].Component.(*Command))

	// rebuilt on every call
	more := Resolve(plan).Descendants()
	assert.Len(t, more, 3)
}

func TestDescendantsIncludeTemporalAndStructural(t *testing.T) {
	path := NewPath(geo.Vector2{})
	path.Waypoints = append(path.Waypoints, NewWaypoint(geo.NewVector2(0, 10), 5))
	path.Approach = Slot{C: NewCommand(CommandStartVideo)}

	nodes := Resolve(path).Descendants()
	assert.Len(t, nodes, 2)
}

func TestFindDescendantMissing(t *testing.T) {
	plan, _, _ := testPlan()
	assert.Nil(t, Resolve(plan).FindDescendant("no-such-id"))
}

func TestPathAncestors(t *testing.T) {
	plan, _, dest := testPlan()
	root := Resolve(plan)

	node := root.FindDescendant(dest.ID)
	require.NotNil(t, node)

	ancestors := node.PathAncestors()
	require.Len(t, ancestors, 2)
	assert.Same(t, root, ancestors[0])
	assert.Equal(t, KindList, ancestors[1].Component.Kind())
	assert.Nil(t, root.PathAncestors())
}

func TestPathReferenceOffsets(t *testing.T) {
	path := NewPath(geo.Vector2{})
	path.Waypoints = append(path.Waypoints,
		NewWaypoint(geo.NewVector2(0, 10), 0),
		NewWaypoint(geo.NewVector2(math.Pi/2, 20), 0),
	)

	refs := path.ReferenceOffsets()
	require.Len(t, refs, 2)
	assert.Equal(t, 10.0, refs[0].Magnitude)
	assert.Equal(t, 20.0, refs[1].Magnitude)
}

func TestReposition(t *testing.T) {
	plan, _, dest := testPlan()
	root := Resolve(plan)
	node := root.FindDescendant(dest.ID)
	require.NotNil(t, node)

	target := plan.Coordinate.Translate(geo.NewVector2(math.Pi/2, 250))
	Reposition(dest, target, node.Parent.AbsoluteCoordinate())

	// resolve again: the destination's first reference offset must land on
	// the target
	moved := Resolve(plan).FindDescendant(dest.ID)
	require.NotNil(t, moved)
	assert.InDelta(t, 0, target.DistanceTo(moved.ReferenceCoordinate(moved.Component.ReferenceOffsets()[0])), 0.1)
}

func TestRepositionPlanMovesCoordinate(t *testing.T) {
	plan, _, _ := testPlan()
	target := geo.Coordinate{Latitude: 31, Longitude: -98}
	Reposition(plan, target, geo.Coordinate{})
	assert.Equal(t, target, plan.Coordinate)
}

func TestRepositionNonPositionalIsNoop(t *testing.T) {
	cmd := NewCommand(CommandWait)
	Reposition(cmd, geo.Coordinate{Latitude: 1, Longitude: 1}, geo.Coordinate{})
	assert.True(t, cmd.Offset().IsZero())
}

func TestPointOfInterestDanglingReference(t *testing.T) {
	plan, _, dest := testPlan()
	poi := NewPointOfInterest(geo.NewVector2(math.Pi, 30))
	plan.PointsOfInterest = append(plan.PointsOfInterest, poi)

	dest.PointOfInterestID = poi.ID
	assert.Same(t, poi, plan.PointOfInterestByID(dest.PointOfInterestID))

	// deleting the POI leaves the reference dangling, which is valid
	plan.PointsOfInterest = nil
	assert.Nil(t, plan.PointOfInterestByID(dest.PointOfInterestID))
}

func TestSummarize(t *testing.T) {
	plan, _, _ := testPlan()
	assert.Equal(t, Details{Subcomponents: 2}, Summarize(plan))
}
