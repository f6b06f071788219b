package store

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/planforge/planforge/internal/component"
	"github.com/planforge/planforge/internal/geo"
	"github.com/planforge/planforge/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.DatabaseModels...))
	return New(db, nil, zerolog.Nop())
}

func planMeta(name string) Meta {
	return Meta{Type: string(component.KindPlan), Name: name, Tags: []string{"test"}}
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)

	doc, err := s.Create(model.CollectionPlans, planMeta("alpha"), `{"type":"PlanComponent"}`, "")
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, model.CollectionPlans, doc.Collection)
	assert.False(t, doc.Created.IsZero())

	got, err := s.Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Name)
	assert.Equal(t, model.CollectionPlans+"/"+doc.ID, got.Path())

	ver, err := s.LatestVersion(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, ver.DocumentID)
	assert.NotEmpty(t, ver.Delta)
	assert.False(t, ver.IsLocked())
	assert.Equal(t, `{"type":"PlanComponent"}`, ver.Content)
}

func TestCreateInvalidCollection(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create("drawings", Meta{}, "{}", "")
	assert.ErrorIs(t, err, ErrInvalidCollection)
}

func TestCreateCopiedFromIncrementsCopies(t *testing.T) {
	s := newTestStore(t)

	src, err := s.Create(model.CollectionPlans, planMeta("src"), "{}", "")
	require.NoError(t, err)

	dup, err := s.Create(model.CollectionPlans, planMeta("dup"), "{}", src.ID)
	require.NoError(t, err)
	require.NotNil(t, dup.CopiedFrom)
	assert.Equal(t, src.ID, *dup.CopiedFrom)

	got, err := s.Get(src.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.Copies)
}

func TestGetByPath(t *testing.T) {
	s := newTestStore(t)
	doc, err := s.Create(model.CollectionSubcomponents, Meta{Name: "part"}, "{}", "")
	require.NoError(t, err)

	got, err := s.GetByPath(doc.Path())
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)

	_, err = s.GetByPath("bogus/" + doc.ID)
	assert.ErrorIs(t, err, ErrInvalidCollection)

	_, err = s.GetByPath(model.CollectionPlans + "/" + doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditUnlockedOverwritesInPlace(t *testing.T) {
	s := newTestStore(t)
	doc, err := s.Create(model.CollectionPlans, planMeta("p"), "v1", "")
	require.NoError(t, err)
	first, err := s.LatestVersion(doc.ID)
	require.NoError(t, err)

	ver, err := s.Edit(doc.ID, planMeta("p2"), "v2", "delta-1", DecisionNone)
	require.NoError(t, err)
	assert.Equal(t, first.ID, ver.ID)
	assert.Equal(t, "v2", ver.Content)
	assert.Equal(t, "delta-1", ver.Delta)

	versions, err := s.Versions(doc.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1)

	got, err := s.Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "p2", got.Name)
}

func TestEditLockedRequiresDecision(t *testing.T) {
	s := newTestStore(t)
	doc, err := s.Create(model.CollectionPlans, planMeta("p"), "v1", "")
	require.NoError(t, err)
	first, err := s.LatestVersion(doc.ID)
	require.NoError(t, err)
	require.NoError(t, s.Lock(doc.ID, first.ID))

	// no decision: nothing written
	_, err = s.Edit(doc.ID, planMeta("p"), "v2", "d", DecisionNone)
	assert.ErrorIs(t, err, ErrDecisionRequired)

	unchanged, err := s.LatestVersion(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "v1", unchanged.Content)
	assert.True(t, unchanged.IsLocked())
}

func TestEditLockedContinueClearsLock(t *testing.T) {
	s := newTestStore(t)
	doc, err := s.Create(model.CollectionPlans, planMeta("p"), "v1", "")
	require.NoError(t, err)
	first, err := s.LatestVersion(doc.ID)
	require.NoError(t, err)
	require.NoError(t, s.Lock(doc.ID, first.ID))

	ver, err := s.Edit(doc.ID, planMeta("p"), "v2", "d", DecisionContinue)
	require.NoError(t, err)
	assert.Equal(t, first.ID, ver.ID)
	assert.Equal(t, "v2", ver.Content)
	assert.False(t, ver.IsLocked())
}

func TestEditLockedBranchFreezesOld(t *testing.T) {
	s := newTestStore(t)
	doc, err := s.Create(model.CollectionPlans, planMeta("p"), "v1", "")
	require.NoError(t, err)
	first, err := s.LatestVersion(doc.ID)
	require.NoError(t, err)
	require.NoError(t, s.Lock(doc.ID, first.ID))

	ver, err := s.Edit(doc.ID, planMeta("p"), "v2", "d", DecisionNewVersion)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, ver.ID)
	assert.False(t, ver.IsLocked())

	// the locked version stays frozen with its content
	old, err := s.Version(doc.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, old.IsLocked())
	assert.Equal(t, "v1", old.Content)

	latest, err := s.LatestVersion(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, ver.ID, latest.ID)
}

func TestNewVersionHasNoDelta(t *testing.T) {
	s := newTestStore(t)
	doc, err := s.Create(model.CollectionPlans, planMeta("p"), "v1", "")
	require.NoError(t, err)

	ver, err := s.NewVersion(doc.ID, planMeta("p"), "v2")
	require.NoError(t, err)
	assert.Empty(t, ver.Delta)

	versions, err := s.Versions(doc.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 2)
}

func TestRevertDeletesNewerVersions(t *testing.T) {
	s := newTestStore(t)
	doc, err := s.Create(model.CollectionPlans, planMeta("p"), "v1", "")
	require.NoError(t, err)
	target, err := s.LatestVersion(doc.ID)
	require.NoError(t, err)

	_, err = s.NewVersion(doc.ID, planMeta("p"), "v2")
	require.NoError(t, err)
	_, err = s.NewVersion(doc.ID, planMeta("p"), "v3")
	require.NoError(t, err)

	require.NoError(t, s.Revert(doc.ID, target.ID))

	versions, err := s.Versions(doc.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, target.ID, versions[0].ID)
	assert.Equal(t, "v1", versions[0].Content)
}

func TestDeleteVersion(t *testing.T) {
	s := newTestStore(t)
	doc, err := s.Create(model.CollectionPlans, planMeta("p"), "v1", "")
	require.NoError(t, err)
	first, err := s.LatestVersion(doc.ID)
	require.NoError(t, err)
	_, err = s.NewVersion(doc.ID, planMeta("p"), "v2")
	require.NoError(t, err)

	require.NoError(t, s.DeleteVersion(doc.ID, first.ID))
	assert.ErrorIs(t, s.DeleteVersion(doc.ID, first.ID), ErrVersionNotFound)

	versions, err := s.Versions(doc.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestDeleteCascades(t *testing.T) {
	s := newTestStore(t)
	doc, err := s.Create(model.CollectionPlans, planMeta("p"), "v1", "")
	require.NoError(t, err)
	_, err = s.NewVersion(doc.ID, planMeta("p"), "v2")
	require.NoError(t, err)

	require.NoError(t, s.Delete(doc.ID))

	_, err = s.Get(doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	versions, err := s.Versions(doc.ID)
	require.NoError(t, err)
	assert.Empty(t, versions)

	assert.ErrorIs(t, s.Delete(doc.ID), ErrNotFound)
}

func TestListOrderedByTouched(t *testing.T) {
	s := newTestStore(t)
	a, err := s.Create(model.CollectionPlans, planMeta("a"), "{}", "")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	b, err := s.Create(model.CollectionPlans, planMeta("b"), "{}", "")
	require.NoError(t, err)

	docs, err := s.List(model.CollectionPlans, 0)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, b.ID, docs[0].ID)

	// touching moves a document to the top
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, s.Touch(a.ID))
	docs, err = s.List(model.CollectionPlans, 0)
	require.NoError(t, err)
	assert.Equal(t, a.ID, docs[0].ID)

	limited, err := s.List(model.CollectionPlans, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestIncrementIncludes(t *testing.T) {
	s := newTestStore(t)
	doc, err := s.Create(model.CollectionSubcomponents, Meta{Name: "part"}, "{}", "")
	require.NoError(t, err)

	require.NoError(t, s.IncrementIncludes(doc.ID))
	require.NoError(t, s.IncrementIncludes(doc.ID))

	got, err := s.Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(2), got.Includes)

	assert.ErrorIs(t, s.IncrementIncludes("missing"), ErrNotFound)
}

func TestEditPreservesCounters(t *testing.T) {
	s := newTestStore(t)
	doc, err := s.Create(model.CollectionSubcomponents, Meta{Name: "part"}, "{}", "")
	require.NoError(t, err)

	// an include lands after the edit has read the document row but
	// before it writes the listing fields back
	base := s.clock
	s.clock = func() time.Time {
		s.clock = base
		require.NoError(t, s.IncrementIncludes(doc.ID))
		return base()
	}

	_, err = s.Edit(doc.ID, Meta{Name: "renamed"}, "v2", "d", DecisionNone)
	require.NoError(t, err)

	got, err := s.Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.Includes)
	assert.Equal(t, "renamed", got.Name)
}

func TestComponentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	plan := component.NewPlan(geo.Coordinate{Latitude: 30, Longitude: -97})
	plan.Descriptors.Name = "roof survey"

	doc, err := s.CreateComponent(model.CollectionPlans, plan, "")
	require.NoError(t, err)
	assert.Equal(t, string(component.KindPlan), doc.Type)
	assert.Equal(t, 30.0, doc.Latitude)
	assert.Equal(t, "roof survey", doc.Name)

	back, _, err := s.LatestComponent(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, back.Meta().ID)
}

func TestComponentRoundTripCompressed(t *testing.T) {
	s := newTestStore(t)
	s.CompressContent = true
	plan := component.NewPlan(geo.Coordinate{Latitude: 30, Longitude: -97})

	doc, err := s.CreateComponent(model.CollectionPlans, plan, "")
	require.NoError(t, err)

	ver, err := s.LatestVersion(doc.ID)
	require.NoError(t, err)
	assert.NotContains(t, ver.Content, "{")

	back, _, err := s.LatestComponent(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, back.Meta().ID)
}

func TestCopyComponent(t *testing.T) {
	s := newTestStore(t)
	plan := component.NewPlan(geo.Coordinate{Latitude: 30, Longitude: -97})
	plan.Descriptors.Name = "original"
	plan.Children = append(plan.Children, component.NewDestination(geo.NewVector2(0, 50)))

	doc, err := s.CreateComponent(model.CollectionPlans, plan, "")
	require.NoError(t, err)

	copyDoc, err := s.CopyComponent(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Copy of original", copyDoc.Name)
	require.NotNil(t, copyDoc.CopiedFrom)
	assert.Equal(t, doc.ID, *copyDoc.CopiedFrom)

	src, err := s.Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), src.Copies)

	// every id in the copy is fresh
	back, _, err := s.LatestComponent(copyDoc.ID)
	require.NoError(t, err)
	assert.NotEqual(t, plan.ID, back.Meta().ID)
	assert.NotEqual(t,
		plan.Children[0].Meta().ID,
		back.(*component.Plan).Children[0].Meta().ID)
}

func TestPublishSubcomponent(t *testing.T) {
	s := newTestStore(t)
	dest := component.NewDestination(geo.NewVector2(0, 75))
	dest.Descriptors.Name = "inspection point"

	doc, err := s.PublishSubcomponent(dest)
	require.NoError(t, err)
	assert.Equal(t, model.CollectionSubcomponents, doc.Collection)

	require.NotNil(t, dest.Source)
	assert.Equal(t, doc.Path(), dest.Source.Path)
	assert.Equal(t, doc.Updated, dest.Source.Updated)

	// the stored clone has its own ids
	back, _, err := s.LatestComponent(doc.ID)
	require.NoError(t, err)
	assert.NotEqual(t, dest.ID, back.Meta().ID)
}

func TestIncludeFromRepository(t *testing.T) {
	s := newTestStore(t)
	dest := component.NewDestination(geo.NewVector2(0, 75))
	doc, err := s.CreateComponent(model.CollectionSubcomponents, dest, "")
	require.NoError(t, err)

	parent := geo.Coordinate{Latitude: 30, Longitude: -97}
	target := parent.Translate(geo.NewVector2(0, 100))

	included, err := s.IncludeFromRepository(doc.ID, &target, parent)
	require.NoError(t, err)
	assert.NotEqual(t, dest.ID, included.Meta().ID)
	require.NotNil(t, included.Meta().Source)
	assert.Equal(t, doc.Path(), included.Meta().Source.Path)

	// repositioned so the reference offset lands on the target
	abs := parent.Translate(included.Offset())
	assert.InDelta(t, 0, target.DistanceTo(abs), 0.1)

	got, err := s.Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.Includes)
}

func TestLatestVersionMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.LatestVersion("nope")
	assert.ErrorIs(t, err, ErrVersionNotFound)
}
