package store

import (
	"github.com/planforge/planforge/internal/codec"
	"github.com/planforge/planforge/internal/component"
	"github.com/planforge/planforge/internal/geo"
	"github.com/planforge/planforge/internal/model"
)

// CollectionFor returns the collection a component belongs in: plans for
// Plan roots, subComponents for everything else.
func CollectionFor(c component.Component) string {
	if c.Kind() == component.KindPlan {
		return model.CollectionPlans
	}
	return model.CollectionSubcomponents
}

// ComponentMeta derives the document listing fields from a component tree.
func ComponentMeta(c component.Component) Meta {
	meta := Meta{
		Type:        string(c.Kind()),
		Name:        c.Meta().Descriptors.Name,
		Description: c.Meta().Descriptors.Description,
		Tags:        c.Meta().Descriptors.Tags,
		Details:     component.Summarize(c),
	}
	if p, ok := c.(*component.Plan); ok {
		meta.Latitude = p.Coordinate.Latitude
		meta.Longitude = p.Coordinate.Longitude
	}
	return meta
}

func (s *Store) writeContent(c component.Component) (string, error) {
	if s.CompressContent {
		return codec.WriteCompressed(c)
	}
	return codec.Write(c)
}

// CreateComponent serializes the component and creates it as a document.
func (s *Store) CreateComponent(collection string, c component.Component, copiedFrom string) (model.Document, error) {
	content, err := s.writeContent(c)
	if err != nil {
		return model.Document{}, err
	}
	return s.Create(collection, ComponentMeta(c), content, copiedFrom)
}

// EditComponent serializes the component as new content for the document.
func (s *Store) EditComponent(id string, c component.Component, delta string, decision Decision) (model.Version, error) {
	content, err := s.writeContent(c)
	if err != nil {
		return model.Version{}, err
	}
	return s.Edit(id, ComponentMeta(c), content, delta, decision)
}

// NewComponentVersion starts a fresh version holding the component.
func (s *Store) NewComponentVersion(id string, c component.Component) (model.Version, error) {
	content, err := s.writeContent(c)
	if err != nil {
		return model.Version{}, err
	}
	return s.NewVersion(id, ComponentMeta(c), content)
}

// LatestComponent reads and parses the latest version's content.
func (s *Store) LatestComponent(id string) (component.Component, model.Version, error) {
	ver, err := s.LatestVersion(id)
	if err != nil {
		return nil, model.Version{}, err
	}
	c, err := codec.Read(ver.Content)
	if err != nil {
		return nil, model.Version{}, err
	}
	return c, ver, nil
}

// CopyComponent duplicates a document: fresh ids throughout, a "Copy of"
// name, and a provenance back-reference that bumps the source's copies
// counter.
func (s *Store) CopyComponent(id string) (model.Document, error) {
	doc, err := s.Get(id)
	if err != nil {
		return model.Document{}, err
	}
	c, _, err := s.LatestComponent(id)
	if err != nil {
		return model.Document{}, err
	}
	clone, err := codec.Clone(c, true)
	if err != nil {
		return model.Document{}, err
	}

	name := clone.Meta().Descriptors.Name
	if name == "" {
		name = clone.Kind().DisplayName()
	}
	clone.Meta().Descriptors.Name = "Copy of " + name

	return s.CreateComponent(doc.Collection, clone, doc.ID)
}

// PublishSubcomponent stores a fresh-id clone of the child as a standalone
// repository subcomponent and links the live child back to it through its
// source. The caller persists the updated parent tree afterwards.
func (s *Store) PublishSubcomponent(child component.Component) (model.Document, error) {
	clone, err := codec.Clone(child, true)
	if err != nil {
		return model.Document{}, err
	}
	doc, err := s.CreateComponent(model.CollectionSubcomponents, clone, "")
	if err != nil {
		return model.Document{}, err
	}
	child.Meta().Source = &component.Source{Path: doc.Path(), Updated: doc.Updated}
	return doc, nil
}

// IncludeFromRepository returns a fresh-id clone of the document's latest
// content, linked back to the document through its source stamp. When a
// target coordinate is given and the variant repositions on inclusion, the
// clone is re-anchored there relative to the parent coordinate. The
// document's includes counter is bumped.
func (s *Store) IncludeFromRepository(id string, target *geo.Coordinate, parent geo.Coordinate) (component.Component, error) {
	doc, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	c, _, err := s.LatestComponent(id)
	if err != nil {
		return nil, err
	}
	clone, err := codec.Clone(c, true)
	if err != nil {
		return nil, err
	}

	clone.Meta().Source = &component.Source{Path: doc.Path(), Updated: doc.Updated}
	if target != nil && clone.RepositionIfIncluded() {
		component.Reposition(clone, *target, parent)
	}

	if err := s.IncrementIncludes(id); err != nil {
		return nil, err
	}
	return clone, nil
}
