// Package source tracks the links between included subtrees and the
// repository documents they came from, and moves updates across them.
package source

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/planforge/planforge/internal/cache"
	"github.com/planforge/planforge/internal/codec"
	"github.com/planforge/planforge/internal/component"
	"github.com/planforge/planforge/internal/geo"
	"github.com/planforge/planforge/internal/model"
	"github.com/planforge/planforge/internal/util"
)

// ErrStaleReference is returned when a referenced node no longer exists in
// the tree or carries no source link.
var ErrStaleReference = errors.New("source reference no longer resolves")

// Status classifies a source reference against the repository.
type Status int

const (
	// StatusUpToDate means the repository document has not changed since
	// the reference was stamped.
	StatusUpToDate Status = iota
	// StatusUpdateAvailable means the repository document changed after the
	// stamp and its latest content is loaded into Update.
	StatusUpdateAvailable
	// StatusInaccessible means the repository document could not be read,
	// usually because it was deleted.
	StatusInaccessible
)

func (s Status) String() string {
	switch s {
	case StatusUpToDate:
		return "upToDate"
	case StatusUpdateAvailable:
		return "updateAvailable"
	case StatusInaccessible:
		return "inaccessible"
	default:
		return "unknown"
	}
}

// Ref is one node's link to the repository document it was included from.
type Ref struct {
	NodeID string
	Path   string
	Stamp  time.Time

	Status   Status
	Document *model.Document
	Update   component.Component
}

// Fetcher is the slice of the store a refresh needs.
type Fetcher interface {
	GetByPath(path string) (model.Document, error)
	LatestComponent(id string) (component.Component, model.Version, error)
}

// Manager refreshes and applies source references for one editor. Fetched
// documents are cached per refresh pass, since many nodes in a tree often
// point at the same repository document.
type Manager struct {
	fetcher Fetcher
	cache   *cache.DocumentCache
	logger  zerolog.Logger
	clock   func() time.Time
}

func NewManager(fetcher Fetcher, logger zerolog.Logger) *Manager {
	return &Manager{
		fetcher: fetcher,
		cache:   cache.NewDocumentCache(),
		logger:  logger,
		clock:   time.Now,
	}
}

// Collect walks the tree and returns one reference per node that carries a
// source link, in pre-order.
func Collect(root component.Component) []*Ref {
	var refs []*Ref
	for _, node := range component.Resolve(root).Descendants() {
		src := node.Component.Meta().Source
		if src == nil {
			continue
		}
		refs = append(refs, &Ref{
			NodeID: node.Component.Meta().ID,
			Path:   src.Path,
			Stamp:  src.Updated,
		})
	}
	return refs
}

// Refresh classifies each reference against the repository in place. A
// document updated after the reference's stamp makes the reference
// StatusUpdateAvailable with the latest content loaded; a document with an
// emptied version history stays StatusUpToDate since there is nothing to
// offer.
func (m *Manager) Refresh(refs []*Ref) {
	m.cache.Reset()
	for _, ref := range refs {
		doc, ok := m.cache.Get(ref.Path)
		if !ok {
			fetched, err := m.fetcher.GetByPath(ref.Path)
			if err != nil {
				m.logger.Debug().Err(err).
					Str("path", ref.Path).
					Msg("source document inaccessible")
				ref.Status = StatusInaccessible
				ref.Document = nil
				ref.Update = nil
				continue
			}
			doc = fetched
			m.cache.Add(doc)
		}
		ref.Document = &doc

		if !doc.Updated.After(ref.Stamp) {
			ref.Status = StatusUpToDate
			ref.Update = nil
			continue
		}

		update, _, err := m.fetcher.LatestComponent(doc.ID)
		if err != nil {
			m.logger.Debug().Err(err).
				Str("path", ref.Path).
				Msg("source document has no readable content")
			ref.Status = StatusUpToDate
			ref.Update = nil
			continue
		}
		ref.Status = StatusUpdateAvailable
		ref.Update = update
	}
}

// Accept applies every StatusUpdateAvailable reference into a clone of the
// tree and returns it; the input tree is never touched, so a failed persist
// loses nothing. Each updated node keeps its identity and descriptors, is
// re-anchored where its reference point stood when the variant repositions
// on inclusion, and gets its source stamp moved to the document's update
// time. References whose node has meanwhile left the tree are skipped.
func (m *Manager) Accept(root component.Component, refs []*Ref) (component.Component, int, error) {
	work, err := codec.Clone(root, false)
	if err != nil {
		return nil, 0, err
	}

	applied := 0
	for _, ref := range refs {
		if ref.Status != StatusUpdateAvailable || ref.Update == nil || ref.Document == nil {
			continue
		}
		// re-resolve each pass: applying JSON rebuilds subtrees
		node := component.Resolve(work).FindDescendant(ref.NodeID)
		if node == nil {
			continue
		}

		var target *geo.Coordinate
		if node.Component.RepositionIfIncluded() {
			if offsets := node.Component.ReferenceOffsets(); len(offsets) > 0 {
				coord := node.ReferenceCoordinate(offsets[0])
				target = &coord
			}
		}

		update, err := codec.Clone(ref.Update, true)
		if err != nil {
			return nil, 0, err
		}
		raw, err := codec.PlainJSON(update)
		if err != nil {
			return nil, 0, err
		}
		if err := codec.ApplyJSON(node.Component, raw); err != nil {
			return nil, 0, err
		}

		if target != nil {
			parent := geo.Coordinate{}
			if node.Parent != nil {
				parent = node.Parent.AbsoluteCoordinate()
			}
			component.Reposition(node.Component, *target, parent)
		}

		node.Component.Meta().Source = &component.Source{
			Path:    ref.Path,
			Updated: ref.Document.Updated,
		}
		applied++
	}
	return work, applied, nil
}

// Reject moves each reference's stamp forward on the live tree so the
// current update stops being offered, without applying it. Returns how many
// references were stamped.
func (m *Manager) Reject(root component.Component, refs []*Ref) int {
	rootNode := component.Resolve(root)
	now := m.clock()
	stamped := 0
	for _, ref := range refs {
		node := rootNode.FindDescendant(ref.NodeID)
		if node == nil || node.Component.Meta().Source == nil {
			continue
		}
		node.Component.Meta().Source.Updated = now
		stamped++
	}
	return stamped
}

// Unlink removes the node's source link for good.
func Unlink(root component.Component, nodeID string) error {
	node := component.Resolve(root).FindDescendant(nodeID)
	if node == nil || node.Component.Meta().Source == nil {
		return ErrStaleReference
	}
	node.Component.Meta().Source = nil
	return nil
}

// DisplayPath renders where a referenced node sits in the tree, for update
// listings. Returns "" when the node is gone.
func DisplayPath(root component.Component, nodeID string) string {
	node := component.Resolve(root).FindDescendant(nodeID)
	if node == nil {
		return ""
	}
	var parts []string
	for _, ancestor := range node.PathAncestors() {
		if ancestor.Parent == nil {
			continue
		}
		parts = append(parts, component.Title(ancestor))
	}
	parts = append(parts, component.Title(node))
	return util.JoinNotEmpty(parts, " / ")
}
