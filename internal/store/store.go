package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/planforge/planforge/internal/model"
	"github.com/planforge/planforge/internal/notify"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrVersionNotFound is returned when a version does not exist, or a
	// document has no versions at all.
	ErrVersionNotFound = errors.New("version not found")
	// ErrDecisionRequired is returned when an edit hits a locked latest
	// version and the caller has not said whether to continue it or branch.
	ErrDecisionRequired = errors.New("latest version is locked, decision required")
	// ErrInvalidCollection is returned for unknown collection names.
	ErrInvalidCollection = errors.New("invalid collection")
)

// Decision says how an edit should treat a locked latest version.
type Decision int

const (
	// DecisionNone means the caller has not decided yet.
	DecisionNone Decision = iota
	// DecisionContinue clears the lock and overwrites the latest version.
	DecisionContinue
	// DecisionNewVersion freezes the locked version and branches a fresh
	// unlocked one.
	DecisionNewVersion
)

// Meta carries the denormalized listing fields refreshed on every write.
type Meta struct {
	Type        string
	Latitude    float64
	Longitude   float64
	Name        string
	Description string
	Tags        []string
	Details     any
}

// Store implements the document/version protocol over gorm. Every
// multi-row write runs in one transaction and every mutation publishes a
// change event.
type Store struct {
	db     *gorm.DB
	hub    *notify.Hub
	logger zerolog.Logger
	clock  func() time.Time

	// CompressContent stores version content gzip-compressed.
	CompressContent bool

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New creates a store over an open database.
func New(db *gorm.DB, hub *notify.Hub, logger zerolog.Logger) *Store {
	return &Store{
		db:      db,
		hub:     hub,
		logger:  logger,
		clock:   time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// newID returns a ULID for document and version rows. ULIDs sort
// lexicographically by creation time, which makes "latest by created,
// tie-break by id" a deterministic total order.
func (s *Store) newID(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), s.entropy).String()
}

// NewDelta returns a fresh change token for echo suppression.
func NewDelta() string {
	return uuid.NewString()
}

func applyMeta(doc *model.Document, meta Meta) error {
	doc.Type = meta.Type
	doc.Latitude = meta.Latitude
	doc.Longitude = meta.Longitude
	doc.Name = meta.Name
	doc.Description = meta.Description

	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	doc.Tags = datatypes.JSON(rawTags)

	if meta.Details != nil {
		rawDetails, err := json.Marshal(meta.Details)
		if err != nil {
			return err
		}
		doc.Details = datatypes.JSON(rawDetails)
	}
	return nil
}

// metaColumns renders the meta as named column updates, so refreshing the
// listing fields never writes back the copies/includes counters bumped
// concurrently with gorm.Expr.
func metaColumns(meta Meta) (map[string]any, error) {
	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	cols := map[string]any{
		"type":        meta.Type,
		"latitude":    meta.Latitude,
		"longitude":   meta.Longitude,
		"name":        meta.Name,
		"description": meta.Description,
		"tags":        datatypes.JSON(rawTags),
	}
	if meta.Details != nil {
		rawDetails, err := json.Marshal(meta.Details)
		if err != nil {
			return nil, err
		}
		cols["details"] = datatypes.JSON(rawDetails)
	}
	return cols, nil
}

func (s *Store) publish(doc model.Document, kind notify.EventKind, versionID, delta string) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(notify.Event{
		DocumentID: doc.ID,
		Collection: doc.Collection,
		Kind:       kind,
		VersionID:  versionID,
		Delta:      delta,
		Timestamp:  s.clock(),
	})
}

// Create inserts a document with its first unlocked version in one
// transaction. A non-empty copiedFrom records provenance and bumps the
// source document's copies counter.
func (s *Store) Create(collection string, meta Meta, content string, copiedFrom string) (model.Document, error) {
	if !model.ValidCollection(collection) {
		return model.Document{}, ErrInvalidCollection
	}

	now := s.clock()
	doc := model.Document{
		ID:         s.newID(now),
		Collection: collection,
		Created:    now,
		Updated:    now,
		Touched:    now,
	}
	if err := applyMeta(&doc, meta); err != nil {
		return model.Document{}, err
	}
	if copiedFrom != "" {
		doc.CopiedFrom = &copiedFrom
	}
	ver := model.Version{
		ID:         s.newID(now),
		DocumentID: doc.ID,
		Created:    now,
		Updated:    now,
		Delta:      NewDelta(),
		Content:    content,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&doc).Error; err != nil {
			return err
		}
		if err := tx.Create(&ver).Error; err != nil {
			return err
		}
		if copiedFrom != "" {
			if err := tx.Model(&model.Document{}).Where("id = ?", copiedFrom).
				UpdateColumn("copies", gorm.Expr("copies + ?", 1)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return model.Document{}, err
	}

	s.logger.Debug().Str("id", doc.ID).Str("collection", collection).Msg("created document")
	s.publish(doc, notify.KindDocumentCreated, ver.ID, ver.Delta)
	return doc, nil
}

// Get fetches one document by id.
func (s *Store) Get(id string) (model.Document, error) {
	var doc model.Document
	err := s.db.First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Document{}, ErrNotFound
	}
	return doc, err
}

// GetByPath fetches a document by its "collection/id" repository path.
func (s *Store) GetByPath(path string) (model.Document, error) {
	collection, id, ok := model.SplitPath(path)
	if !ok {
		return model.Document{}, ErrInvalidCollection
	}
	doc, err := s.Get(id)
	if err != nil {
		return model.Document{}, err
	}
	if doc.Collection != collection {
		return model.Document{}, ErrNotFound
	}
	return doc, nil
}

// List returns the collection's documents ordered by recency of touch.
// limit <= 0 returns everything.
func (s *Store) List(collection string, limit int) ([]model.Document, error) {
	if !model.ValidCollection(collection) {
		return nil, ErrInvalidCollection
	}
	q := s.db.Where("collection = ?", collection).Order("touched DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var docs []model.Document
	err := q.Find(&docs).Error
	return docs, err
}

// Touch stamps the document's touched timestamp, moving it to the top of
// recency listings.
func (s *Store) Touch(id string) error {
	doc, err := s.Get(id)
	if err != nil {
		return err
	}
	doc.Touched = s.clock()
	if err := s.db.Model(&model.Document{}).Where("id = ?", id).
		UpdateColumn("touched", doc.Touched).Error; err != nil {
		return err
	}
	s.publish(doc, notify.KindDocumentTouched, "", "")
	return nil
}

// Delete removes the document and all of its versions in one transaction.
func (s *Store) Delete(id string) error {
	doc, err := s.Get(id)
	if err != nil {
		return err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&model.Version{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Document{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}
	s.logger.Debug().Str("id", id).Msg("deleted document")
	s.publish(doc, notify.KindDocumentDeleted, "", "")
	return nil
}

// IncrementIncludes bumps the document's includes counter atomically.
func (s *Store) IncrementIncludes(id string) error {
	res := s.db.Model(&model.Document{}).Where("id = ?", id).
		UpdateColumn("includes", gorm.Expr("includes + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
