package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/planforge/planforge/internal/codec"
	"github.com/planforge/planforge/internal/component"
	"github.com/planforge/planforge/internal/model"
	"github.com/planforge/planforge/internal/notify"
	"github.com/planforge/planforge/internal/store"
)

var (
	// ErrEmptyVersionHistory is surfaced when the viewed document has no
	// versions left; the session treats that as document-gone.
	ErrEmptyVersionHistory = errors.New("document has no versions")
	// ErrClosed is returned from operations on a closed session.
	ErrClosed = errors.New("session closed")
)

// Storer is the slice of the store a session needs.
type Storer interface {
	Touch(id string) error
	LatestVersion(id string) (model.Version, error)
	EditComponent(id string, c component.Component, delta string, decision store.Decision) (model.Version, error)
	NewComponentVersion(id string, c component.Component) (model.Version, error)
	Lock(documentID, versionID string) error
}

// Config wires a session to one document.
type Config struct {
	DocumentID string
	Store      Storer
	Hub        *notify.Hub
	Logger     zerolog.Logger

	// OnContent receives every remote version state the session applies.
	OnContent func(component.Component, model.Version)
	// OnGone is called once when the document disappears out from under
	// the session (deleted, or version history emptied).
	OnGone func(error)
	// Decide is consulted when an edit hits a locked latest version. Nil
	// or DecisionNone surfaces ErrDecisionRequired to the caller.
	Decide func() store.Decision
}

// Session is one editor's live view of a document. It applies remote
// changes through OnContent, suppressing the single echo of its own last
// edit by delta token.
type Session struct {
	cfg    Config
	logger zerolog.Logger

	mu           sync.Mutex
	closed       bool
	pendingDelta string
	latest       model.Version
	cancel       func()
}

// Open touches the document, loads its latest version, and starts
// streaming changes. An empty version history fails with
// ErrEmptyVersionHistory.
func (s *Session) init() error {
	latest, err := s.cfg.Store.LatestVersion(s.cfg.DocumentID)
	if errors.Is(err, store.ErrVersionNotFound) {
		return ErrEmptyVersionHistory
	}
	if err != nil {
		return err
	}
	c, err := codec.Read(latest.Content)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.latest = latest
	s.mu.Unlock()
	if s.cfg.OnContent != nil {
		s.cfg.OnContent(c, latest)
	}
	return nil
}

// Open creates a live session on one document.
func Open(cfg Config) (*Session, error) {
	if cfg.Store == nil || cfg.Hub == nil {
		return nil, fmt.Errorf("session: store and hub are required")
	}
	s := &Session{cfg: cfg, logger: cfg.Logger}

	if err := cfg.Store.Touch(cfg.DocumentID); err != nil {
		return nil, err
	}

	// subscribe before the initial load so no edit between load and
	// subscribe is missed
	events, cancel := cfg.Hub.SubscribeDocument(cfg.DocumentID, 32)
	s.cancel = cancel

	if err := s.init(); err != nil {
		cancel()
		return nil, err
	}

	go s.loop(events)
	return s, nil
}

func (s *Session) loop(events <-chan notify.Event) {
	for e := range events {
		switch e.Kind {
		case notify.KindDocumentDeleted:
			s.gone(store.ErrNotFound)
			return
		case notify.KindVersionLocked:
			// a lock notification repeats the version's last delta; it is
			// never the echo of this session's own edit, so it must not
			// consume the pending suppression
			if err := s.apply(""); err != nil {
				s.logger.Error().Err(err).
					Str("documentId", s.cfg.DocumentID).
					Msg("failed to apply lock notification")
			}
		case notify.KindVersionUpdated, notify.KindVersionDeleted:
			if err := s.apply(e.Delta); err != nil {
				s.logger.Error().Err(err).
					Str("documentId", s.cfg.DocumentID).
					Msg("failed to apply change notification")
			}
		}
	}
}

// apply refreshes the latest version. A notification whose delta matches
// the session's pending delta is the echo of its own edit: state is
// refreshed but OnContent is skipped, exactly once.
func (s *Session) apply(delta string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	suppress := delta != "" && delta == s.pendingDelta
	if suppress {
		s.pendingDelta = ""
	}
	s.mu.Unlock()

	latest, err := s.cfg.Store.LatestVersion(s.cfg.DocumentID)
	if errors.Is(err, store.ErrVersionNotFound) {
		s.gone(ErrEmptyVersionHistory)
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.latest = latest
	s.mu.Unlock()

	if suppress {
		return nil
	}

	c, err := codec.Read(latest.Content)
	if err != nil {
		return err
	}
	if s.cfg.OnContent != nil {
		s.cfg.OnContent(c, latest)
	}
	return nil
}

// Latest returns the version the session last saw.
func (s *Session) Latest() model.Version {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Change persists an edit of the component. Against an unlocked latest
// version it overwrites in place with a fresh delta, which suppresses the
// session's own echo. Against a locked one the Decide callback picks
// between continuing and branching; without a decision the edit fails
// with ErrDecisionRequired.
func (s *Session) Change(c component.Component) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	latest := s.latest
	s.mu.Unlock()

	decision := store.DecisionNone
	if latest.IsLocked() {
		if s.cfg.Decide != nil {
			decision = s.cfg.Decide()
		}
		if decision == store.DecisionNone {
			return store.ErrDecisionRequired
		}
	}

	if decision == store.DecisionNewVersion {
		return s.StartNewVersion(c)
	}

	delta := store.NewDelta()
	s.mu.Lock()
	s.pendingDelta = delta
	s.mu.Unlock()

	ver, err := s.cfg.Store.EditComponent(s.cfg.DocumentID, c, delta, decision)
	if err != nil {
		s.mu.Lock()
		s.pendingDelta = ""
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.latest = ver
	s.mu.Unlock()
	return nil
}

// StartNewVersion persists the component as an explicit new version. New
// versions carry no delta, so the session's own notification is applied
// like any remote one.
func (s *Session) StartNewVersion(c component.Component) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.pendingDelta = ""
	s.mu.Unlock()

	ver, err := s.cfg.Store.NewComponentVersion(s.cfg.DocumentID, c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.latest = ver
	s.mu.Unlock()
	return nil
}

func (s *Session) gone(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	if s.cfg.OnGone != nil {
		s.cfg.OnGone(err)
	}
}

// Close ends the session. The viewed version is locked if it is still
// unlocked, forcing the next editor to decide between continuing it and
// branching. Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	latest := s.latest
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	if latest.ID != "" && !latest.IsLocked() {
		return s.cfg.Store.Lock(s.cfg.DocumentID, latest.ID)
	}
	return nil
}
