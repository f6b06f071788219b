package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EventKind says what changed about a document.
type EventKind string

const (
	KindDocumentCreated EventKind = "documentCreated"
	KindDocumentUpdated EventKind = "documentUpdated"
	KindDocumentTouched EventKind = "documentTouched"
	KindDocumentDeleted EventKind = "documentDeleted"
	KindVersionUpdated  EventKind = "versionUpdated"
	KindVersionLocked   EventKind = "versionLocked"
	KindVersionDeleted  EventKind = "versionDeleted"
)

// Event is one change notification for a document.
type Event struct {
	DocumentID string
	Collection string
	Kind       EventKind
	VersionID  string
	Delta      string
	Timestamp  time.Time
}

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type subscription struct {
	ch         chan Event
	documentID string
	collection string
}

// Hub fans change events out to per-document and per-collection
// subscribers. Publishing never blocks: a subscriber with a full buffer
// misses the event and the drop is counted.
type Hub struct {
	logger Logger

	// OTEL metrics
	published metric.Int64Counter
	dropped   metric.Int64Counter
	subsGauge metric.Int64ObservableGauge

	mu     sync.RWMutex
	nextID int
	subs   map[int]*subscription
	closed bool
}

// NewHub creates a hub with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func NewHub(logger Logger) (*Hub, error) {
	h := &Hub{
		logger: logger,
		subs:   make(map[int]*subscription),
	}

	m := meter()

	var err error

	h.published, err = m.Int64Counter(
		"notify.events.published",
		metric.WithDescription("Total change events published"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating published counter: %w", err)
	}

	h.dropped, err = m.Int64Counter(
		"notify.events.dropped",
		metric.WithDescription("Total change events dropped due to full subscriber buffers"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	h.subsGauge, err = m.Int64ObservableGauge(
		"notify.subscriptions",
		metric.WithDescription("Current number of active subscriptions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating subscriptions gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			h.mu.RLock()
			defer h.mu.RUnlock()
			o.ObserveInt64(h.subsGauge, int64(len(h.subs)))
			return nil
		},
		h.subsGauge,
	)
	if err != nil {
		return nil, fmt.Errorf("registering subscriptions callback: %w", err)
	}

	return h, nil
}

// SubscribeDocument streams events for one document. The returned cancel
// func is idempotent and closes the channel.
func (h *Hub) SubscribeDocument(documentID string, buffer int) (<-chan Event, func()) {
	return h.subscribe(&subscription{documentID: documentID}, buffer)
}

// SubscribeCollection streams events for every document in a collection.
func (h *Hub) SubscribeCollection(collection string, buffer int) (<-chan Event, func()) {
	return h.subscribe(&subscription{collection: collection}, buffer)
}

func (h *Hub) subscribe(sub *subscription, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	sub.ch = make(chan Event, buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub.ch)
			}
			h.mu.Unlock()
		})
	}
	return sub.ch, cancel
}

// Publish fans the event out to matching subscribers without blocking.
func (h *Hub) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	kindAttr := attribute.String("kind", string(e.Kind))

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}

	h.published.Add(context.Background(), 1, metric.WithAttributes(kindAttr))

	for _, sub := range h.subs {
		if sub.documentID != "" && sub.documentID != e.DocumentID {
			continue
		}
		if sub.collection != "" && sub.collection != e.Collection {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			h.dropped.Add(context.Background(), 1, metric.WithAttributes(kindAttr))
			h.logger.Debug("subscriber buffer full, dropping event",
				"documentId", e.DocumentID, "kind", string(e.Kind))
		}
	}
}

// Close drops all subscriptions and closes their channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
	}
}
