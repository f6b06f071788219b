// Package monitor streams repository activity and size snapshots to InfluxDB.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/planforge/planforge/internal/influx"
	"github.com/planforge/planforge/internal/model"
	"github.com/planforge/planforge/internal/notify"
)

// Dependencies holds all dependencies for the monitor service.
type Dependencies struct {
	DB     *gorm.DB
	Influx *influx.Manager
	Hub    *notify.Hub
	Logger zerolog.Logger

	// StatsInterval is how often collection sizes are snapshotted.
	// Zero defaults to one minute.
	StatsInterval time.Duration
}

// Service forwards hub events as activity points and periodically writes
// per-collection document and version counts.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	cancels   []func()
}

// NewService creates a new monitor service.
func NewService(deps Dependencies) *Service {
	if deps.StatsInterval <= 0 {
		deps.StatsInterval = time.Minute
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the monitor is running.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Start subscribes to every collection and launches the stats goroutine.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})

	for _, collection := range model.Collections {
		events, cancel := s.deps.Hub.SubscribeCollection(collection, 256)
		s.cancels = append(s.cancels, cancel)
		go s.forward(collection, events)
	}
	s.mu.Unlock()

	go s.statsLoop()
	return nil
}

func (s *Service) forward(collection string, events <-chan notify.Event) {
	for e := range events {
		point := influx.ActivityPoint(collection, string(e.Kind), e.Timestamp)
		if err := s.deps.Influx.WritePoint(context.Background(), influx.BucketActivity, point); err != nil {
			s.deps.Logger.Error().Err(err).
				Str("collection", collection).
				Msg("Error writing activity point")
		}
	}
}

func (s *Service) statsLoop() {
	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.deps.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.snapshot()
		}
	}
}

// snapshot writes one collection_size point per collection.
func (s *Service) snapshot() {
	now := time.Now()
	for _, collection := range model.Collections {
		var documents int64
		if err := s.deps.DB.Model(&model.Document{}).
			Where("collection = ?", collection).
			Count(&documents).Error; err != nil {
			s.deps.Logger.Error().Err(err).
				Str("collection", collection).
				Msg("Error counting documents")
			continue
		}

		var versions int64
		if err := s.deps.DB.Model(&model.Version{}).
			Joins("JOIN documents ON documents.id = versions.document_id").
			Where("documents.collection = ?", collection).
			Count(&versions).Error; err != nil {
			s.deps.Logger.Error().Err(err).
				Str("collection", collection).
				Msg("Error counting versions")
			continue
		}

		point := influx.StatsPoint(collection, documents, versions, now)
		if err := s.deps.Influx.WritePoint(context.Background(), influx.BucketStats, point); err != nil {
			s.deps.Logger.Error().Err(err).
				Str("collection", collection).
				Msg("Error writing stats point")
		}
	}
}

// Stop stops the monitor and cancels its subscriptions.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
		for _, cancel := range s.cancels {
			cancel()
		}
		s.cancels = nil
	}
}
