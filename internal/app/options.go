package service

import (
	"time"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/adapters/repository"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
	"github.com/tillhouse/conference-meet-scorer-sub003/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of recompute workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the recompute queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many submission ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore selects the snapshot store kind and, for sqlite, its path.
func WithStore(kind, path string) Option {
	return func(s *Service) {
		s.storeKind = kind
		s.storePath = path
	}
}

// WithRepository uses an already opened store. Start will not open one and
// Stop will close it.
func WithRepository(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDefaultViewMode sets the mode used when neither the request nor the
// meet names one.
func WithDefaultViewMode(mode model.ViewMode) Option {
	return func(s *Service) {
		if _, err := model.ParseViewMode(string(mode)); err == nil {
			s.defaultMode = mode
		}
	}
}

// WithComputeTimeout bounds each background recompute.
func WithComputeTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.computeTimeout = d
		}
	}
}
