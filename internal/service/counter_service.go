package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/lukepickard18/botz/internal/observability"
	"github.com/lukepickard18/botz/internal/repository"
	"github.com/lukepickard18/botz/pkg/util/errorutil"
)

// CounterService hands out ticket numbers from a persisted monotonic counter.
type CounterService struct {
	mu      sync.Mutex
	value   int64
	repo    repository.CounterRepository
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewCounterService loads the persisted count. A missing or corrupt record starts the
// counter at zero; any other load failure is returned so startup can abort.
func NewCounterService(ctx context.Context, repo repository.CounterRepository, logger *zap.Logger, metrics *observability.Metrics) (*CounterService, error) {
	count, err := repo.Load(ctx)
	switch {
	case err == nil:
		logger.Info("ticket counter loaded", zap.Int64("count", count))
	case errors.Is(err, repository.ErrCounterNotFound):
		logger.Info("no ticket counter persisted; starting at 0")
		count = 0
	case errors.Is(err, repository.ErrCounterCorrupt):
		logger.Warn("ticket counter record unreadable; starting at 0", zap.Error(err))
		count = 0
	default:
		return nil, errorutil.NewPersistenceError("load ticket counter", err)
	}

	return &CounterService{
		value:   count,
		repo:    repo,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Current returns the last allocated number.
func (s *CounterService) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// IncrementAndSave allocates the next ticket number and persists it.
// The save runs under the same lock so persisted values never go backwards.
// A failed save is logged and the in-memory number is still returned; after a
// restart that number may be handed out again.
func (s *CounterService) IncrementAndSave(ctx context.Context) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value++
	n := s.value
	if err := s.repo.Save(ctx, n); err != nil {
		s.metrics.Inc(observability.MetricCounterPersistError)
		s.logger.Error("failed to persist ticket counter",
			zap.Int64("count", n),
			zap.Error(errorutil.NewPersistenceError("save ticket counter", err)))
	}
	return n
}
