// Package service provides the core business service that implements
// the dependencies required by the HTTP API: the participation
// coordinator for session membership and the reputation coordinator
// for vouches and ratings.
package service

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"time"

	notifyqueue "github.com/vibingbhudha77/vibex/internal/adapters/mq/queue"
	workerpool "github.com/vibingbhudha77/vibex/internal/adapters/mq/worker"
	"github.com/vibingbhudha77/vibex/internal/adapters/repository"
	"github.com/vibingbhudha77/vibex/internal/domain/model"
	"github.com/vibingbhudha77/vibex/internal/domain/vouch"
	"github.com/vibingbhudha77/vibex/pkg/logger"
	"github.com/vibingbhudha77/vibex/pkg/metrics"

	"github.com/google/uuid"
)

// Default service configuration.
const (
	defaultCommitAttempts      = 5
	defaultQueueSize           = 10000
	defaultGuardSize           = 50000
	defaultMaxLeaderboardLimit = 100

	// retryBackoffBase is the unit of jittered sleep between commit
	// attempts. Attempt i sleeps up to i*retryBackoffBase.
	retryBackoffBase = 2 * time.Millisecond
)

// Service implements the API dependencies for the session lifecycle
// and reputation engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	guard      vouch.Guard
	queue      notifyqueue.Queue
	dispatcher workerpool.Dispatcher
	pool       *workerpool.Pool

	// Configuration
	commitAttempts      int
	queueSize           int
	workerCount         int
	guardSize           int
	maxLeaderboardLimit int

	// now is the time source; replaceable in tests.
	now func() time.Time

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the backing store.
func WithStore(s repository.Store) Option {
	return func(svc *Service) {
		if s != nil {
			svc.store = s
		}
	}
}

// WithCommitAttempts sets how many times a conditional commit is
// retried before the operation gives up.
func WithCommitAttempts(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.commitAttempts = n
		}
	}
}

// WithQueueSize sets the notification queue capacity.
func WithQueueSize(size int) Option {
	return func(svc *Service) {
		if size > 0 {
			svc.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of notification workers.
func WithWorkerCount(count int) Option {
	return func(svc *Service) {
		if count > 0 {
			svc.workerCount = count
		}
	}
}

// WithGuardSize sets the size of the vouch idempotency guard.
func WithGuardSize(size int) Option {
	return func(svc *Service) {
		if size > 0 {
			svc.guardSize = size
		}
	}
}

// WithMaxLeaderboardLimit caps the leaderboard page size.
func WithMaxLeaderboardLimit(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.maxLeaderboardLimit = n
		}
	}
}

// WithDispatcher sets the notification dispatcher.
func WithDispatcher(d workerpool.Dispatcher) Option {
	return func(svc *Service) {
		if d != nil {
			svc.dispatcher = d
		}
	}
}

// WithClock sets the time source. Tests use this to pin phase
// derivation to a fixed instant.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		if now != nil {
			svc.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		commitAttempts:      defaultCommitAttempts,
		queueSize:           defaultQueueSize,
		workerCount:         runtime.NumCPU() * 2,
		guardSize:           defaultGuardSize,
		maxLeaderboardLimit: defaultMaxLeaderboardLimit,
		now:                 time.Now,
		stopCh:              make(chan struct{}),
		logger:              nil, // replaced on Start
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting session engine...")

	if s.store == nil {
		s.store = repository.NewMemStore()
	}
	s.guard = vouch.NewGuard(
		vouch.WithMaxSize(s.guardSize),
	)
	s.queue = notifyqueue.NewInMemoryQueue(
		notifyqueue.WithCapacity(s.queueSize),
	)
	if s.dispatcher == nil {
		s.dispatcher = workerpool.NewLogDispatcher()
	}

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.dispatcher)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "session engine started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("guardSize", s.guardSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping session engine...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "session engine stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"commitAttempts": s.commitAttempts,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		totalSessions := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalSessions"] = totalSessions
		stats["guardEntries"] = s.guard.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalSessions(totalSessions)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// notify enqueues a notification trigger. Best effort: a full or
// closed queue drops the trigger without failing the caller.
func (s *Service) notify(ctx context.Context, typ model.NotificationType, actorID, receiverID string, sessionID int64) {
	n := model.Notification{
		ID:         uuid.NewString(),
		Type:       typ,
		ActorID:    actorID,
		ReceiverID: receiverID,
		SessionID:  sessionID,
		CreatedAt:  s.now(),
	}
	if !s.queue.Enqueue(ctx, n) {
		s.logger.Warn(ctx, "notification dropped",
			logger.String("type", string(typ)),
			logger.Int64("session_id", sessionID),
		)
	}
}

// backoff sleeps a small jittered amount before retry attempt.
// Returns false when ctx was canceled while waiting.
func backoff(ctx context.Context, attempt int) bool {
	d := time.Duration(rand.Int63n(int64(retryBackoffBase) * int64(attempt+1))) //nolint:gosec // jitter, not crypto
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
