package service

import (
	"context"
	"log/slog"

	"github.com/panjf2000/ants/v2"
	"github.com/quiz-registration-service/internal/domain/shared"
)

// WorkerPoolDispatchService bounds concurrent dispatches with an ants pool. Dispatch
// blocks until the worker finishes so the caller can decide whether to commit.
type WorkerPoolDispatchService struct {
	baseService DispatchService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolDispatchService(
	baseService DispatchService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolDispatchService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolDispatchService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

func (s *WorkerPoolDispatchService) Dispatch(ctx context.Context, event *shared.RegistrationEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Debug("Submitting registration event to worker pool", "account_id", event.AccountID.String())

	resultChan := make(chan error, 1)
	eventCopy := *event

	err := s.pool.Submit(func() {
		resultChan <- s.baseService.Dispatch(ctx, &eventCopy)
	})
	if err != nil {
		logger.Error("Failed to submit registration event to worker pool",
			"account_id", event.AccountID.String(),
			"error", err,
		)
		return err
	}

	select {
	case err := <-resultChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown releases the pool.
func (s *WorkerPoolDispatchService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

func (s *WorkerPoolDispatchService) Running() int {
	return s.pool.Running()
}

func (s *WorkerPoolDispatchService) Capacity() int {
	return s.pool.Cap()
}
