package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type undoStep struct {
	name string
	fn   func(ctx context.Context) error
}

// saga records undo steps as forward steps commit and replays them newest first.
type saga struct {
	logger *slog.Logger
	steps  []undoStep
}

func newSaga(logger *slog.Logger) *saga {
	return &saga{logger: logger}
}

func (s *saga) push(name string, fn func(ctx context.Context) error) {
	s.steps = append(s.steps, undoStep{name: name, fn: fn})
}

// compensate runs every undo step even when one fails and joins the failures.
// Request cancellation is ignored so a disconnect cannot stop a rollback midway.
func (s *saga) compensate(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for i := len(s.steps) - 1; i >= 0; i-- {
		step := s.steps[i]
		if err := step.fn(ctx); err != nil {
			s.logger.Error("Compensation step failed", "step", step.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
			continue
		}
		s.logger.Info("Compensation step completed", "step", step.name)
	}
	s.steps = nil
	return errors.Join(errs...)
}
