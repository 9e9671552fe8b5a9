// Package sagas implements the gateway's multi-step workflows over the
// three downstream services. No shared transaction exists across them;
// consistency comes from step ordering, compensating actions, and the
// retry queue.
package sagas

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State represents the progress of a saga execution
type State string

const (
	StateRunning      State = "RUNNING"
	StateCompleted    State = "COMPLETED"
	StateFailed       State = "FAILED"
	StateCompensating State = "COMPENSATING"
	StateCompensated  State = "COMPENSATED"
)

// Step is a single named stage of a saga. Execute performs the step;
// Compensate, when set, semantically undoes it after a later step fails.
// Steps share state through the closure that built them, so both funcs are
// fully typed.
type Step struct {
	Name       string
	Execute    func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga runs an ordered list of steps, unwinding the compensations of every
// completed step in reverse order when one fails.
type Saga struct {
	id     uuid.UUID
	name   string
	steps  []Step
	state  State
	logger *zap.Logger
}

// New creates a saga with the given steps
func New(name string, logger *zap.Logger, steps ...Step) *Saga {
	return &Saga{
		id:     uuid.New(),
		name:   name,
		steps:  steps,
		logger: logger,
	}
}

// State returns the saga's final state after Execute
func (s *Saga) State() State {
	return s.state
}

// Execute runs the steps in order. On a step failure it compensates the
// already-completed steps in reverse order and returns the step's error;
// compensation failures are logged but never mask the original error.
func (s *Saga) Execute(ctx context.Context) error {
	s.state = StateRunning
	s.logger.Info("starting saga",
		zap.String("saga_id", s.id.String()),
		zap.String("saga", s.name),
		zap.Int("steps", len(s.steps)),
	)

	var completed []Step
	for i, step := range s.steps {
		s.logger.Debug("executing saga step",
			zap.String("saga_id", s.id.String()),
			zap.String("step", step.Name),
			zap.Int("step_number", i+1),
		)

		if err := step.Execute(ctx); err != nil {
			s.logger.Warn("saga step failed",
				zap.String("saga_id", s.id.String()),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			s.compensate(ctx, completed)
			return fmt.Errorf("saga %s failed at step %s: %w", s.name, step.Name, err)
		}

		if step.Compensate != nil {
			completed = append(completed, step)
		}
	}

	s.state = StateCompleted
	s.logger.Info("saga completed",
		zap.String("saga_id", s.id.String()),
		zap.String("saga", s.name),
	)
	return nil
}

// compensate unwinds completed steps in reverse order. Every compensation
// runs even if an earlier one fails.
func (s *Saga) compensate(ctx context.Context, completed []Step) {
	if len(completed) == 0 {
		// Nothing side-effecting completed, so there is nothing to undo.
		s.state = StateFailed
		return
	}

	s.state = StateCompensating
	s.logger.Info("compensating saga",
		zap.String("saga_id", s.id.String()),
		zap.String("saga", s.name),
		zap.Int("steps_to_compensate", len(completed)),
	)

	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if err := step.Compensate(ctx); err != nil {
			s.logger.Error("saga compensation failed",
				zap.String("saga_id", s.id.String()),
				zap.String("step", step.Name),
				zap.Error(err),
			)
		}
	}
	s.state = StateCompensated
}
