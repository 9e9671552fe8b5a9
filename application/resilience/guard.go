package resilience

import (
	"context"

	apperrors "library-gateway/pkg/errors"
)

// Execute runs fn against the named service under the breaker's protection.
// It returns a circuit-open error without invoking fn when the breaker
// rejects the call, and otherwise reports exactly one terminal outcome for
// the attempt. A context cancellation surfaces from fn as an error and is
// reported as a failure, so the half-open probe can never be left dangling.
func (b *Breaker) Execute(ctx context.Context, service string, fn func(ctx context.Context) error) error {
	if !b.Allow(service) {
		return apperrors.NewCircuitOpenError(service)
	}

	if err := fn(ctx); err != nil {
		b.ReportFailure(service)
		return err
	}

	b.ReportSuccess(service)
	return nil
}
