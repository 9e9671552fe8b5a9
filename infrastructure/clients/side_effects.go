package clients

import (
	"context"

	"library-gateway/application/retry"
	"library-gateway/domain"
)

// SideEffects adapts the downstream clients to the retry queue's executor
// interface. Queued attempts run through the same breaker-guarded client
// methods as foreground calls, so replays against a still-broken service
// fail fast and wait for the next retry instead of piling on.
type SideEffects struct {
	library *LibraryClient
	rating  *RatingClient
}

// NewSideEffects creates the retry queue executor
func NewSideEffects(library *LibraryClient, rating *RatingClient) *SideEffects {
	return &SideEffects{library: library, rating: rating}
}

var _ retry.Executor = (*SideEffects)(nil)

// IncreaseCount adjusts a book's available count at a library
func (s *SideEffects) IncreaseCount(ctx context.Context, bookUID, libraryUID string, delta int) error {
	return s.library.ChangeCount(ctx, bookUID, libraryUID, delta)
}

// ChangeCondition updates a book's recorded condition
func (s *SideEffects) ChangeCondition(ctx context.Context, bookUID string, condition domain.BookCondition) error {
	return s.library.ChangeCondition(ctx, bookUID, condition)
}

// AdjustRating applies a rating delta to a user
func (s *SideEffects) AdjustRating(ctx context.Context, username string, delta int) error {
	return s.rating.ChangeRating(ctx, username, delta)
}
