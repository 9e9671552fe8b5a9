package retry

import (
	"context"
	"encoding/json"
	"fmt"

	"library-gateway/domain"
)

// Executor performs the downstream side effects that queued operations need.
// Implemented by the downstream client layer; the queue itself never builds
// HTTP requests.
type Executor interface {
	IncreaseCount(ctx context.Context, bookUID, libraryUID string, delta int) error
	ChangeCondition(ctx context.Context, bookUID string, condition domain.BookCondition) error
	AdjustRating(ctx context.Context, username string, delta int) error
}

// Operation is a unit of deferred work. Every operation is a plain tagged
// value carrying its own parameters, so the queue holds no closures and its
// contents can be serialized for logging.
type Operation interface {
	// Kind identifies the operation for logs and metrics
	Kind() string
	// Run performs the operation against the downstream services
	Run(ctx context.Context, exec Executor) error
}

// IncreaseCount adjusts a book's available count at a library
type IncreaseCount struct {
	BookUID    string `json:"bookUid"`
	LibraryUID string `json:"libraryUid"`
	Delta      int    `json:"delta"`
}

func (op IncreaseCount) Kind() string { return "library.increase_count" }

func (op IncreaseCount) Run(ctx context.Context, exec Executor) error {
	return exec.IncreaseCount(ctx, op.BookUID, op.LibraryUID, op.Delta)
}

// ChangeCondition updates a book's recorded condition
type ChangeCondition struct {
	BookUID   string               `json:"bookUid"`
	Condition domain.BookCondition `json:"condition"`
}

func (op ChangeCondition) Kind() string { return "library.change_condition" }

func (op ChangeCondition) Run(ctx context.Context, exec Executor) error {
	return exec.ChangeCondition(ctx, op.BookUID, op.Condition)
}

// AdjustRating applies a rating delta to a user
type AdjustRating struct {
	Username string `json:"username"`
	Delta    int    `json:"delta"`
}

func (op AdjustRating) Kind() string { return "rating.adjust" }

func (op AdjustRating) Run(ctx context.Context, exec Executor) error {
	return exec.AdjustRating(ctx, op.Username, op.Delta)
}

// Describe renders an operation as "kind payload" for log lines. Falls back
// to the kind alone if the payload cannot be serialized.
func Describe(op Operation) string {
	payload, err := json.Marshal(op)
	if err != nil {
		return op.Kind()
	}
	return fmt.Sprintf("%s %s", op.Kind(), payload)
}
