package clients

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"library-gateway/application/resilience"
	"library-gateway/domain"
)

// RatingClient calls the Rating service
type RatingClient struct {
	baseClient
}

// NewRatingClient creates a Rating service client
func NewRatingClient(config Config, breaker *resilience.Breaker, logger *zap.Logger) *RatingClient {
	return &RatingClient{
		baseClient: newBaseClient(ServiceRating, config.RatingBaseURL, config.RequestTimeout, breaker, logger),
	}
}

// GetRating returns the user's current stars
func (c *RatingClient) GetRating(ctx context.Context, username string) (domain.Rating, error) {
	var rating domain.Rating
	err := c.call(ctx, http.MethodGet, "/Rating/rating", nil, username, nil, &rating)
	return rating, err
}

// ChangeRating applies a delta to the user's stars
func (c *RatingClient) ChangeRating(ctx context.Context, username string, delta int) error {
	query := url.Values{"delta": {strconv.Itoa(delta)}}
	return c.call(ctx, http.MethodPost, "/Rating/changeRating", query, username, nil, nil)
}
