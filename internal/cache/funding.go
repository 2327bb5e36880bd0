package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/classfund/classfund/internal/model"
)

const (
	// fundingKeyPrefix is the Redis key prefix for funding snapshots.
	fundingKeyPrefix = "funding:"

	// FundingTTL keeps snapshots fresh enough for a display-only view
	// whose source data is maintained by an external workflow.
	FundingTTL = time.Minute
)

// GetFunding retrieves a cached funding snapshot by project id.
// Returns ErrCacheMiss if not present. Cached snapshots are stored
// already escaped.
func (c *Cache) GetFunding(ctx context.Context, projectID string) (*model.ProjectFunding, error) {
	data, err := c.client.Get(ctx, fundingKeyPrefix+projectID).Bytes()
	if err != nil {
		// Treat every failure as a miss; the store is the source of truth.
		return nil, ErrCacheMiss
	}

	var funding model.ProjectFunding
	if err := json.Unmarshal(data, &funding); err != nil {
		return nil, ErrCacheMiss
	}

	return &funding, nil
}

// SetFunding caches a funding snapshot.
func (c *Cache) SetFunding(ctx context.Context, projectID string, funding *model.ProjectFunding) error {
	data, err := json.Marshal(funding)
	if err != nil {
		return fmt.Errorf("marshal funding snapshot: %w", err)
	}

	if err := c.client.Set(ctx, fundingKeyPrefix+projectID, data, FundingTTL).Err(); err != nil {
		return fmt.Errorf("cache funding snapshot: %w", err)
	}

	return nil
}

// InvalidateFunding drops a cached snapshot.
func (c *Cache) InvalidateFunding(ctx context.Context, projectID string) error {
	if err := c.client.Del(ctx, fundingKeyPrefix+projectID).Err(); err != nil {
		return fmt.Errorf("invalidate funding snapshot: %w", err)
	}
	return nil
}
