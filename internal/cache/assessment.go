package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/risk"
)

const defaultAssessmentTTL = 5 * time.Minute

// LatestReader is the slice of the risk service the decorator wraps.
type LatestReader interface {
	Latest(ctx context.Context, req risk.Requester, targetID string) (risk.PersistedAssessment, error)
}

// AssessmentCache decorates Latest with a per-user TTL cache. Access
// control still runs on every call, cached or not: the cache sits behind
// the predicate, keyed by target only, so a hit for one requester must
// never leak to an unauthorized one.
type AssessmentCache struct {
	inner LatestReader
	cache Cache
	ttl   time.Duration
	auth  func(ctx context.Context, req risk.Requester, targetID string) error
}

// NewAssessmentCache wraps the reader. authorize must run the same access
// predicate as the underlying service.
func NewAssessmentCache(inner LatestReader, c Cache, ttl time.Duration,
	authorize func(ctx context.Context, req risk.Requester, targetID string) error) *AssessmentCache {
	if ttl <= 0 {
		ttl = defaultAssessmentTTL
	}
	return &AssessmentCache{inner: inner, cache: c, ttl: ttl, auth: authorize}
}

func (a *AssessmentCache) key(targetID string) string {
	return "assessment:" + targetID
}

// Latest returns the cached assessment when fresh, delegating to the
// wrapped reader otherwise. Cache failures are treated as misses.
func (a *AssessmentCache) Latest(ctx context.Context, req risk.Requester, targetID string) (risk.PersistedAssessment, error) {
	if a.auth != nil {
		if err := a.auth(ctx, req, targetID); err != nil {
			return risk.PersistedAssessment{}, err
		}
	}

	if data, err := a.cache.Get(ctx, a.key(targetID)); err == nil {
		var stored risk.PersistedAssessment
		if json.Unmarshal(data, &stored) == nil {
			return stored, nil
		}
	}

	stored, err := a.inner.Latest(ctx, req, targetID)
	if err != nil {
		return risk.PersistedAssessment{}, err
	}
	if data, err := json.Marshal(stored); err == nil {
		_ = a.cache.Set(ctx, a.key(targetID), data, a.ttl)
	}
	return stored, nil
}

// Invalidate drops the cached assessment for a user. The HTTP layer calls
// it after a fresh evaluation persists a new score; simulations never
// persist, so they leave the cache alone.
func (a *AssessmentCache) Invalidate(ctx context.Context, targetID string) {
	_ = a.cache.Delete(ctx, a.key(targetID))
}
