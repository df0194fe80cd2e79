package links

import (
	"context"
	"errors"
	"time"

	"shorty/internal/domain"
)

// NewLink carries the fields of a link about to be inserted. ID, CreatedAt
// and HitCount are owned by the store.
type NewLink struct {
	Code       string
	TargetURL  string
	ExpiresAt  *time.Time
	OwnerToken string
}

// Repo is the mapping store, the single source of truth. Uniqueness of Code
// is enforced by the store itself, not by pre-checking here.
type Repo interface {
	Create(ctx context.Context, link NewLink) (domain.Link, error)
	GetByCode(ctx context.Context, code string) (domain.Link, error)
	IncrementHits(ctx context.Context, code string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	Delete(ctx context.Context, code, ownerToken string) error
	UpdateTarget(ctx context.Context, code, ownerToken, targetURL string) (domain.Link, error)
	ListByOwner(ctx context.Context, ownerToken string) ([]domain.Link, error)
	NextCodeID(ctx context.Context) (int64, error)
}

// ErrCacheMiss is the negative result of Cache.Get. A miss is never
// not-found; the caller must fall through to the Repo.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the derived read cache in front of the Repo. It may be cleared
// at any time without correctness impact.
type Cache interface {
	Get(ctx context.Context, code string) (domain.Link, error)
	Put(ctx context.Context, link domain.Link, ttl time.Duration) error
	Invalidate(ctx context.Context, code string) error
}

// NopCache disables caching; every Get is a miss.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (domain.Link, error) {
	return domain.Link{}, ErrCacheMiss
}

func (NopCache) Put(context.Context, domain.Link, time.Duration) error { return nil }

func (NopCache) Invalidate(context.Context, string) error { return nil }

var _ Cache = NopCache{}
