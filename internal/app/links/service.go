package links

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shorty/internal/domain"
)

const (
	autoCodeAttempts = 5

	// hitUpdateTimeout bounds the detached increment on the cache-hit path.
	hitUpdateTimeout = 5 * time.Second

	createErrWrapFmt = "links create: %w"
)

// Options tunes the service. Zero values mean: links never expire by
// default, cache entries live up to an hour, nothing is logged.
type Options struct {
	DefaultTTL  time.Duration
	CacheMaxTTL time.Duration
	Logger      Logger
}

const defaultCacheMaxTTL = time.Hour

// Service coordinates the code generator, the mapping store and the cache.
// It holds no mutable state of its own, so a single instance serves
// concurrent requests.
type Service struct {
	repo        Repo
	cache       Cache
	gen         CodeGenerator
	log         Logger
	defaultTTL  time.Duration
	cacheMaxTTL time.Duration

	now func() time.Time
}

func New(repo Repo, cache Cache, gen CodeGenerator, opts Options) *Service {
	if cache == nil {
		cache = NopCache{}
	}

	log := opts.Logger
	if log == nil {
		log = NopLogger{}
	}

	cacheMaxTTL := opts.CacheMaxTTL
	if cacheMaxTTL <= 0 {
		cacheMaxTTL = defaultCacheMaxTTL
	}

	return &Service{
		repo:        repo,
		cache:       cache,
		gen:         gen,
		log:         log,
		defaultTTL:  opts.DefaultTTL,
		cacheMaxTTL: cacheMaxTTL,
		now:         time.Now,
	}
}

var _ UseCase = (*Service)(nil)

// CreateParams describes a create request. Code is an optional custom code;
// empty means generate one. TTL zero falls back to the configured default,
// which itself may be "never".
type CreateParams struct {
	TargetURL  string
	Code       string
	TTL        time.Duration
	OwnerToken string
}

func (s *Service) Create(ctx context.Context, p CreateParams) (domain.Link, error) {
	p.TargetURL = strings.TrimSpace(p.TargetURL)
	p.Code = strings.TrimSpace(p.Code)
	p.OwnerToken = strings.TrimSpace(p.OwnerToken)

	if err := domain.ValidateTargetURL(p.TargetURL); err != nil {
		return domain.Link{}, err
	}

	ttl := p.TTL
	if ttl == 0 {
		ttl = s.defaultTTL
	}

	var expiresAt *time.Time
	if ttl > 0 {
		t := s.now().Add(ttl)
		expiresAt = &t
	}

	if p.Code != "" {
		return s.createWithCustomCode(ctx, p, expiresAt)
	}

	return s.createWithGeneratedCode(ctx, p, expiresAt)
}

// createWithCustomCode inserts exactly once: a conflict on a
// caller-chosen code is the caller's problem, not a retry case.
func (s *Service) createWithCustomCode(
	ctx context.Context,
	p CreateParams,
	expiresAt *time.Time,
) (domain.Link, error) {
	if err := domain.ValidateCode(p.Code); err != nil {
		return domain.Link{}, err
	}

	link, err := s.repo.Create(ctx, NewLink{
		Code:       p.Code,
		TargetURL:  p.TargetURL,
		ExpiresAt:  expiresAt,
		OwnerToken: p.OwnerToken,
	})
	if err != nil {
		return domain.Link{}, fmt.Errorf(createErrWrapFmt, err)
	}

	s.cachePut(ctx, link)

	return link, nil
}

func (s *Service) createWithGeneratedCode(
	ctx context.Context,
	p CreateParams,
	expiresAt *time.Time,
) (domain.Link, error) {
	for attempt := 0; attempt < autoCodeAttempts; attempt++ {
		code, err := s.gen.Generate(ctx)
		if err != nil {
			return domain.Link{}, fmt.Errorf("links generate code: %w", err)
		}

		link, err := s.repo.Create(ctx, NewLink{
			Code:       code,
			TargetURL:  p.TargetURL,
			ExpiresAt:  expiresAt,
			OwnerToken: p.OwnerToken,
		})
		if errors.Is(err, domain.ErrCodeConflict) {
			continue
		}

		if err != nil {
			return domain.Link{}, fmt.Errorf(createErrWrapFmt, err)
		}

		s.cachePut(ctx, link)

		return link, nil
	}

	return domain.Link{}, fmt.Errorf(createErrWrapFmt, domain.ErrGenerationExhausted)
}

// Resolve returns the target URL for code. The cache path does not wait on
// the hit counter; the store path increments synchronously and backfills
// the cache.
func (s *Service) Resolve(ctx context.Context, code string) (string, error) {
	if !domain.LookupCodeOK(code) {
		return "", fmt.Errorf("links resolve: %w", domain.ErrNotFound)
	}

	now := s.now()

	cached, err := s.cache.Get(ctx, code)
	switch {
	case err == nil:
		if !cached.Expired(now) {
			s.incrementHitsAsync(ctx, code)

			return cached.TargetURL, nil
		}
		// expired while cached; the store's expiry filter decides below
	case !errors.Is(err, ErrCacheMiss):
		s.log.Warn("cache get failed", "code", code, "err", err)
	}

	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return "", fmt.Errorf("links resolve: %w", err)
	}

	if err := s.repo.IncrementHits(ctx, code); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// reclaimed or deleted between lookup and increment
			return "", fmt.Errorf("links resolve: %w", domain.ErrNotFound)
		}

		s.log.Warn("hit count update failed", "code", code, "err", err)
	}

	s.cachePut(ctx, link)

	return link.TargetURL, nil
}

func (s *Service) Delete(ctx context.Context, code, ownerToken string) error {
	if !domain.LookupCodeOK(code) {
		return fmt.Errorf("links delete: %w", domain.ErrNotFound)
	}

	err := s.repo.Delete(ctx, code, strings.TrimSpace(ownerToken))

	// invalidate regardless of outcome: a stale entry is a correctness
	// bug, a spurious invalidation is not
	s.cacheInvalidate(ctx, code)

	if err != nil {
		return fmt.Errorf("links delete: %w", err)
	}

	return nil
}

func (s *Service) Update(ctx context.Context, code, ownerToken, targetURL string) (domain.Link, error) {
	if !domain.LookupCodeOK(code) {
		return domain.Link{}, fmt.Errorf("links update: %w", domain.ErrNotFound)
	}

	if err := domain.ValidateTargetURL(strings.TrimSpace(targetURL)); err != nil {
		return domain.Link{}, err
	}

	link, err := s.repo.UpdateTarget(ctx, code, strings.TrimSpace(ownerToken), strings.TrimSpace(targetURL))

	s.cacheInvalidate(ctx, code)

	if err != nil {
		return domain.Link{}, fmt.Errorf("links update: %w", err)
	}

	return link, nil
}

func (s *Service) Stats(ctx context.Context, code string) (domain.Link, error) {
	if !domain.LookupCodeOK(code) {
		return domain.Link{}, fmt.Errorf("links stats: %w", domain.ErrNotFound)
	}

	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return domain.Link{}, fmt.Errorf("links stats: %w", err)
	}

	return link, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerToken string) ([]domain.Link, error) {
	ownerToken = strings.TrimSpace(ownerToken)
	if ownerToken == "" {
		return nil, fmt.Errorf("links list by owner: %w", domain.ErrForbidden)
	}

	items, err := s.repo.ListByOwner(ctx, ownerToken)
	if err != nil {
		return nil, fmt.Errorf("links list by owner: %w", err)
	}

	return items, nil
}

// incrementHitsAsync records a hit without blocking the redirect response.
// At-least-once from the caller's perspective: a crash may drop one
// increment, duplication never adds more than the single intended one.
func (s *Service) incrementHitsAsync(ctx context.Context, code string) {
	ctx = context.WithoutCancel(ctx)

	go func() {
		ctx, cancel := context.WithTimeout(ctx, hitUpdateTimeout)
		defer cancel()

		if err := s.repo.IncrementHits(ctx, code); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("hit count update failed", "code", code, "err", err)
		}
	}()
}

// cachePut writes through to the cache, capping the entry's lifetime so it
// can never outlive the link itself.
func (s *Service) cachePut(ctx context.Context, link domain.Link) {
	ttl := s.cacheTTL(link, s.now())
	if ttl <= 0 {
		return
	}

	if err := s.cache.Put(ctx, link, ttl); err != nil {
		s.log.Warn("cache put failed", "code", link.Code, "err", err)
	}
}

func (s *Service) cacheTTL(link domain.Link, now time.Time) time.Duration {
	remaining, bounded := link.RemainingTTL(now)
	if !bounded {
		return s.cacheMaxTTL
	}

	if remaining <= 0 {
		return 0
	}

	return min(remaining, s.cacheMaxTTL)
}

func (s *Service) cacheInvalidate(ctx context.Context, code string) {
	if err := s.cache.Invalidate(ctx, code); err != nil {
		s.log.Warn("cache invalidate failed", "code", code, "err", err)
	}
}
