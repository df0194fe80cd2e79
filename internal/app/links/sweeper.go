package links

import (
	"context"
	"time"
)

// ExpiredDeleter is the slice of Repo the sweeper needs.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Sweeper periodically reclaims logically expired links. Each cycle is a
// single bulk delete in the store, so overlapping runs and concurrent
// create/resolve traffic need no extra locking.
type Sweeper struct {
	repo     ExpiredDeleter
	interval time.Duration
	timeout  time.Duration
	log      Logger

	now func() time.Time
}

const (
	defaultSweepInterval = time.Minute
	defaultSweepTimeout  = 30 * time.Second
)

func NewSweeper(repo ExpiredDeleter, interval, timeout time.Duration, log Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	if timeout <= 0 {
		timeout = defaultSweepTimeout
	}

	if log == nil {
		log = NopLogger{}
	}

	return &Sweeper{
		repo:     repo,
		interval: interval,
		timeout:  timeout,
		log:      log,
		now:      time.Now,
	}
}

// Run blocks until ctx is canceled. A failed cycle is logged and the next
// one proceeds; the sweeper never takes the process down.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		s.log.Error("sweep failed", "err", err)

		return
	}

	if n > 0 {
		s.log.Info("reclaimed expired links", "count", n)
	}
}
