package domain

import "time"

// Link is the persisted mapping from a short code to its target URL.
// Code is immutable once created; TargetURL may be retargeted by the owner.
type Link struct {
	ID         int64
	Code       string
	TargetURL  string
	CreatedAt  time.Time
	ExpiresAt  *time.Time
	HitCount   int64
	LastUsedAt *time.Time
	OwnerToken string
}

// Expired reports logical expiration. A logically expired link resolves as
// not-found even before the sweeper reclaims the row.
func (l Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}

// RemainingTTL returns the time left until expiry and false when the link
// never expires.
func (l Link) RemainingTTL(now time.Time) (time.Duration, bool) {
	if l.ExpiresAt == nil {
		return 0, false
	}

	return l.ExpiresAt.Sub(now), true
}
