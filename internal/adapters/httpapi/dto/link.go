package dto

import (
	"time"

	"shorty/internal/domain"
)

type LinkResponse struct {
	Code      string     `json:"code" example:"abc12345"`
	TargetURL string     `json:"target_url" example:"https://example.com"`
	ShortURL  string     `json:"short_url" example:"https://sho.rt/r/abc12345"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func FromDomain(link domain.Link, baseURL string) LinkResponse {
	return LinkResponse{
		Code:      link.Code,
		TargetURL: link.TargetURL,
		ShortURL:  baseURL + "/r/" + link.Code,
		CreatedAt: link.CreatedAt,
		ExpiresAt: link.ExpiresAt,
	}
}

type StatsResponse struct {
	Code       string     `json:"code" example:"abc12345"`
	TargetURL  string     `json:"target_url" example:"https://example.com"`
	HitCount   int64      `json:"hit_count" example:"42"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

func StatsFromDomain(link domain.Link) StatsResponse {
	return StatsResponse{
		Code:       link.Code,
		TargetURL:  link.TargetURL,
		HitCount:   link.HitCount,
		CreatedAt:  link.CreatedAt,
		ExpiresAt:  link.ExpiresAt,
		LastUsedAt: link.LastUsedAt,
	}
}
