package links

import (
	"context"

	"shorty/internal/domain"
)

// UseCase is the input port for the links application.
type UseCase interface {
	Create(ctx context.Context, p CreateParams) (domain.Link, error)
	Resolve(ctx context.Context, code string) (string, error)
	Delete(ctx context.Context, code, ownerToken string) error
	Update(ctx context.Context, code, ownerToken, targetURL string) (domain.Link, error)
	Stats(ctx context.Context, code string) (domain.Link, error)
	ListByOwner(ctx context.Context, ownerToken string) ([]domain.Link, error)
}
