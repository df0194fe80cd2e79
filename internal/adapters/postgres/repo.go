package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"shorty/internal/app/links"
	"shorty/internal/domain"
)

// PostgreSQL SQLSTATE error codes.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	sqlStateUniqueViolation = "23505"
)

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

var _ links.Repo = (*Repo)(nil)

func (r *Repo) Create(ctx context.Context, link links.NewLink) (domain.Link, error) {
	row := r.db.QueryRowContext(
		ctx,
		sqlCreateLink,
		link.Code,
		link.TargetURL,
		link.ExpiresAt,
		link.OwnerToken,
	)

	out, err := scanLink(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Link{}, domain.ErrCodeConflict
		}

		return domain.Link{}, fmt.Errorf(errOpFmt, "create link", err)
	}

	return out, nil
}

func (r *Repo) GetByCode(ctx context.Context, code string) (domain.Link, error) {
	row := r.db.QueryRowContext(ctx, sqlGetLinkByCode, code)

	out, err := scanLink(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Link{}, domain.ErrNotFound
		}

		return domain.Link{}, fmt.Errorf(errOpFmt, "get link by code", err)
	}

	return out, nil
}

// IncrementHits is a single atomic UPDATE; concurrent increments for the
// same code commute and never lose updates.
func (r *Repo) IncrementHits(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, sqlIncrementHits, code)
	if err != nil {
		return fmt.Errorf(errOpFmt, "increment hits", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf(errOpFmt, "increment hits", err)
	}

	if n == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *Repo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := sq.Delete(sqlTableLinks).
		Where(sq.NotEq{sqlColExpiresAt: nil}).
		Where(sq.LtOrEq{sqlColExpiresAt: before}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("postgres: build delete expired: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf(errOpFmt, "delete expired", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf(errOpFmt, "delete expired", err)
	}

	return n, nil
}

func (r *Repo) Delete(ctx context.Context, code, ownerToken string) error {
	res, err := r.db.ExecContext(ctx, sqlDeleteLinkOwned, code, ownerToken)
	if err != nil {
		return fmt.Errorf(errOpFmt, "delete link", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf(errOpFmt, "delete link", err)
	}

	if n == 0 {
		return r.missReason(ctx, code, "delete link")
	}

	return nil
}

func (r *Repo) UpdateTarget(ctx context.Context, code, ownerToken, targetURL string) (domain.Link, error) {
	row := r.db.QueryRowContext(ctx, sqlUpdateTargetOwned, code, ownerToken, targetURL)

	out, err := scanLink(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Link{}, r.missReason(ctx, code, "update target")
		}

		return domain.Link{}, fmt.Errorf(errOpFmt, "update target", err)
	}

	return out, nil
}

func (r *Repo) ListByOwner(ctx context.Context, ownerToken string) ([]domain.Link, error) {
	query, args, err := sq.Select(
		sqlColID, sqlColCode, sqlColTargetURL, sqlColCreatedAt,
		sqlColExpiresAt, sqlColHitCount, sqlColLastUsedAt, sqlColOwnerToken,
	).
		From(sqlTableLinks).
		Where(sq.Eq{sqlColOwnerToken: ownerToken}).
		Where(sqlNotExpired).
		OrderBy(sqlColCreatedAt + " DESC, " + sqlColID + " DESC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build list by owner: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf(errOpFmt, "list by owner", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []domain.Link
	for rows.Next() {
		item, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf(errOpFmt, "list by owner", err)
		}

		out = append(out, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(errOpFmt, "list by owner", err)
	}

	return out, nil
}

// NextCodeID draws from the code sequence. Uniqueness lives in the store,
// so sequential generation needs no in-process counter state.
func (r *Repo) NextCodeID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.db.QueryRowContext(ctx, sqlNextCodeID).Scan(&id); err != nil {
		return 0, fmt.Errorf(errOpFmt, "next code id", err)
	}

	return id, nil
}

// missReason tells ErrForbidden apart from ErrNotFound after an owner-gated
// statement matched nothing.
func (r *Repo) missReason(ctx context.Context, code, op string) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx, sqlLinkExists, code).Scan(&exists); err != nil {
		return fmt.Errorf(errOpFmt, op, err)
	}

	if exists {
		return domain.ErrForbidden
	}

	return domain.ErrNotFound
}

type rowScanner interface {
	Scan(dst ...any) error
}

// Column order matches the RETURNING/SELECT lists in sql_consts.go.
func scanLink(row rowScanner) (domain.Link, error) {
	var out domain.Link
	err := row.Scan(
		&out.ID,
		&out.Code,
		&out.TargetURL,
		&out.CreatedAt,
		&out.ExpiresAt,
		&out.HitCount,
		&out.LastUsedAt,
		&out.OwnerToken,
	)
	if err != nil {
		return domain.Link{}, err
	}

	return out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateUniqueViolation
	}

	return false
}
