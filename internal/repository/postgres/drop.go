package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/exclusivos-baez/storefront-api/internal/domain"
	"github.com/exclusivos-baez/storefront-api/pkg/database"
	apperrors "github.com/exclusivos-baez/storefront-api/pkg/errors"
)

// DropRepository implements repository.DropRepository using PostgreSQL.
type DropRepository struct {
	pool database.DBTX
}

// NewDropRepository creates a new PostgreSQL-backed drop repository.
func NewDropRepository(pool database.DBTX) *DropRepository {
	return &DropRepository{pool: pool}
}

const dropColumns = `id, slug, title, description, release_at, created_at`

// ListUpcoming returns a page of drops releasing at or after now, soonest
// first.
func (r *DropRepository) ListUpcoming(ctx context.Context, now time.Time, limit, offset int) ([]domain.Drop, error) {
	query := `
		SELECT ` + dropColumns + `
		FROM drops
		WHERE release_at >= $1
		ORDER BY release_at ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, now, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list drops: %w", err)
	}
	defer rows.Close()

	var drops []domain.Drop
	for rows.Next() {
		var d domain.Drop
		if err := rows.Scan(
			&d.ID,
			&d.Slug,
			&d.Title,
			&d.Description,
			&d.ReleaseAt,
			&d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan drop row: %w", err)
		}
		drops = append(drops, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drop rows: %w", err)
	}

	if drops == nil {
		drops = []domain.Drop{}
	}

	return drops, nil
}

// CountUpcoming returns the total number of drops releasing at or after now.
func (r *DropRepository) CountUpcoming(ctx context.Context, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM drops
		WHERE release_at >= $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("count drops: %w", err)
	}

	return count, nil
}

// GetBySlug retrieves a drop by its slug.
func (r *DropRepository) GetBySlug(ctx context.Context, slug string) (*domain.Drop, error) {
	query := `
		SELECT ` + dropColumns + `
		FROM drops
		WHERE slug = $1`

	var d domain.Drop
	err := r.pool.QueryRow(ctx, query, slug).Scan(
		&d.ID,
		&d.Slug,
		&d.Title,
		&d.Description,
		&d.ReleaseAt,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("drop", slug)
		}
		return nil, fmt.Errorf("scan drop: %w", err)
	}

	return &d, nil
}

// Subscribe registers a user for release alerts on a drop.
func (r *DropRepository) Subscribe(ctx context.Context, sub *domain.DropSubscription) error {
	query := `
		INSERT INTO drop_subscriptions (id, drop_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query,
		sub.ID,
		sub.DropID,
		sub.UserID,
		sub.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("drop subscription", "user", sub.UserID)
		}
		return fmt.Errorf("insert drop subscription: %w", err)
	}

	return nil
}

// ListSubscribers returns the user IDs subscribed to a drop.
func (r *DropRepository) ListSubscribers(ctx context.Context, dropID string) ([]string, error) {
	query := `
		SELECT user_id
		FROM drop_subscriptions
		WHERE drop_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, dropID)
	if err != nil {
		return nil, fmt.Errorf("list drop subscribers: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subscriber row: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriber rows: %w", err)
	}

	if userIDs == nil {
		userIDs = []string{}
	}

	return userIDs, nil
}
