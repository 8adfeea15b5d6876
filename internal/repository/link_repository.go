package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"linkly-be/internal/entities"
)

// LinkRepository defines the interface for link database operations
type LinkRepository interface {
	Create(ctx context.Context, shortCode, originalURL, shortURL string, userID *string) (*entities.Link, error)
	FindByID(ctx context.Context, id string) (*entities.Link, error)
	FindByShortCode(ctx context.Context, shortCode string) (*entities.Link, error)
	FindByOriginalURL(ctx context.Context, originalURL string) (*entities.Link, error)
	IncrementClicks(ctx context.Context, shortCode string) error
	UpdateOriginalURL(ctx context.Context, id, originalURL string) (*entities.Link, error)
	Delete(ctx context.Context, id string) error
	ListByUserID(ctx context.Context, userID string) ([]*entities.Link, error)
}

type linkRepository struct {
	db *sql.DB
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(db *sql.DB) LinkRepository {
	return &linkRepository{db: db}
}

const linkColumns = `id, short_code, original_url, short_url, clicks, user_id, created_at, updated_at`

func scanLink(row *sql.Row) (*entities.Link, error) {
	var link entities.Link
	err := row.Scan(
		&link.ID,
		&link.ShortCode,
		&link.OriginalURL,
		&link.ShortURL,
		&link.Clicks,
		&link.UserID,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// Create inserts a new link. Uniqueness of both the short code and the
// destination is enforced by the schema, not by a check-then-insert, so
// concurrent creations cannot race past each other.
func (r *linkRepository) Create(ctx context.Context, shortCode, originalURL, shortURL string, userID *string) (*entities.Link, error) {
	query := `
		INSERT INTO links (short_code, original_url, short_url, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + linkColumns

	link, err := scanLink(r.db.QueryRowContext(ctx, query, shortCode, originalURL, shortURL, userID))
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	return link, nil
}

// FindByID finds a link by its ID (UUID)
func (r *linkRepository) FindByID(ctx context.Context, id string) (*entities.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find link: %w", err)
	}
	return link, nil
}

// FindByShortCode finds a link by its short code
func (r *linkRepository) FindByShortCode(ctx context.Context, shortCode string) (*entities.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE short_code = $1`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, shortCode))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find link: %w", err)
	}
	return link, nil
}

// FindByOriginalURL finds a link by exact destination match
func (r *linkRepository) FindByOriginalURL(ctx context.Context, originalURL string) (*entities.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE original_url = $1`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, originalURL))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find link: %w", err)
	}
	return link, nil
}

// IncrementClicks adds one to the click counter. The increment happens in a
// single UPDATE so concurrent redirects of the same code never lose counts.
func (r *linkRepository) IncrementClicks(ctx context.Context, shortCode string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE links
		SET clicks = clicks + 1
		WHERE short_code = $1
	`, shortCode)
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateOriginalURL changes the destination of a link. The short code and
// short URL stay as they are.
func (r *linkRepository) UpdateOriginalURL(ctx context.Context, id, originalURL string) (*entities.Link, error) {
	query := `
		UPDATE links
		SET original_url = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + linkColumns

	link, err := scanLink(r.db.QueryRowContext(ctx, query, originalURL, id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if dup := uniqueViolation(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("failed to update link: %w", err)
	}

	return link, nil
}

// Delete removes a link by ID
func (r *linkRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListByUserID retrieves all links for a specific user, newest first
func (r *linkRepository) ListByUserID(ctx context.Context, userID string) ([]*entities.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM links
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var links []*entities.Link
	for rows.Next() {
		var link entities.Link
		err := rows.Scan(
			&link.ID,
			&link.ShortCode,
			&link.OriginalURL,
			&link.ShortURL,
			&link.Clicks,
			&link.UserID,
			&link.CreatedAt,
			&link.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, &link)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}
