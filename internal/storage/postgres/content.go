package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"video_digest/internal/domain"
)

type ContentStore struct {
	db *sqlx.DB
}

func NewContentStore(db *sqlx.DB) *ContentStore {
	return &ContentStore{db: db}
}

// GetByUniqueID returns the content row for a video identifier, or a
// not-found error.
func (s *ContentStore) GetByUniqueID(ctx context.Context, uniqueID string) (*domain.Content, error) {
	exec := GetExecutor(ctx, s.db)

	var content domain.Content
	err := sqlx.GetContext(ctx, exec, &content, `
		SELECT id, content_type, unique_identifier, title, url, transcript,
		       published_at, source_id, created_at
		FROM content
		WHERE unique_identifier = $1`,
		uniqueID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.E(domain.KindNotFound, "no content for video "+uniqueID)
	}
	if err != nil {
		return nil, domain.Wrap(domain.KindPersistence, "select content", err)
	}
	return &content, nil
}

// Create inserts the content row. A conflicting concurrent create is not an
// error: the insert is skipped and the winning row is re-fetched.
func (s *ContentStore) Create(ctx context.Context, content *domain.Content) (*domain.Content, error) {
	exec := GetExecutor(ctx, s.db)

	query := `
		INSERT INTO content (
			id, content_type, unique_identifier, title, url, transcript,
			published_at, source_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (unique_identifier) DO NOTHING`

	if _, err := exec.ExecContext(ctx, query,
		content.ID,
		content.ContentType,
		content.UniqueIdentifier,
		content.Title,
		content.URL,
		content.Transcript,
		content.PublishedAt,
		content.SourceID,
	); err != nil {
		return nil, domain.Wrap(domain.KindPersistence, "insert content", err)
	}

	return s.GetByUniqueID(ctx, content.UniqueIdentifier)
}

func (s *ContentStore) UpdateTranscript(ctx context.Context, id, transcript string) error {
	exec := GetExecutor(ctx, s.db)

	if _, err := exec.ExecContext(ctx,
		`UPDATE content SET transcript = $2 WHERE id = $1`,
		id, transcript,
	); err != nil {
		return domain.Wrap(domain.KindPersistence, "update transcript", err)
	}
	return nil
}

// UpdateDetails backfills title and published date from the metadata
// provider. A nil publishedAt leaves the stored date untouched.
func (s *ContentStore) UpdateDetails(ctx context.Context, id, title string, publishedAt *time.Time) error {
	exec := GetExecutor(ctx, s.db)

	if _, err := exec.ExecContext(ctx, `
		UPDATE content
		SET title = $2,
		    published_at = COALESCE($3, published_at)
		WHERE id = $1`,
		id, title, publishedAt,
	); err != nil {
		return domain.Wrap(domain.KindPersistence, "update content details", err)
	}
	return nil
}
