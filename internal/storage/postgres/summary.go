package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"video_digest/internal/domain"
)

type SummaryStore struct {
	db *sqlx.DB
}

func NewSummaryStore(db *sqlx.DB) *SummaryStore {
	return &SummaryStore{db: db}
}

// GetByContentAndType returns the summary of the given type for a content
// row, or a not-found error. The (content_id, summary_type) pair is unique
// at the schema level.
func (s *SummaryStore) GetByContentAndType(ctx context.Context, contentID, summaryType string) (*domain.Summary, error) {
	exec := GetExecutor(ctx, s.db)

	var summary domain.Summary
	err := sqlx.GetContext(ctx, exec, &summary, `
		SELECT id, content_id, summary, summary_type, created_at
		FROM summaries
		WHERE content_id = $1 AND summary_type = $2`,
		contentID, summaryType,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.E(domain.KindNotFound, "no "+summaryType+" summary for content "+contentID)
	}
	if err != nil {
		return nil, domain.Wrap(domain.KindPersistence, "select summary", err)
	}
	return &summary, nil
}

// Upsert stores the summary, replacing an earlier one of the same type for
// the same content. Refresh relies on the replace path.
func (s *SummaryStore) Upsert(ctx context.Context, summary *domain.Summary) (*domain.Summary, error) {
	exec := GetExecutor(ctx, s.db)

	query := `
		INSERT INTO summaries (content_id, summary, summary_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (content_id, summary_type) DO UPDATE SET
			summary = EXCLUDED.summary
		RETURNING id, content_id, summary, summary_type, created_at`

	var stored domain.Summary
	err := sqlx.GetContext(ctx, exec, &stored, query,
		summary.ContentID,
		summary.Summary,
		summary.SummaryType,
	)
	if err != nil {
		return nil, domain.Wrap(domain.KindPersistence, "upsert summary", err)
	}
	return &stored, nil
}
