package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"video_digest/internal/domain"
)

type HistoryStore struct {
	db *sqlx.DB
}

func NewHistoryStore(db *sqlx.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Append records that a user requested a summary. The log is append-only;
// repeated requests produce repeated rows.
func (s *HistoryStore) Append(ctx context.Context, entry *domain.UserSummaryHistory) error {
	exec := GetExecutor(ctx, s.db)

	if _, err := exec.ExecContext(ctx, `
		INSERT INTO user_summary_history (user_id, content_id, summary_id)
		VALUES ($1, $2, $3)`,
		entry.UserID, entry.ContentID, entry.SummaryID,
	); err != nil {
		return domain.Wrap(domain.KindPersistence, "append history", err)
	}
	return nil
}

// ListByUser returns the caller's history joined with content, channel and
// summary, newest first.
func (s *HistoryStore) ListByUser(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	exec := GetExecutor(ctx, s.db)

	query := `
		SELECT h.id,
		       h.generated_at,
		       c.id AS content_id,
		       c.title,
		       c.url,
		       ch.id AS channel_id,
		       ch.name AS channel_name,
		       s.id AS summary_id,
		       s.summary,
		       s.summary_type,
		       s.created_at AS summarized_at
		FROM user_summary_history h
		INNER JOIN content c ON c.id = h.content_id
		INNER JOIN channels ch ON ch.id = c.source_id
		INNER JOIN summaries s ON s.id = h.summary_id
		WHERE h.user_id = $1
		ORDER BY h.generated_at DESC, h.id DESC`

	var entries []domain.HistoryEntry
	if err := sqlx.SelectContext(ctx, exec, &entries, query, userID); err != nil {
		return nil, domain.Wrap(domain.KindPersistence, "select user history", err)
	}
	return entries, nil
}
