package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"video_digest/internal/domain"
)

type TagStore struct {
	db *sqlx.DB
}

func NewTagStore(db *sqlx.DB) *TagStore {
	return &TagStore{db: db}
}

// FindOrCreate deduplicates tags globally by name. The DO UPDATE no-op makes
// RETURNING yield the id on both the insert and the conflict path.
func (s *TagStore) FindOrCreate(ctx context.Context, name string) (*domain.Tag, error) {
	exec := GetExecutor(ctx, s.db)

	query := `
		INSERT INTO tags (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name`

	var tag domain.Tag
	if err := sqlx.GetContext(ctx, exec, &tag, query, name); err != nil {
		return nil, domain.Wrap(domain.KindPersistence, "find or create tag", err)
	}
	return &tag, nil
}

// LinkToContent associates tags with a content row; existing associations
// are kept.
func (s *TagStore) LinkToContent(ctx context.Context, contentID string, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}

	exec := GetExecutor(ctx, s.db)

	for _, tagID := range tagIDs {
		if _, err := exec.ExecContext(ctx, `
			INSERT INTO content_tags (content_id, tag_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			contentID, tagID,
		); err != nil {
			return domain.Wrap(domain.KindPersistence, "link tag to content", err)
		}
	}
	return nil
}

func (s *TagStore) GetByContentID(ctx context.Context, contentID string) ([]domain.Tag, error) {
	exec := GetExecutor(ctx, s.db)

	query := `
		SELECT t.id, t.name
		FROM tags t
		INNER JOIN content_tags ct ON ct.tag_id = t.id
		WHERE ct.content_id = $1
		ORDER BY t.id`

	var tags []domain.Tag
	if err := sqlx.SelectContext(ctx, exec, &tags, query, contentID); err != nil {
		return nil, domain.Wrap(domain.KindPersistence, "select content tags", err)
	}
	return tags, nil
}
