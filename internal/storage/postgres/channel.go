package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"video_digest/internal/domain"
)

type ChannelStore struct {
	db *sqlx.DB
}

func NewChannelStore(db *sqlx.DB) *ChannelStore {
	return &ChannelStore{db: db}
}

// FindOrCreate inserts the channel if it does not exist and returns the
// stored row either way. The insert is conflict-tolerant so two racing
// creates converge on one row.
func (s *ChannelStore) FindOrCreate(ctx context.Context, channel *domain.Channel) (*domain.Channel, error) {
	exec := GetExecutor(ctx, s.db)

	query := `
		INSERT INTO channels (id, name, url, subscriber_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`

	if _, err := exec.ExecContext(ctx, query,
		channel.ID,
		channel.Name,
		channel.URL,
		channel.SubscriberCount,
	); err != nil {
		return nil, domain.Wrap(domain.KindPersistence, "insert channel", err)
	}

	var stored domain.Channel
	err := sqlx.GetContext(ctx, exec, &stored,
		`SELECT id, name, url, subscriber_count, created_at FROM channels WHERE id = $1`,
		channel.ID,
	)
	if err != nil {
		return nil, domain.Wrap(domain.KindPersistence, "select channel", err)
	}
	return &stored, nil
}

// UpdateMetadata backfills real channel details over placeholders.
func (s *ChannelStore) UpdateMetadata(ctx context.Context, id, name, url string, subscriberCount int64) error {
	exec := GetExecutor(ctx, s.db)

	_, err := exec.ExecContext(ctx, `
		UPDATE channels
		SET name = $2, url = $3, subscriber_count = $4
		WHERE id = $1`,
		id, name, url, subscriberCount,
	)
	if err != nil {
		return domain.Wrap(domain.KindPersistence, "update channel metadata", err)
	}
	return nil
}
