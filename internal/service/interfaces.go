package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"video_digest/internal/domain"
)

type ChannelStore interface {
	FindOrCreate(ctx context.Context, channel *domain.Channel) (*domain.Channel, error)
	UpdateMetadata(ctx context.Context, id, name, url string, subscriberCount int64) error
}

type ContentStore interface {
	GetByUniqueID(ctx context.Context, uniqueID string) (*domain.Content, error)
	Create(ctx context.Context, content *domain.Content) (*domain.Content, error)
	UpdateTranscript(ctx context.Context, id, transcript string) error
	UpdateDetails(ctx context.Context, id, title string, publishedAt *time.Time) error
}

type SummaryStore interface {
	GetByContentAndType(ctx context.Context, contentID, summaryType string) (*domain.Summary, error)
	Upsert(ctx context.Context, summary *domain.Summary) (*domain.Summary, error)
}

type TagStore interface {
	FindOrCreate(ctx context.Context, name string) (*domain.Tag, error)
	LinkToContent(ctx context.Context, contentID string, tagIDs []int64) error
	GetByContentID(ctx context.Context, contentID string) ([]domain.Tag, error)
}

type HistoryStore interface {
	Append(ctx context.Context, entry *domain.UserSummaryHistory) error
	ListByUser(ctx context.Context, userID string) ([]domain.HistoryEntry, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TranscriptSource fetches the raw transcript text for a video.
type TranscriptSource interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// MetadataSource fetches title and channel details; the orchestrator treats
// it as best effort.
type MetadataSource interface {
	Fetch(ctx context.Context, videoID string) (*domain.VideoMetadata, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (*domain.SummaryResult, error)
	Detailed(ctx context.Context, transcript string) (string, error)
}

// TranscriptCache fronts the transcript source; cache failures are never
// fatal to processing.
type TranscriptCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Publisher interface {
	Publish(ctx context.Context, content *domain.Content, summary *domain.Summary, isNew bool) error
	Close() error
}
