package domain

import "time"

const (
	ContentTypeVideo = "video"

	SummaryTypeShort    = "short"
	SummaryTypeDetailed = "detailed"

	// Placeholders used until real metadata is backfilled.
	UnknownChannelID   = "anonymous"
	UnknownChannelName = "Unknown Channel"
)

// Channel is the source of one or more videos. Created lazily on first
// reference; name may be updated from the placeholder once metadata arrives.
type Channel struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	URL             string    `db:"url" json:"url"`
	SubscriberCount int64     `db:"subscriber_count" json:"subscriberCount"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// Content is the canonical record of one processed video. ID and
// UniqueIdentifier are both the video identifier; at most one row per video.
type Content struct {
	ID               string     `db:"id" json:"id"`
	ContentType      string     `db:"content_type" json:"contentType"`
	UniqueIdentifier string     `db:"unique_identifier" json:"uniqueIdentifier"`
	Title            string     `db:"title" json:"title"`
	URL              string     `db:"url" json:"url"`
	Transcript       string     `db:"transcript" json:"-"`
	PublishedAt      *time.Time `db:"published_at" json:"publishedAt,omitempty"`
	SourceID         string     `db:"source_id" json:"sourceId"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
}

type Summary struct {
	ID          int64     `db:"id" json:"id"`
	ContentID   string    `db:"content_id" json:"contentId"`
	Summary     string    `db:"summary" json:"summary"`
	SummaryType string    `db:"summary_type" json:"summaryType"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Tag is global and deduplicated by name.
type Tag struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// UserSummaryHistory is an append-only access log; multiple rows may exist
// per (user, content).
type UserSummaryHistory struct {
	ID          int64     `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	ContentID   string    `db:"content_id" json:"contentId"`
	SummaryID   int64     `db:"summary_id" json:"summaryId"`
	GeneratedAt time.Time `db:"generated_at" json:"generatedAt"`
}

// VideoMetadata is what the metadata provider knows about a video.
type VideoMetadata struct {
	Title           string
	ChannelID       string
	ChannelName     string
	ChannelURL      string
	SubscriberCount int64
	PublishedAt     time.Time
}

// SummaryResult is the output of one summarization run.
type SummaryResult struct {
	Summary string
	Tags    []string
}

// ProcessResult is returned to the caller for rendering.
type ProcessResult struct {
	Summary *Summary `json:"summary"`
	Content *Content `json:"content"`
	Channel *Channel `json:"channel"`
	Tags    []Tag    `json:"tags"`
}

// HistoryEntry is one history row joined with its related records,
// as served by GET /videos/summaries.
type HistoryEntry struct {
	ID           int64     `db:"id" json:"id"`
	GeneratedAt  time.Time `db:"generated_at" json:"generatedAt"`
	ContentID    string    `db:"content_id" json:"contentId"`
	Title        string    `db:"title" json:"title"`
	URL          string    `db:"url" json:"url"`
	ChannelID    string    `db:"channel_id" json:"channelId"`
	ChannelName  string    `db:"channel_name" json:"channelName"`
	SummaryID    int64     `db:"summary_id" json:"summaryId"`
	Summary      string    `db:"summary" json:"summary"`
	SummaryType  string    `db:"summary_type" json:"summaryType"`
	SummarizedAt time.Time `db:"summarized_at" json:"summarizedAt"`
}
