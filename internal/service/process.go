package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"video_digest/internal/config"
	"video_digest/internal/domain"
	"video_digest/internal/retry"
	"video_digest/internal/videoid"
)

type VideoService struct {
	channels   ChannelStore
	contents   ContentStore
	summaries  SummaryStore
	tags       TagStore
	history    HistoryStore
	txManager  TransactionManager
	transcript TranscriptSource
	metadata   MetadataSource
	summarizer Summarizer
	cache      TranscriptCache
	publisher  Publisher
	logger     *slog.Logger
	config     config.ProcessingConfig
}

func NewVideoService(
	channels ChannelStore,
	contents ContentStore,
	summaries SummaryStore,
	tags TagStore,
	history HistoryStore,
	txManager TransactionManager,
	transcript TranscriptSource,
	metadata MetadataSource,
	summarizer Summarizer,
	cache TranscriptCache,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.ProcessingConfig,
) *VideoService {
	return &VideoService{
		channels:   channels,
		contents:   contents,
		summaries:  summaries,
		tags:       tags,
		history:    history,
		txManager:  txManager,
		transcript: transcript,
		metadata:   metadata,
		summarizer: summarizer,
		cache:      cache,
		publisher:  publisher,
		logger:     logger,
		config:     cfg,
	}
}

// Process takes a raw video URL through the full pipeline: identifier
// extraction, transcript fetch, summarization, tag derivation and
// persistence. Repeat requests for the same video reuse the stored summary.
func (s *VideoService) Process(ctx context.Context, rawURL, userID string) (*domain.ProcessResult, error) {
	startTime := time.Now()

	parsed, err := videoid.Extract(rawURL)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With("video_id", parsed.VideoID, "user_id", userID)
	logger.Info("processing video")

	channel, err := s.resolveChannel(ctx, parsed.ChannelID)
	if err != nil {
		return nil, err
	}

	content, isNew, err := s.resolveContent(ctx, parsed.VideoID, channel.ID)
	if err != nil {
		return nil, err
	}

	summary, err := s.summaries.GetByContentAndType(ctx, content.ID, domain.SummaryTypeShort)
	switch {
	case err == nil:
		logger.Info("reusing stored summary", "summary_id", summary.ID)
	case domain.IsNotFound(err):
		summary, err = s.generateAndStore(ctx, logger, content, channel)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.recordHistory(ctx, userID, content.ID, summary.ID); err != nil {
		return nil, err
	}

	s.publish(ctx, logger, content, summary, isNew)

	contentTags, err := s.tags.GetByContentID(ctx, content.ID)
	if err != nil {
		return nil, err
	}

	// The channel row may have been renamed during metadata backfill.
	channel, err = s.channels.FindOrCreate(ctx, channel)
	if err != nil {
		return nil, err
	}

	logger.Info("video processed",
		"summary_id", summary.ID,
		"tags", len(contentTags),
		"duration", time.Since(startTime),
	)

	return &domain.ProcessResult{
		Summary: summary,
		Content: content,
		Channel: channel,
		Tags:    contentTags,
	}, nil
}

// Refresh regenerates the short summary for an already processed video,
// bypassing the transcript cache and replacing the stored summary row.
func (s *VideoService) Refresh(ctx context.Context, videoID, userID string) (*domain.ProcessResult, error) {
	if !videoid.IsValid(videoID) {
		return nil, domain.E(domain.KindInvalidInput, "invalid video identifier")
	}

	logger := s.logger.With("video_id", videoID, "user_id", userID)
	logger.Info("refreshing summary")

	content, err := s.contents.GetByUniqueID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	transcript, err := s.fetchTranscript(ctx, logger, content, true)
	if err != nil {
		return nil, err
	}
	content.Transcript = transcript

	if err := s.contents.UpdateTranscript(ctx, content.ID, transcript); err != nil {
		return nil, err
	}

	s.backfillMetadata(ctx, logger, content)

	result, err := s.summarizer.Summarize(ctx, transcript)
	if err != nil {
		return nil, err
	}

	summary, err := s.storeSummary(ctx, content.ID, result)
	if err != nil {
		return nil, err
	}

	if s.config.GenerateDetailedEagerly {
		if _, err := s.generateDetailed(ctx, content.ID, transcript); err != nil {
			logger.Warn("detailed summary generation failed", "error", err)
		}
	}

	if err := s.recordHistory(ctx, userID, content.ID, summary.ID); err != nil {
		return nil, err
	}

	s.publish(ctx, logger, content, summary, false)

	contentTags, err := s.tags.GetByContentID(ctx, content.ID)
	if err != nil {
		return nil, err
	}

	channel, err := s.channels.FindOrCreate(ctx, &domain.Channel{
		ID:   content.SourceID,
		Name: domain.UnknownChannelName,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("summary refreshed", "summary_id", summary.ID)

	return &domain.ProcessResult{
		Summary: summary,
		Content: content,
		Channel: channel,
		Tags:    contentTags,
	}, nil
}

// History lists the user's past summarizations, most recent first.
func (s *VideoService) History(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	if userID == "" {
		return nil, domain.E(domain.KindInvalidInput, "user identifier is required")
	}
	return s.history.ListByUser(ctx, userID)
}

// DetailedSummary returns the long-form summary for an already processed
// video, generating it from the stored transcript on first request.
func (s *VideoService) DetailedSummary(ctx context.Context, videoID, userID string) (*domain.Summary, error) {
	if !videoid.IsValid(videoID) {
		return nil, domain.E(domain.KindInvalidInput, "invalid video identifier")
	}

	content, err := s.contents.GetByUniqueID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	summary, err := s.summaries.GetByContentAndType(ctx, content.ID, domain.SummaryTypeDetailed)
	switch {
	case err == nil:
	case domain.IsNotFound(err):
		if content.Transcript == "" {
			return nil, domain.E(domain.KindNotFound, "no transcript stored for video")
		}
		summary, err = s.generateDetailed(ctx, content.ID, content.Transcript)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.recordHistory(ctx, userID, content.ID, summary.ID); err != nil {
		return nil, err
	}

	return summary, nil
}

// resolveChannel finds or creates the channel row. Without a known channel
// the placeholder is used; metadata backfill renames it later.
func (s *VideoService) resolveChannel(ctx context.Context, channelID string) (*domain.Channel, error) {
	channel := &domain.Channel{
		ID:   channelID,
		Name: domain.UnknownChannelName,
	}
	if channel.ID == "" {
		channel.ID = domain.UnknownChannelID
	}
	return s.channels.FindOrCreate(ctx, channel)
}

// resolveContent returns the content row for the video, creating it on first
// sight. For a new row the transcript is fetched and the metadata backfilled.
func (s *VideoService) resolveContent(ctx context.Context, videoID, channelID string) (*domain.Content, bool, error) {
	logger := s.logger.With("video_id", videoID)

	content, err := s.contents.GetByUniqueID(ctx, videoID)
	if err == nil && content.Transcript != "" {
		return content, false, nil
	}
	if err != nil && !domain.IsNotFound(err) {
		return nil, false, err
	}

	isNew := false
	if content == nil {
		isNew = true
		content = &domain.Content{
			ID:               videoID,
			ContentType:      domain.ContentTypeVideo,
			UniqueIdentifier: videoID,
			Title:            videoID,
			URL:              videoid.WatchURL(videoID),
			SourceID:         channelID,
		}
	}

	transcript, err := s.fetchTranscript(ctx, logger, content, false)
	if err != nil {
		return nil, false, err
	}
	content.Transcript = transcript

	if isNew {
		created, err := s.contents.Create(ctx, content)
		if err != nil {
			return nil, false, err
		}
		created.Transcript = transcript
		content = created
	}
	if err := s.contents.UpdateTranscript(ctx, content.ID, transcript); err != nil {
		return nil, false, err
	}

	s.backfillMetadata(ctx, logger, content)

	return content, isNew, nil
}

// fetchTranscript goes through the cache unless forced, retrying the
// upstream on transient failures. The fetched transcript is cached; cache
// errors are logged and ignored.
func (s *VideoService) fetchTranscript(ctx context.Context, logger *slog.Logger, content *domain.Content, force bool) (string, error) {
	videoID := content.UniqueIdentifier

	if !force {
		if cached, ok, err := s.cache.Get(ctx, videoID); err != nil {
			logger.Warn("transcript cache read failed", "error", err)
		} else if ok {
			logger.Debug("transcript cache hit")
			return cached, nil
		}
	}

	transcript, err := retry.Do(ctx, "fetch transcript", s.retryOptions(), func(ctx context.Context) (string, error) {
		return s.transcript.Fetch(ctx, videoID)
	})
	if err != nil {
		return "", err
	}

	if err := s.cache.Set(ctx, videoID, transcript); err != nil {
		logger.Warn("transcript cache write failed", "error", err)
	}

	return transcript, nil
}

// backfillMetadata replaces placeholder title and channel details with real
// ones when the provider has them. Failures never abort processing.
func (s *VideoService) backfillMetadata(ctx context.Context, logger *slog.Logger, content *domain.Content) {
	meta, err := s.metadata.Fetch(ctx, content.UniqueIdentifier)
	if err != nil {
		logger.Warn("metadata fetch failed", "error", err)
		return
	}
	if meta == nil {
		return
	}

	var publishedAt *time.Time
	if !meta.PublishedAt.IsZero() {
		t := meta.PublishedAt
		publishedAt = &t
	}

	if meta.Title != "" || publishedAt != nil {
		title := content.Title
		if meta.Title != "" {
			title = meta.Title
		}
		if err := s.contents.UpdateDetails(ctx, content.ID, title, publishedAt); err != nil {
			logger.Warn("metadata backfill failed", "error", err)
			return
		}
		content.Title = title
		if publishedAt != nil {
			content.PublishedAt = publishedAt
		}
	}

	if meta.ChannelName != "" && content.SourceID != "" {
		if err := s.channels.UpdateMetadata(ctx, content.SourceID, meta.ChannelName, meta.ChannelURL, meta.SubscriberCount); err != nil {
			logger.Warn("channel metadata update failed", "error", err)
		}
	}
}

// generateAndStore runs summarization for the content and persists summary
// and tags atomically. An eagerly generated detailed summary is best effort.
func (s *VideoService) generateAndStore(ctx context.Context, logger *slog.Logger, content *domain.Content, channel *domain.Channel) (*domain.Summary, error) {
	result, err := s.summarizer.Summarize(ctx, content.Transcript)
	if err != nil {
		return nil, err
	}

	summary, err := s.storeSummary(ctx, content.ID, result)
	if err != nil {
		return nil, err
	}

	if s.config.GenerateDetailedEagerly {
		if _, err := s.generateDetailed(ctx, content.ID, content.Transcript); err != nil {
			logger.Warn("detailed summary generation failed", "error", err)
		}
	}

	return summary, nil
}

// storeSummary persists the summary row and its tags in one transaction.
func (s *VideoService) storeSummary(ctx context.Context, contentID string, result *domain.SummaryResult) (*domain.Summary, error) {
	var stored *domain.Summary

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		summary, err := s.summaries.Upsert(txCtx, &domain.Summary{
			ContentID:   contentID,
			Summary:     result.Summary,
			SummaryType: domain.SummaryTypeShort,
		})
		if err != nil {
			return fmt.Errorf("upsert summary: %w", err)
		}

		tagIDs := make([]int64, 0, len(result.Tags))
		for _, name := range result.Tags {
			tag, err := s.tags.FindOrCreate(txCtx, name)
			if err != nil {
				return fmt.Errorf("find or create tag: %w", err)
			}
			tagIDs = append(tagIDs, tag.ID)
		}
		if len(tagIDs) > 0 {
			if err := s.tags.LinkToContent(txCtx, contentID, tagIDs); err != nil {
				return fmt.Errorf("link tags: %w", err)
			}
		}

		stored = summary
		return nil
	})
	if err != nil {
		return nil, domain.Wrap(domain.KindPersistence, "store summary", err)
	}

	return stored, nil
}

func (s *VideoService) generateDetailed(ctx context.Context, contentID, transcript string) (*domain.Summary, error) {
	text, err := s.summarizer.Detailed(ctx, transcript)
	if err != nil {
		return nil, err
	}

	summary, err := s.summaries.Upsert(ctx, &domain.Summary{
		ContentID:   contentID,
		Summary:     text,
		SummaryType: domain.SummaryTypeDetailed,
	})
	if err != nil {
		return nil, domain.Wrap(domain.KindPersistence, "store detailed summary", err)
	}
	return summary, nil
}

func (s *VideoService) recordHistory(ctx context.Context, userID, contentID string, summaryID int64) error {
	err := s.history.Append(ctx, &domain.UserSummaryHistory{
		UserID:    userID,
		ContentID: contentID,
		SummaryID: summaryID,
	})
	if err != nil {
		return domain.Wrap(domain.KindPersistence, "record history", err)
	}
	return nil
}

// publish emits the summary event. Broker failures are logged, never fatal.
func (s *VideoService) publish(ctx context.Context, logger *slog.Logger, content *domain.Content, summary *domain.Summary, isNew bool) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, content, summary, isNew); err != nil {
		logger.Warn("publish failed", "error", err)
	}
}

func (s *VideoService) retryOptions() retry.Options {
	return retry.Options{
		MaxAttempts:  s.config.Retry.MaxAttempts,
		InitialDelay: s.config.Retry.InitialBackoff,
		MaxDelay:     s.config.Retry.MaxBackoff,
	}
}
