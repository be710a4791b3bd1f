//go:build integration

package postgres

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"video_digest/internal/domain"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_create_channels.up.sql"),
			filepath.Join(migrationsPath, "002_create_content.up.sql"),
			filepath.Join(migrationsPath, "003_create_summaries.up.sql"),
			filepath.Join(migrationsPath, "004_create_tags.up.sql"),
			filepath.Join(migrationsPath, "005_create_user_summary_history.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM user_summary_history")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM content_tags")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM tags")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM summaries")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM content")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM channels")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) seedContent(videoID string) *domain.Content {
	channelStore := NewChannelStore(s.db)
	contentStore := NewContentStore(s.db)

	_, err := channelStore.FindOrCreate(s.ctx, &domain.Channel{
		ID:   domain.UnknownChannelID,
		Name: domain.UnknownChannelName,
	})
	s.Require().NoError(err)

	content, err := contentStore.Create(s.ctx, &domain.Content{
		ID:               videoID,
		ContentType:      domain.ContentTypeVideo,
		UniqueIdentifier: videoID,
		Title:            videoID,
		URL:              "https://www.youtube.com/watch?v=" + videoID,
		SourceID:         domain.UnknownChannelID,
	})
	s.Require().NoError(err)
	return content
}

func (s *PostgresIntegrationSuite) TestChannelStore_FindOrCreate_Idempotent() {
	store := NewChannelStore(s.db)

	first, err := store.FindOrCreate(s.ctx, &domain.Channel{ID: "chan-1", Name: "Channel One"})
	s.NoError(err)
	s.Equal("chan-1", first.ID)

	// A second call with a different name must not overwrite the stored row.
	second, err := store.FindOrCreate(s.ctx, &domain.Channel{ID: "chan-1", Name: "Other Name"})
	s.NoError(err)
	s.Equal("Channel One", second.Name)

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM channels WHERE id = $1", "chan-1")
	s.NoError(err)
	s.Equal(1, count)
}

func (s *PostgresIntegrationSuite) TestChannelStore_UpdateMetadata() {
	store := NewChannelStore(s.db)

	_, err := store.FindOrCreate(s.ctx, &domain.Channel{ID: "chan-1", Name: domain.UnknownChannelName})
	s.NoError(err)

	err = store.UpdateMetadata(s.ctx, "chan-1", "Real Channel", "https://www.youtube.com/@real", 5000)
	s.NoError(err)

	updated, err := store.FindOrCreate(s.ctx, &domain.Channel{ID: "chan-1", Name: domain.UnknownChannelName})
	s.NoError(err)
	s.Equal("Real Channel", updated.Name)
	s.Equal(int64(5000), updated.SubscriberCount)
}

func (s *PostgresIntegrationSuite) TestContentStore_CreateAndGet() {
	content := s.seedContent("dQw4w9WgXcQ")

	store := NewContentStore(s.db)
	got, err := store.GetByUniqueID(s.ctx, "dQw4w9WgXcQ")
	s.NoError(err)
	s.Equal(content.ID, got.ID)
	s.Equal(domain.ContentTypeVideo, got.ContentType)
}

func (s *PostgresIntegrationSuite) TestContentStore_GetByUniqueID_NotFound() {
	store := NewContentStore(s.db)

	got, err := store.GetByUniqueID(s.ctx, "aaaaaaaaaaa")
	s.Error(err)
	s.Nil(got)
	s.True(domain.IsNotFound(err))
}

func (s *PostgresIntegrationSuite) TestContentStore_Create_DuplicateReturnsExisting() {
	s.seedContent("dQw4w9WgXcQ")

	store := NewContentStore(s.db)
	again, err := store.Create(s.ctx, &domain.Content{
		ID:               "dQw4w9WgXcQ",
		ContentType:      domain.ContentTypeVideo,
		UniqueIdentifier: "dQw4w9WgXcQ",
		Title:            "different title",
		URL:              "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		SourceID:         domain.UnknownChannelID,
	})
	s.NoError(err)
	s.Equal("dQw4w9WgXcQ", again.ID)

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM content WHERE unique_identifier = $1", "dQw4w9WgXcQ")
	s.NoError(err)
	s.Equal(1, count)
}

func (s *PostgresIntegrationSuite) TestContentStore_UpdateTranscriptAndDetails() {
	content := s.seedContent("dQw4w9WgXcQ")
	store := NewContentStore(s.db)

	err := store.UpdateTranscript(s.ctx, content.ID, "full transcript")
	s.NoError(err)

	publishedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	err = store.UpdateDetails(s.ctx, content.ID, "Real Title", &publishedAt)
	s.NoError(err)

	got, err := store.GetByUniqueID(s.ctx, "dQw4w9WgXcQ")
	s.NoError(err)
	s.Equal("full transcript", got.Transcript)
	s.Equal("Real Title", got.Title)
	s.Require().NotNil(got.PublishedAt)
	s.True(publishedAt.Equal(*got.PublishedAt))

	// A nil publish date keeps the stored one.
	err = store.UpdateDetails(s.ctx, content.ID, "Newer Title", nil)
	s.NoError(err)

	got, err = store.GetByUniqueID(s.ctx, "dQw4w9WgXcQ")
	s.NoError(err)
	s.Equal("Newer Title", got.Title)
	s.Require().NotNil(got.PublishedAt)
	s.True(publishedAt.Equal(*got.PublishedAt))
}

func (s *PostgresIntegrationSuite) TestSummaryStore_UpsertReplaces() {
	content := s.seedContent("dQw4w9WgXcQ")
	store := NewSummaryStore(s.db)

	first, err := store.Upsert(s.ctx, &domain.Summary{
		ContentID:   content.ID,
		Summary:     "first summary",
		SummaryType: domain.SummaryTypeShort,
	})
	s.NoError(err)

	second, err := store.Upsert(s.ctx, &domain.Summary{
		ContentID:   content.ID,
		Summary:     "second summary",
		SummaryType: domain.SummaryTypeShort,
	})
	s.NoError(err)
	s.Equal(first.ID, second.ID)
	s.Equal("second summary", second.Summary)

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM summaries WHERE content_id = $1", content.ID)
	s.NoError(err)
	s.Equal(1, count)
}

func (s *PostgresIntegrationSuite) TestSummaryStore_TypesAreIndependent() {
	content := s.seedContent("dQw4w9WgXcQ")
	store := NewSummaryStore(s.db)

	_, err := store.Upsert(s.ctx, &domain.Summary{
		ContentID:   content.ID,
		Summary:     "short",
		SummaryType: domain.SummaryTypeShort,
	})
	s.NoError(err)

	_, err = store.Upsert(s.ctx, &domain.Summary{
		ContentID:   content.ID,
		Summary:     "detailed",
		SummaryType: domain.SummaryTypeDetailed,
	})
	s.NoError(err)

	short, err := store.GetByContentAndType(s.ctx, content.ID, domain.SummaryTypeShort)
	s.NoError(err)
	s.Equal("short", short.Summary)

	detailed, err := store.GetByContentAndType(s.ctx, content.ID, domain.SummaryTypeDetailed)
	s.NoError(err)
	s.Equal("detailed", detailed.Summary)
}

func (s *PostgresIntegrationSuite) TestSummaryStore_GetByContentAndType_NotFound() {
	content := s.seedContent("dQw4w9WgXcQ")
	store := NewSummaryStore(s.db)

	got, err := store.GetByContentAndType(s.ctx, content.ID, domain.SummaryTypeShort)
	s.Error(err)
	s.Nil(got)
	s.True(domain.IsNotFound(err))
}

func (s *PostgresIntegrationSuite) TestTagStore_FindOrCreate_DeduplicatesByName() {
	store := NewTagStore(s.db)

	first, err := store.FindOrCreate(s.ctx, "music")
	s.NoError(err)

	second, err := store.FindOrCreate(s.ctx, "music")
	s.NoError(err)
	s.Equal(first.ID, second.ID)

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM tags")
	s.NoError(err)
	s.Equal(1, count)
}

func (s *PostgresIntegrationSuite) TestTagStore_LinkToContent_Idempotent() {
	content := s.seedContent("dQw4w9WgXcQ")
	store := NewTagStore(s.db)

	tag1, err := store.FindOrCreate(s.ctx, "music")
	s.NoError(err)
	tag2, err := store.FindOrCreate(s.ctx, "pop")
	s.NoError(err)

	err = store.LinkToContent(s.ctx, content.ID, []int64{tag1.ID, tag2.ID})
	s.NoError(err)

	// Relinking the same tags must not fail or duplicate rows.
	err = store.LinkToContent(s.ctx, content.ID, []int64{tag1.ID, tag2.ID})
	s.NoError(err)

	linked, err := store.GetByContentID(s.ctx, content.ID)
	s.NoError(err)
	s.Len(linked, 2)
}

func (s *PostgresIntegrationSuite) TestHistoryStore_AppendAndList() {
	content := s.seedContent("dQw4w9WgXcQ")
	summaryStore := NewSummaryStore(s.db)
	historyStore := NewHistoryStore(s.db)

	summary, err := summaryStore.Upsert(s.ctx, &domain.Summary{
		ContentID:   content.ID,
		Summary:     "a summary",
		SummaryType: domain.SummaryTypeShort,
	})
	s.NoError(err)

	for i := 0; i < 3; i++ {
		err = historyStore.Append(s.ctx, &domain.UserSummaryHistory{
			UserID:    "user-1",
			ContentID: content.ID,
			SummaryID: summary.ID,
		})
		s.NoError(err)
	}
	err = historyStore.Append(s.ctx, &domain.UserSummaryHistory{
		UserID:    "user-2",
		ContentID: content.ID,
		SummaryID: summary.ID,
	})
	s.NoError(err)

	entries, err := historyStore.ListByUser(s.ctx, "user-1")
	s.NoError(err)
	s.Len(entries, 3)
	s.Equal("a summary", entries[0].Summary)
	s.Equal(content.ID, entries[0].ContentID)

	// Most recent first.
	for i := 1; i < len(entries); i++ {
		s.False(entries[i-1].GeneratedAt.Before(entries[i].GeneratedAt))
	}

	other, err := historyStore.ListByUser(s.ctx, "user-2")
	s.NoError(err)
	s.Len(other, 1)
}

func (s *PostgresIntegrationSuite) TestTransaction_Commit() {
	s.seedContent("dQw4w9WgXcQ")
	tm := NewTransactionManager(s.db)
	summaryStore := NewSummaryStore(s.db)
	tagStore := NewTagStore(s.db)

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		summary, err := summaryStore.Upsert(ctx, &domain.Summary{
			ContentID:   "dQw4w9WgXcQ",
			Summary:     "tx summary",
			SummaryType: domain.SummaryTypeShort,
		})
		if err != nil {
			return err
		}
		s.NotZero(summary.ID)

		tag, err := tagStore.FindOrCreate(ctx, "music")
		if err != nil {
			return err
		}
		return tagStore.LinkToContent(ctx, "dQw4w9WgXcQ", []int64{tag.ID})
	})
	s.NoError(err)

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM summaries WHERE content_id = $1", "dQw4w9WgXcQ")
	s.NoError(err)
	s.Equal(1, count)
}

func (s *PostgresIntegrationSuite) TestTransaction_Rollback() {
	s.seedContent("dQw4w9WgXcQ")
	tm := NewTransactionManager(s.db)
	summaryStore := NewSummaryStore(s.db)

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		_, err := summaryStore.Upsert(ctx, &domain.Summary{
			ContentID:   "dQw4w9WgXcQ",
			Summary:     "should roll back",
			SummaryType: domain.SummaryTypeShort,
		})
		if err != nil {
			return err
		}
		return context.Canceled
	})
	s.Error(err)

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM summaries WHERE content_id = $1", "dQw4w9WgXcQ")
	s.NoError(err)
	s.Equal(0, count)
}
