package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video_digest/internal/domain"
	"video_digest/internal/llm"
	"video_digest/internal/retry"
)

type fakeClient struct {
	fn    func(req llm.CompletionRequest) (string, error)
	calls atomic.Int64
}

func (f *fakeClient) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	f.calls.Add(1)
	return f.fn(req)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func noSleep(opts retry.Options) retry.Options {
	opts.Sleep = func(context.Context, time.Duration) error { return nil }
	return opts
}

func newSummarizer(client llm.Client, cfg Config) *Summarizer {
	cfg.Retry = noSleep(cfg.Retry)
	return New(client, cfg, testLogger())
}

func TestSummarize_SingleChunkPath(t *testing.T) {
	client := &fakeClient{fn: func(req llm.CompletionRequest) (string, error) {
		if strings.Contains(req.User, "topic tags") {
			return "music, pop, eighties, rickroll, meme", nil
		}
		assert.Contains(t, req.User, "Summarize the following video transcript")
		return "A short summary.", nil
	}}

	s := newSummarizer(client, Config{Model: "gpt-4o-mini", ChunkSize: 3500})
	res, err := s.Summarize(context.Background(), "Never gonna give you up. Never gonna let you down.")
	require.NoError(t, err)

	assert.Equal(t, "A short summary.", res.Summary)
	assert.Equal(t, []string{"music", "pop", "eighties", "rickroll", "meme"}, res.Tags)
	// one summary call plus one tags call
	assert.Equal(t, int64(2), client.calls.Load())
}

func TestSummarize_MultiChunkPreservesOrder(t *testing.T) {
	// Three sentences that cannot share a 30-char chunk; slower completion
	// for earlier chunks must not reorder the reduce input.
	transcript := "Alpha topic here. Beta topic here. Gamma topic here."

	var reduceInput atomic.Value
	client := &fakeClient{}
	client.fn = func(req llm.CompletionRequest) (string, error) {
		switch {
		case strings.Contains(req.User, "Merge them"):
			reduceInput.Store(req.User)
			return "merged summary", nil
		case strings.Contains(req.User, "topic tags"):
			return "alpha, beta, gamma, order, test", nil
		case strings.Contains(req.User, "Alpha"):
			time.Sleep(30 * time.Millisecond)
			return "summary-of-alpha", nil
		case strings.Contains(req.User, "Beta"):
			time.Sleep(10 * time.Millisecond)
			return "summary-of-beta", nil
		default:
			return "summary-of-gamma", nil
		}
	}

	s := newSummarizer(client, Config{Model: "gpt-4o-mini", ChunkSize: 30})
	res, err := s.Summarize(context.Background(), transcript)
	require.NoError(t, err)
	assert.Equal(t, "merged summary", res.Summary)

	joined, ok := reduceInput.Load().(string)
	require.True(t, ok)
	alphaIdx := strings.Index(joined, "summary-of-alpha")
	betaIdx := strings.Index(joined, "summary-of-beta")
	gammaIdx := strings.Index(joined, "summary-of-gamma")
	require.NotEqual(t, -1, alphaIdx)
	assert.Less(t, alphaIdx, betaIdx)
	assert.Less(t, betaIdx, gammaIdx)
	assert.Contains(t, joined, "summary-of-alpha\n\nsummary-of-beta")
}

func TestSummarize_ChunkFailureAbortsRun(t *testing.T) {
	client := &fakeClient{fn: func(req llm.CompletionRequest) (string, error) {
		if strings.Contains(req.User, "Beta") {
			return "", domain.E(domain.KindGenerationFailed, "model produced no usable output")
		}
		return "partial", nil
	}}

	s := newSummarizer(client, Config{Model: "gpt-4o-mini", ChunkSize: 30})
	_, err := s.Summarize(context.Background(), "Alpha topic here. Beta topic here. Gamma topic here.")
	require.Error(t, err)
	assert.Equal(t, domain.KindGenerationFailed, domain.KindOf(err))
}

func TestSummarize_TransientErrorIsRetried(t *testing.T) {
	var summaryCalls atomic.Int64
	client := &fakeClient{fn: func(req llm.CompletionRequest) (string, error) {
		if strings.Contains(req.User, "topic tags") {
			return "one, two, three, four, five", nil
		}
		if summaryCalls.Add(1) == 1 {
			return "", domain.E(domain.KindUnavailable, "flaky upstream").WithStatus(503)
		}
		return "recovered summary", nil
	}}

	s := newSummarizer(client, Config{Model: "gpt-4o-mini"})
	res, err := s.Summarize(context.Background(), "Just one sentence.")
	require.NoError(t, err)
	assert.Equal(t, "recovered summary", res.Summary)
	assert.Equal(t, int64(2), summaryCalls.Load())
}

func TestSummarize_RateLimitSurvivesExhaustion(t *testing.T) {
	client := &fakeClient{fn: func(req llm.CompletionRequest) (string, error) {
		return "", domain.E(domain.KindRateLimited, "throttled").WithStatus(429)
	}}

	s := newSummarizer(client, Config{Model: "gpt-4o-mini"})
	_, err := s.Summarize(context.Background(), "Just one sentence.")
	require.Error(t, err)
	// after exhausting retries the rate-limit categorization must survive
	// so the handler can answer 429
	assert.Equal(t, domain.KindRateLimited, domain.KindOf(err))
}

func TestSummarize_EmptyTranscript(t *testing.T) {
	s := newSummarizer(&fakeClient{fn: func(llm.CompletionRequest) (string, error) {
		return "", fmt.Errorf("should not be called")
	}}, Config{Model: "gpt-4o-mini"})

	_, err := s.Summarize(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
}

func TestDetailed_SingleChunk(t *testing.T) {
	client := &fakeClient{fn: func(req llm.CompletionRequest) (string, error) {
		assert.Contains(t, req.User, "detailed summary")
		return "a long detailed summary", nil
	}}

	s := newSummarizer(client, Config{Model: "gpt-4o-mini"})
	got, err := s.Detailed(context.Background(), "One sentence transcript.")
	require.NoError(t, err)
	assert.Equal(t, "a long detailed summary", got)
}

func TestParseTags_FiltersAndPads(t *testing.T) {
	raw := "  #Music , Pop!, INDIE-rock\nthisislongerthantwentyfivecharacters, pop, , 80s"
	tags := ParseTags(raw, 5)

	assert.Equal(t, []string{"music", "pop", "indierock", "80s", "video"}, tags)
	for _, tag := range tags {
		assert.LessOrEqual(t, len(tag), 25)
		assert.Regexp(t, "^[a-z0-9]+$", tag)
	}
}

func TestParseTags_DeduplicatesCaseInsensitively(t *testing.T) {
	tags := ParseTags("Go, go, GO, golang, Golang, programming, code, dev", 4)
	assert.Equal(t, []string{"go", "golang", "programming", "code", "dev"}, tags)
}

func TestParseTags_CapsAtTen(t *testing.T) {
	raw := "a1, a2, a3, a4, a5, a6, a7, a8, a9, a10, a11, a12"
	tags := ParseTags(raw, 10)
	assert.Len(t, tags, 10)
}

func TestParseTags_AllGarbagePadsFromFallback(t *testing.T) {
	tags := ParseTags("???, !!!, ----", 5)
	assert.Equal(t, []string{"video", "youtube", "summary", "education", "technology"}, tags)
}
