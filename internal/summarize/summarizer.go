// Package summarize turns a transcript into a summary and a bounded tag set.
// Long transcripts are chunked on sentence boundaries, the chunks are
// summarized concurrently, and a reduce call merges them into one narrative.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"video_digest/internal/domain"
	"video_digest/internal/llm"
	"video_digest/internal/retry"
)

// Config parameterizes one summarizer; there is a single pipeline, never
// parallel code paths for different models or chunk sizes.
type Config struct {
	Model          string
	ChunkSize      int
	TagCountTarget int
	Temperature    float32
	MaxTokens      int
	Retry          retry.Options
}

type Summarizer struct {
	client llm.Client
	cfg    Config
	logger *slog.Logger
}

func New(client llm.Client, cfg Config, logger *slog.Logger) *Summarizer {
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 3500
	}
	if cfg.TagCountTarget == 0 {
		cfg.TagCountTarget = 5
	}
	return &Summarizer{
		client: client,
		cfg:    cfg,
		logger: logger.With("component", "summarizer"),
	}
}

// Summarize produces the short summary and tag set for a transcript. Any
// model call that exhausts its retries aborts the whole run; no partial
// summaries are returned.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) (*domain.SummaryResult, error) {
	summary, err := s.run(ctx, transcript, shortPrompt, reducePrompt)
	if err != nil {
		return nil, err
	}

	rawTags, err := s.complete(ctx, "generate tags", fmt.Sprintf(tagsPrompt, summary))
	if err != nil {
		return nil, asGenerationFailure("generate tags", err)
	}

	return &domain.SummaryResult{
		Summary: summary,
		Tags:    ParseTags(rawTags, s.cfg.TagCountTarget),
	}, nil
}

// Detailed produces the longer on-demand summary variant.
func (s *Summarizer) Detailed(ctx context.Context, transcript string) (string, error) {
	return s.run(ctx, transcript, detailedPrompt, detailedReducePrompt)
}

// run executes the chunk/fan-out/reduce pipeline. With a single chunk the
// final summary is that chunk's direct model output.
func (s *Summarizer) run(ctx context.Context, transcript string, directTemplate, reduceTemplate string) (string, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", domain.E(domain.KindInvalidInput, "empty transcript")
	}

	chunks := Split(transcript, s.cfg.ChunkSize)
	if len(chunks) == 1 {
		summary, err := s.complete(ctx, "summarize transcript", fmt.Sprintf(directTemplate, chunks[0]))
		if err != nil {
			return "", asGenerationFailure("summarize transcript", err)
		}
		return summary, nil
	}

	s.logger.Debug("summarizing in chunks", "chunks", len(chunks), "chars", len(transcript))

	partials, err := s.summarizeChunks(ctx, chunks)
	if err != nil {
		return "", err
	}

	joined := strings.Join(partials, "\n\n")
	summary, err := s.complete(ctx, "reduce summaries", fmt.Sprintf(reduceTemplate, joined))
	if err != nil {
		return "", asGenerationFailure("reduce summaries", err)
	}
	return summary, nil
}

// summarizeChunks issues all chunk calls concurrently and gathers results
// preserving original chunk order; completion order never affects output.
func (s *Summarizer) summarizeChunks(ctx context.Context, chunks []string) ([]string, error) {
	results := make([]string, len(chunks))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk string) {
			defer wg.Done()
			op := fmt.Sprintf("summarize chunk %d", i+1)
			out, err := s.complete(ctx, op, fmt.Sprintf(chunkPrompt, strings.TrimSpace(chunk)))
			if err != nil {
				errs[i] = asGenerationFailure(op, err)
				return
			}
			results[i] = out
		}(i, chunk)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (s *Summarizer) complete(ctx context.Context, op, user string) (string, error) {
	return retry.Do(ctx, op, s.cfg.Retry, func(ctx context.Context) (string, error) {
		return s.client.Complete(ctx, llm.CompletionRequest{
			Model:       s.cfg.Model,
			System:      systemPrompt,
			User:        user,
			Temperature: s.cfg.Temperature,
			MaxTokens:   s.cfg.MaxTokens,
		})
	})
}

// asGenerationFailure keeps already-categorized failures (rate limits,
// upstream outages) intact for status mapping and folds everything else into
// the generation-failed kind.
func asGenerationFailure(op string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.Wrap(domain.KindGenerationFailed, op, err)
}
