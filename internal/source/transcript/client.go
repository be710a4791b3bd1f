// Package transcript calls the external transcript provider and normalizes
// its segment-based response into a single text blob.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"video_digest/internal/domain"
)

// Config holds transcript provider configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		logger:  logger.With("source", "transcript"),
	}
}

// Fetch retrieves the transcript for a video and concatenates its segments
// in ascending offset order, joined with a single space. No retry happens at
// this layer; transient failures are classified for the retry wrapper.
func (c *Client) Fetch(ctx context.Context, videoID string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/transcript?videoId=%s", c.baseURL, url.QueryEscape(videoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", domain.Wrap(domain.KindInternal, "create transcript request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.Error{
			Kind:    domain.KindUnavailable,
			Code:    "conn_failed",
			Message: "transcript provider unreachable",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.classifyStatus(resp)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", domain.Wrap(domain.KindUnavailable, "decode transcript response", err).WithStatus(resp.StatusCode)
	}

	if apiResp.Transcript == nil {
		return "", domain.E(domain.KindInvalidFormat, "transcript missing from provider response")
	}

	segments := *apiResp.Transcript
	if len(segments) == 0 {
		return "", domain.E(domain.KindNotFound, "no transcript for video "+videoID)
	}

	text, err := joinSegments(segments)
	if err != nil {
		return "", err
	}

	c.logger.Debug("fetched transcript",
		"video_id", videoID,
		"segments", len(segments),
		"chars", len(text),
	)

	return text, nil
}

func (c *Client) classifyStatus(resp *http.Response) error {
	var apiResp apiResponse
	_ = json.NewDecoder(resp.Body).Decode(&apiResp)

	message := fmt.Sprintf("transcript provider returned %d", resp.StatusCode)
	if apiResp.Error != nil && apiResp.Error.Message != "" {
		message = apiResp.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return domain.E(domain.KindNotFound, message).WithStatus(resp.StatusCode)
	case http.StatusTooManyRequests:
		return domain.E(domain.KindRateLimited, message).WithStatus(resp.StatusCode)
	default:
		return domain.E(domain.KindUnavailable, message).WithStatus(resp.StatusCode)
	}
}

// joinSegments sorts ascending by parsed offset and joins text fields with a
// single space.
func joinSegments(segments []Segment) (string, error) {
	type ordered struct {
		offset float64
		text   string
	}

	items := make([]ordered, 0, len(segments))
	for _, seg := range segments {
		offset, err := strconv.ParseFloat(seg.Offset, 64)
		if err != nil {
			return "", domain.Wrap(domain.KindInvalidFormat, "malformed segment offset "+seg.Offset, err)
		}
		items = append(items, ordered{offset: offset, text: seg.Text})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].offset < items[j].offset
	})

	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.text
	}
	return strings.Join(parts, " "), nil
}
