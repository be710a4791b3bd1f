// Package metadata fetches title and channel details for a video. The
// orchestrator treats these calls as best effort: a failure never aborts
// processing, it only leaves placeholders in place.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"video_digest/internal/domain"
)

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

type apiResponse struct {
	Title           string `json:"title"`
	ChannelID       string `json:"channelId"`
	ChannelName     string `json:"channelName"`
	ChannelURL      string `json:"channelUrl"`
	SubscriberCount int64  `json:"subscriberCount"`
	PublishedAt     string `json:"publishedAt"`
}

func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		logger:  logger.With("source", "metadata"),
	}
}

func (c *Client) Fetch(ctx context.Context, videoID string) (*domain.VideoMetadata, error) {
	endpoint := fmt.Sprintf("%s/api/metadata?videoId=%s", c.baseURL, url.QueryEscape(videoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "create metadata request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.Error{
			Kind:    domain.KindUnavailable,
			Code:    "conn_failed",
			Message: "metadata provider unreachable",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.E(domain.KindNotFound, "no metadata for video "+videoID).WithStatus(resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.E(domain.KindRateLimited, "metadata provider throttled").WithStatus(resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, domain.E(domain.KindUnavailable,
			fmt.Sprintf("metadata provider returned %d", resp.StatusCode)).WithStatus(resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, domain.Wrap(domain.KindInvalidFormat, "decode metadata response", err)
	}

	meta := &domain.VideoMetadata{
		Title:           apiResp.Title,
		ChannelID:       apiResp.ChannelID,
		ChannelName:     apiResp.ChannelName,
		ChannelURL:      apiResp.ChannelURL,
		SubscriberCount: apiResp.SubscriberCount,
	}
	if apiResp.PublishedAt != "" {
		publishedAt, err := time.Parse(time.RFC3339, apiResp.PublishedAt)
		if err != nil {
			c.logger.Warn("failed to parse published date",
				"video_id", videoID,
				"published_at", apiResp.PublishedAt,
			)
		} else {
			meta.PublishedAt = publishedAt
		}
	}

	return meta, nil
}
