// Package videoid extracts canonical video identifiers from the URL shapes
// YouTube serves: watch?v=, youtu.be/, /shorts/ and /live/.
package videoid

import (
	"net/url"
	"regexp"
	"strings"

	"video_digest/internal/domain"
)

// A valid identifier is exactly 11 characters. Livestream ids observed in the
// wild are also 11 characters, so the stricter rule is enforced.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Result holds the parsed identifiers. ChannelID is optional; its absence is
// not an error.
type Result struct {
	VideoID   string
	ChannelID string
}

// Extract parses a video URL into a canonical video identifier and optional
// channel identifier. It has no side effects.
func Extract(rawURL string) (Result, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Result{}, domain.Wrap(domain.KindInvalidInput, "malformed url", err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	var id string
	switch host {
	case "youtube.com", "m.youtube.com":
		id = fromYouTubePath(u)
	case "youtu.be":
		id = firstSegment(u.Path)
	default:
		return Result{}, domain.E(domain.KindInvalidInput, "not a recognized youtube url")
	}

	if !idPattern.MatchString(id) {
		return Result{}, domain.E(domain.KindInvalidInput, "no valid video identifier in url")
	}

	return Result{
		VideoID:   id,
		ChannelID: u.Query().Get("channel"),
	}, nil
}

// IsValid reports whether id is a well-formed video identifier.
func IsValid(id string) bool {
	return idPattern.MatchString(id)
}

// WatchURL returns the canonical watch URL for a video identifier.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func fromYouTubePath(u *url.URL) string {
	path := strings.Trim(u.Path, "/")
	switch {
	case path == "watch":
		return u.Query().Get("v")
	case strings.HasPrefix(path, "shorts/"):
		return firstSegment(strings.TrimPrefix(path, "shorts/"))
	case strings.HasPrefix(path, "live/"):
		return firstSegment(strings.TrimPrefix(path, "live/"))
	}
	return ""
}

func firstSegment(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}
