package summarize

import "strings"

const maxTagLength = 25

// fallbackTags is the quality floor: when the model yields fewer usable tags
// than the target, the set is padded from this vocabulary.
var fallbackTags = []string{
	"video",
	"youtube",
	"summary",
	"education",
	"technology",
	"culture",
	"science",
	"news",
	"entertainment",
	"learning",
}

// ParseTags normalizes raw model output into the bounded tag set: split on
// commas and newlines, strip '#' and non-alphanumerics, lowercase, drop
// empty and over-length entries, deduplicate, and pad with fallbacks up to
// target. The result never exceeds ten tags.
func ParseTags(raw string, target int) []string {
	if target < 1 {
		target = 5
	}
	if target > 10 {
		target = 10
	}

	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	seen := make(map[string]bool)
	tags := make([]string, 0, target)
	for _, part := range parts {
		tag := normalizeTag(part)
		if tag == "" || len(tag) > maxTagLength || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == 10 {
			break
		}
	}

	for _, fb := range fallbackTags {
		if len(tags) >= target {
			break
		}
		if seen[fb] {
			continue
		}
		seen[fb] = true
		tags = append(tags, fb)
	}

	return tags
}

func normalizeTag(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}
