// Package params converts user-facing parameter forms into the exact
// values the Diigo API expects on the wire.
package params

import (
	"net/url"
	"regexp"
	"strings"
)

// Sort orders accepted by the bookmarks endpoint.
const (
	SortCreated    = 0
	SortUpdated    = 1
	SortPopularity = 2
	SortHot        = 3
)

// Bool converts a boolean or a loose string form to the API's "yes"/"no"
// wire value. Total function: anything unrecognized is "no".
func Bool(value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case string:
		switch strings.ToLower(v) {
		case "yes", "true", "1", "y":
			return "yes"
		}
		return "no"
	default:
		return "no"
	}
}

// SortKey converts a sort parameter to the API integer. Integers are
// clamped into [0,3]; recognized aliases map to their order; anything
// else defaults to SortUpdated, the most useful order for a bookmark
// stream.
func SortKey(value any) int {
	switch v := value.(type) {
	case int:
		return clampSort(v)
	case float64:
		return clampSort(int(v))
	case string:
		switch strings.ToLower(v) {
		case "created", "created_at":
			return SortCreated
		case "updated", "updated_at":
			return SortUpdated
		case "popularity":
			return SortPopularity
		case "hot":
			return SortHot
		}
		return SortUpdated
	default:
		return SortUpdated
	}
}

func clampSort(v int) int {
	if v < SortCreated {
		return SortCreated
	}
	if v > SortHot {
		return SortHot
	}
	return v
}

// VisibilityFilter normalizes a visibility filter for the API. The API
// only understands "all" and "public"; "private" is approximated as
// "all" because there is no private-only filter upstream.
func VisibilityFilter(value string) string {
	switch strings.ToLower(value) {
	case "all":
		return "all"
	case "public":
		return "public"
	case "private":
		return "all"
	default:
		return "all"
	}
}

// ParseTags splits a comma-separated tag string into trimmed, non-empty
// tokens. Empty or whitespace-only input yields an empty slice.
func ParseTags(tags string) []string {
	if strings.TrimSpace(tags) == "" {
		return []string{}
	}
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// JoinTags converts a tag list back to the comma-joined wire form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

var tagSanitizer = regexp.MustCompile(`[^A-Za-z0-9@_-]+`)

// SanitizeTag replaces characters outside [A-Za-z0-9@_-] with
// underscores, for compatibility with systems stricter than Diigo.
func SanitizeTag(tag string) string {
	return tagSanitizer.ReplaceAllString(tag, "_")
}

// ValidURL reports whether s parses as an absolute URL with both a
// scheme and a host.
func ValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
