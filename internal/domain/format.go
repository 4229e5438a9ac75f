package domain

import (
	"strconv"
	"time"

	"github.com/gofrs/uuid"

	"github.com/MrSnakeDoc/diigo-mcp/internal/params"
)

// FormattedBookmark is the output view of a bookmark: the wire record
// plus a derived short identifier and the tags parsed into a list.
type FormattedBookmark struct {
	Bookmark
	GeneratedID string   `json:"generated_id,omitempty"`
	TagsList    []string `json:"tags_list"`
}

// Format enriches a bookmark for output. The generated ID is cosmetic
// and never sent upstream; it is not guaranteed stable across runs.
func Format(b Bookmark) FormattedBookmark {
	f := FormattedBookmark{
		Bookmark: b,
		TagsList: params.ParseTags(b.Tags),
	}
	if b.CreatedAt != "" && b.URL != "" {
		f.GeneratedID = ShortID(b.CreatedAt, b.URL)
	}
	return f
}

// FormatAll applies Format to every bookmark.
func FormatAll(bookmarks []Bookmark) []FormattedBookmark {
	out := make([]FormattedBookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		out = append(out, Format(b))
	}
	return out
}

// ShortID derives a human-readable identifier from a bookmark's creation
// timestamp and URL: YYMMDD followed by the first four hex characters of
// a UUIDv5 over timestamp+URL. Falls back to a random 8-character ID
// when the timestamp cannot be parsed.
func ShortID(createdAt, url string) string {
	t, err := time.Parse(TimeLayout, createdAt)
	if err != nil {
		v4, err := uuid.NewV4()
		if err != nil {
			return ""
		}
		return v4.String()[:8]
	}

	full := uuid.NewV5(uuid.NamespaceURL, strconv.FormatInt(t.Unix(), 10)+url)
	return t.Format("060102") + full.String()[:4]
}
