package domain

import (
	"encoding/json"
	"time"
)

// TimeLayout is the timestamp format used by the Diigo API.
// Example: "2008/04/30 06:28:54 +0800"
const TimeLayout = "2006/01/02 15:04:05 -0700"

// Bookmark is a Diigo bookmark as it appears on the wire. The URL is the
// identity: the API has no separate ID field. Boolean-ish fields are the
// literal strings "yes"/"no".
type Bookmark struct {
	// Title is the bookmark title (required by the API).
	Title string `json:"title"`

	// URL is the unique key of the bookmark.
	URL string `json:"url"`

	// User is the owning Diigo account.
	User string `json:"user,omitempty"`

	// Desc is the free-form description.
	Desc string `json:"desc"`

	// Tags is the comma-joined tag list.
	Tags string `json:"tags"`

	// Shared is "yes" for public bookmarks, "no" for private.
	Shared string `json:"shared"`

	// ReadLater is "yes" when the bookmark is marked unread.
	ReadLater string `json:"readlater"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`

	// Annotations carries highlights and comments attached to the
	// bookmark. Opaque structured data, read-only through this server.
	Annotations []json.RawMessage `json:"annotations"`

	Comments []json.RawMessage `json:"comments,omitempty"`
}

// IsShared reports whether the wire value marks the bookmark public.
func (b Bookmark) IsShared() bool { return b.Shared == "yes" }

// IsReadLater reports whether the wire value marks the bookmark unread.
func (b Bookmark) IsReadLater() bool { return b.ReadLater == "yes" }

// Created parses the bookmark's creation timestamp.
func (b Bookmark) Created() (time.Time, error) {
	return time.Parse(TimeLayout, b.CreatedAt)
}

// Draft is the caller-supplied input for creating a bookmark.
type Draft struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Desc      string `json:"desc,omitempty"`
	Tags      string `json:"tags,omitempty"`
	Shared    bool   `json:"shared,omitempty"`
	ReadLater bool   `json:"read_later,omitempty"`
}

// UpdatePatch carries the fields of an update request. Nil means "keep
// the existing value"; the orchestrator assembles the full record before
// saving.
type UpdatePatch struct {
	Title     *string
	Desc      *string
	Tags      *string
	Shared    *bool
	ReadLater *bool
}

// BulkFailure records one failed item of a bulk create, in input order.
type BulkFailure struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
	Error string `json:"error"`
}

// BulkSummary is the outcome of a bulk create. Failures preserve the
// original input indices; a single failure never aborts the batch.
type BulkSummary struct {
	Total    int           `json:"total"`
	Success  int           `json:"success"`
	Failed   int           `json:"failed"`
	Failures []BulkFailure `json:"failures"`
}
