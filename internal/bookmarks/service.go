// Package bookmarks orchestrates Diigo operations on top of the retry
// client: pagination to completion, client-side search, read-modify-write
// updates, and rate-limited bulk creation. It never issues raw I/O itself.
package bookmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/diigo-mcp/internal/diigo"
	"github.com/MrSnakeDoc/diigo-mcp/internal/domain"
	"github.com/MrSnakeDoc/diigo-mcp/internal/logger"
	"github.com/MrSnakeDoc/diigo-mcp/internal/params"
)

const endpointBookmarks = "bookmarks"

// Cache holds bookmark lists between invocations. Implementations are
// optional; a nil Cache disables caching entirely.
type Cache interface {
	GetList(ctx context.Context, key string) ([]domain.Bookmark, bool)
	SetList(ctx context.Context, key string, list []domain.Bookmark)
	InvalidateUser(ctx context.Context, user string)
}

// PageOptions selects one bounded page of bookmarks.
type PageOptions struct {
	User     string // empty = configured default user
	Start    int
	Count    int // clamped to the server page cap; <=0 = full page
	Sort     int
	Tags     string // comma-separated tag filter
	Filter   string // "all" or "public"
	ListName string
}

// ListOptions filters a full fetch (pagination handled internally).
type ListOptions struct {
	User     string
	Sort     int
	Tags     string
	Filter   string
	ListName string
}

// Options configures a Service.
type Options struct {
	Client      *diigo.Client
	DefaultUser string
	PageSize    int           // server-advertised max per request
	BulkDelay   time.Duration // default delay between bulk saves
	Cache       Cache         // nil = caching disabled
	Logger      logger.Logger
	Sleep       func(time.Duration) // test hook, defaults to time.Sleep
}

// Service is the bookmark orchestrator.
type Service struct {
	client      *diigo.Client
	defaultUser string
	pageSize    int
	bulkDelay   time.Duration
	cache       Cache
	log         logger.Logger
	sleep       func(time.Duration)
}

// New builds a Service.
func New(opts Options) *Service {
	if opts.PageSize < 1 {
		opts.PageSize = 100
	}
	if opts.BulkDelay <= 0 {
		opts.BulkDelay = 500 * time.Millisecond
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	return &Service{
		client:      opts.Client,
		defaultUser: opts.DefaultUser,
		pageSize:    opts.PageSize,
		bulkDelay:   opts.BulkDelay,
		cache:       opts.Cache,
		log:         opts.Logger,
		sleep:       opts.Sleep,
	}
}

// FetchPage retrieves one bounded page. Count is clamped to the server
// page cap regardless of what the caller asks for.
func (s *Service) FetchPage(ctx context.Context, opts PageOptions) ([]domain.Bookmark, error) {
	user := opts.User
	if user == "" {
		user = s.defaultUser
	}
	count := opts.Count
	if count <= 0 || count > s.pageSize {
		count = s.pageSize
	}
	filter := opts.Filter
	if filter == "" {
		filter = "all"
	}

	query := url.Values{}
	query.Set("user", user)
	query.Set("start", strconv.Itoa(opts.Start))
	query.Set("count", strconv.Itoa(count))
	query.Set("sort", strconv.Itoa(opts.Sort))
	query.Set("filter", filter)
	if opts.Tags != "" {
		query.Set("tags", opts.Tags)
	}
	if opts.ListName != "" {
		query.Set("list", opts.ListName)
	}

	payload, err := s.client.Request(ctx, http.MethodGet, endpointBookmarks, query, nil)
	if err != nil {
		return nil, err
	}

	var page []domain.Bookmark
	if err := json.Unmarshal(payload, &page); err != nil {
		// The API answers some list calls with a plain message object;
		// treat anything that is not a list as "no bookmarks".
		return []domain.Bookmark{}, nil
	}
	return page, nil
}

// FetchAll paginates to completion: pages of the server page size until
// a short or empty page. Page errors propagate immediately; there is no
// retrying at this layer, the client already did that.
func (s *Service) FetchAll(ctx context.Context, opts ListOptions) ([]domain.Bookmark, error) {
	user := opts.User
	if user == "" {
		user = s.defaultUser
	}

	key := listCacheKey(user, opts)
	if s.cache != nil {
		if list, ok := s.cache.GetList(ctx, key); ok {
			return list, nil
		}
	}

	all := []domain.Bookmark{}
	start := 0
	for {
		page, err := s.FetchPage(ctx, PageOptions{
			User:     user,
			Start:    start,
			Count:    s.pageSize,
			Sort:     opts.Sort,
			Tags:     opts.Tags,
			Filter:   opts.Filter,
			ListName: opts.ListName,
		})
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		if len(page) < s.pageSize {
			break
		}
		start += s.pageSize
	}

	if s.cache != nil {
		s.cache.SetList(ctx, key, all)
	}
	return all, nil
}

// Search fetches everything and keeps bookmarks whose title or
// description contains the query as a case-insensitive substring. This
// is client-side filtering: the API has no full-text search, so this is
// an approximation with no relevance ranking.
func (s *Service) Search(ctx context.Context, query string, opts ListOptions) ([]domain.Bookmark, error) {
	all, err := s.FetchAll(ctx, opts)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	matches := []domain.Bookmark{}
	for _, b := range all {
		if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Desc), q) {
			matches = append(matches, b)
		}
	}
	return matches, nil
}

// FindByURL fetches the full set and scans for exact URL equality. No
// normalization: trailing slashes, case, and query ordering all matter.
func (s *Service) FindByURL(ctx context.Context, bookmarkURL, user string) (domain.Bookmark, error) {
	all, err := s.FetchAll(ctx, ListOptions{User: user})
	if err != nil {
		return domain.Bookmark{}, err
	}
	for _, b := range all {
		if b.URL == bookmarkURL {
			return b, nil
		}
	}
	return domain.Bookmark{}, diigo.NewNotFoundError("Bookmark not found: %s", bookmarkURL)
}

// Create saves a new bookmark with merge disabled: the upstream treats
// the call as a new/overwrite entry, not a field-preserving update. An
// invalid URL fails fast without any network call.
func (s *Service) Create(ctx context.Context, draft domain.Draft) (json.RawMessage, error) {
	if !params.ValidURL(draft.URL) {
		return nil, diigo.NewValidationError("Invalid URL: %s", draft.URL)
	}

	payload, err := s.save(ctx, draft, false)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, s.defaultUser)
	return payload, nil
}

// Update performs a read-modify-write merge: every field comes from the
// patch when provided, else from the existing record, so the save always
// carries a complete title/desc/tags/shared/readLater payload. Merge is
// enabled upstream as well, preserving annotations.
func (s *Service) Update(ctx context.Context, bookmarkURL string, patch domain.UpdatePatch) (json.RawMessage, error) {
	if !params.ValidURL(bookmarkURL) {
		return nil, diigo.NewValidationError("Invalid URL: %s", bookmarkURL)
	}

	existing, err := s.FindByURL(ctx, bookmarkURL, "")
	if err != nil {
		return nil, err
	}

	merged := domain.Draft{
		URL:       bookmarkURL,
		Title:     existing.Title,
		Desc:      existing.Desc,
		Tags:      existing.Tags,
		Shared:    existing.IsShared(),
		ReadLater: existing.IsReadLater(),
	}
	if patch.Title != nil {
		merged.Title = *patch.Title
	}
	if patch.Desc != nil {
		merged.Desc = *patch.Desc
	}
	if patch.Tags != nil {
		merged.Tags = *patch.Tags
	}
	if patch.Shared != nil {
		merged.Shared = *patch.Shared
	}
	if patch.ReadLater != nil {
		merged.ReadLater = *patch.ReadLater
	}

	payload, err := s.save(ctx, merged, true)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, s.defaultUser)
	return payload, nil
}

// Delete removes a bookmark. The upstream endpoint requires title and
// URL jointly, so a missing title is resolved by scanning the full set
// first.
func (s *Service) Delete(ctx context.Context, bookmarkURL, title string) (json.RawMessage, error) {
	if title == "" {
		existing, err := s.FindByURL(ctx, bookmarkURL, "")
		if err != nil {
			return nil, err
		}
		title = existing.Title
	}

	form := url.Values{}
	form.Set("url", bookmarkURL)
	form.Set("title", title)

	payload, err := s.client.Request(ctx, http.MethodPost, endpointBookmarks, nil, form)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, s.defaultUser)
	return payload, nil
}

// BulkCreate saves items strictly sequentially, sleeping delay between
// calls (never after the last item) to respect upstream per-second rate
// limits. One item's failure never aborts the batch; failures keep their
// original input index.
func (s *Service) BulkCreate(ctx context.Context, items []domain.Draft, delay time.Duration) domain.BulkSummary {
	if delay < 0 {
		delay = s.bulkDelay
	}

	summary := domain.BulkSummary{Total: len(items), Failures: []domain.BulkFailure{}}
	for i, item := range items {
		if err := s.bulkSaveOne(ctx, item); err != nil {
			summary.Failures = append(summary.Failures, domain.BulkFailure{
				Index: i,
				URL:   item.URL,
				Error: err.Error(),
			})
		} else {
			summary.Success++
		}

		if i < len(items)-1 {
			s.sleep(delay)
		}
	}
	summary.Failed = len(summary.Failures)

	if summary.Success > 0 {
		s.invalidate(ctx, s.defaultUser)
	}
	return summary
}

func (s *Service) bulkSaveOne(ctx context.Context, item domain.Draft) error {
	if !params.ValidURL(item.URL) {
		return diigo.NewValidationError("Invalid URL: %s", item.URL)
	}
	_, err := s.save(ctx, item, false)
	return err
}

// Recent returns one page of the most recently updated bookmarks.
func (s *Service) Recent(ctx context.Context, count int, user string) ([]domain.Bookmark, error) {
	if count <= 0 {
		count = 50
	}
	return s.FetchPage(ctx, PageOptions{
		User:  user,
		Count: count,
		Sort:  params.SortUpdated,
	})
}

// Annotations returns the annotations attached to the bookmark with the
// given URL.
func (s *Service) Annotations(ctx context.Context, bookmarkURL, user string) ([]json.RawMessage, error) {
	b, err := s.FindByURL(ctx, bookmarkURL, user)
	if err != nil {
		return nil, err
	}
	if b.Annotations == nil {
		return []json.RawMessage{}, nil
	}
	return b.Annotations, nil
}

// save posts a complete bookmark record. merge=false means new/overwrite,
// merge=true preserves upstream fields not carried in the form.
func (s *Service) save(ctx context.Context, draft domain.Draft, merge bool) (json.RawMessage, error) {
	form := url.Values{}
	form.Set("url", draft.URL)
	form.Set("title", draft.Title)
	form.Set("desc", draft.Desc)
	form.Set("tags", draft.Tags)
	form.Set("shared", params.Bool(draft.Shared))
	form.Set("readLater", params.Bool(draft.ReadLater))
	form.Set("merge", params.Bool(merge))

	return s.client.Request(ctx, http.MethodPost, endpointBookmarks, nil, form)
}

func (s *Service) invalidate(ctx context.Context, user string) {
	if s.cache != nil {
		s.cache.InvalidateUser(ctx, user)
	}
}

func listCacheKey(user string, opts ListOptions) string {
	return fmt.Sprintf("%s|%d|%s|%s|%s", user, opts.Sort, opts.Tags, opts.Filter, opts.ListName)
}
