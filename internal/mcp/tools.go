package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MrSnakeDoc/diigo-mcp/internal/bookmarks"
	"github.com/MrSnakeDoc/diigo-mcp/internal/domain"
	"github.com/MrSnakeDoc/diigo-mcp/internal/params"
)

// callTool routes one tool invocation. The second return is false only
// for unknown tool names; every other failure is serialized into the
// text payload itself so the caller sees exactly one error shape.
func (h *Handler) callTool(ctx context.Context, name string, args map[string]any) (string, bool) {
	switch name {
	case "diigo_list_bookmarks":
		return h.toolListBookmarks(ctx, args), true
	case "diigo_search_bookmarks":
		return h.toolSearchBookmarks(ctx, args), true
	case "diigo_get_bookmark":
		return h.toolGetBookmark(ctx, args), true
	case "diigo_create_bookmark":
		return h.toolCreateBookmark(ctx, args), true
	case "diigo_update_bookmark":
		return h.toolUpdateBookmark(ctx, args), true
	case "diigo_delete_bookmark":
		return h.toolDeleteBookmark(ctx, args), true
	case "diigo_get_recent_bookmarks":
		return h.toolGetRecentBookmarks(ctx, args), true
	case "diigo_get_annotations":
		return h.toolGetAnnotations(ctx, args), true
	case "diigo_bulk_create_bookmarks":
		return h.toolBulkCreateBookmarks(ctx, args), true
	default:
		return "", false
	}
}

func (h *Handler) toolListBookmarks(ctx context.Context, args map[string]any) string {
	sort := params.SortKey(args["sort"])
	filter := params.VisibilityFilter(str(args, "filter"))

	// Omitting count means "everything", with auto-pagination.
	if _, ok := args["count"]; !ok {
		all, err := h.svc.FetchAll(ctx, bookmarks.ListOptions{
			User:     str(args, "user"),
			Sort:     sort,
			Tags:     str(args, "tags"),
			Filter:   filter,
			ListName: str(args, "list_name"),
		})
		if err != nil {
			return errText(err)
		}
		return jsonText(domain.FormatAll(all))
	}

	page, err := h.svc.FetchPage(ctx, bookmarks.PageOptions{
		User:     str(args, "user"),
		Start:    intVal(args, "start", 0),
		Count:    intVal(args, "count", 0),
		Sort:     sort,
		Tags:     str(args, "tags"),
		Filter:   filter,
		ListName: str(args, "list_name"),
	})
	if err != nil {
		return errText(err)
	}
	return jsonText(domain.FormatAll(page))
}

func (h *Handler) toolSearchBookmarks(ctx context.Context, args map[string]any) string {
	query := str(args, "query")
	if query == "" {
		return errMsg("query is required")
	}

	matches, err := h.svc.Search(ctx, query, bookmarks.ListOptions{
		User:   str(args, "user"),
		Tags:   str(args, "tags"),
		Filter: params.VisibilityFilter(str(args, "filter")),
	})
	if err != nil {
		return errText(err)
	}
	return jsonText(domain.FormatAll(matches))
}

func (h *Handler) toolGetBookmark(ctx context.Context, args map[string]any) string {
	url := str(args, "url")
	if url == "" {
		return errMsg("url is required")
	}

	b, err := h.svc.FindByURL(ctx, url, str(args, "user"))
	if err != nil {
		return errText(err)
	}
	return jsonText(domain.Format(b))
}

func (h *Handler) toolCreateBookmark(ctx context.Context, args map[string]any) string {
	url := str(args, "url")
	title := str(args, "title")
	if url == "" || title == "" {
		return errMsg("url and title are required")
	}

	payload, err := h.svc.Create(ctx, domain.Draft{
		URL:       url,
		Title:     title,
		Desc:      str(args, "desc"),
		Tags:      str(args, "tags"),
		Shared:    boolVal(args, "shared"),
		ReadLater: boolVal(args, "read_later"),
	})
	if err != nil {
		return errText(err)
	}
	return string(payload)
}

func (h *Handler) toolUpdateBookmark(ctx context.Context, args map[string]any) string {
	url := str(args, "url")
	if url == "" {
		return errMsg("url is required")
	}

	var patch domain.UpdatePatch
	if v, ok := args["title"]; ok {
		s, _ := v.(string)
		patch.Title = &s
	}
	if v, ok := args["desc"]; ok {
		s, _ := v.(string)
		patch.Desc = &s
	}
	if v, ok := args["tags"]; ok {
		s, _ := v.(string)
		patch.Tags = &s
	}
	if _, ok := args["shared"]; ok {
		b := boolVal(args, "shared")
		patch.Shared = &b
	}
	if _, ok := args["read_later"]; ok {
		b := boolVal(args, "read_later")
		patch.ReadLater = &b
	}

	payload, err := h.svc.Update(ctx, url, patch)
	if err != nil {
		return errText(err)
	}
	return string(payload)
}

func (h *Handler) toolDeleteBookmark(ctx context.Context, args map[string]any) string {
	url := str(args, "url")
	if url == "" {
		return errMsg("url is required")
	}

	payload, err := h.svc.Delete(ctx, url, str(args, "title"))
	if err != nil {
		return errText(err)
	}
	return string(payload)
}

func (h *Handler) toolGetRecentBookmarks(ctx context.Context, args map[string]any) string {
	recent, err := h.svc.Recent(ctx, intVal(args, "count", 50), str(args, "user"))
	if err != nil {
		return errText(err)
	}
	return jsonText(domain.FormatAll(recent))
}

func (h *Handler) toolGetAnnotations(ctx context.Context, args map[string]any) string {
	url := str(args, "url")
	if url == "" {
		return errMsg("url is required")
	}

	annotations, err := h.svc.Annotations(ctx, url, str(args, "user"))
	if err != nil {
		return errText(err)
	}
	return jsonText(annotations)
}

func (h *Handler) toolBulkCreateBookmarks(ctx context.Context, args map[string]any) string {
	raw, ok := args["bookmarks"].([]any)
	if !ok {
		return errMsg("bookmarks array is required")
	}

	items := make([]domain.Draft, 0, len(raw))
	for _, entry := range raw {
		m, _ := entry.(map[string]any)
		items = append(items, domain.Draft{
			URL:       str(m, "url"),
			Title:     str(m, "title"),
			Desc:      str(m, "desc"),
			Tags:      str(m, "tags"),
			Shared:    boolVal(m, "shared"),
			ReadLater: boolVal(m, "read_later"),
		})
	}

	delay := time.Duration(floatVal(args, "delay", 0.5) * float64(time.Second))
	summary := h.svc.BulkCreate(ctx, items, delay)
	return jsonText(summary)
}

// --- serialization helpers ---

func jsonText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return errMsg("failed to serialize result: " + err.Error())
	}
	return string(b)
}

// errText turns an orchestrator error into the {"error": ...} payload
// the tools have always produced; failures never surface as JSON-RPC
// protocol errors.
func errText(err error) string {
	return errMsg(err.Error())
}

func errMsg(msg string) string {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return string(b)
}

// --- argument helpers ---

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func intVal(m map[string]any, key string, def int) int {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		case json.Number:
			i, _ := n.Int64()
			return int(i)
		}
	}
	return def
}

func floatVal(m map[string]any, key string, def float64) float64 {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case json.Number:
			f, _ := n.Float64()
			return f
		}
	}
	return def
}

// boolVal tolerates booleans and loose string forms ("yes", "1", ...),
// matching the normalizer's affirmative set.
func boolVal(m map[string]any, key string) bool {
	if v, ok := m[key]; ok {
		return params.Bool(v) == "yes"
	}
	return false
}
