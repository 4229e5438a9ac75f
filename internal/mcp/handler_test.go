package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/diigo-mcp/internal/bookmarks"
	"github.com/MrSnakeDoc/diigo-mcp/internal/diigo"
	"github.com/MrSnakeDoc/diigo-mcp/internal/logger"
)

func newTestHandler(t *testing.T, upstream http.Handler) *Handler {
	t.Helper()

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	client, err := diigo.NewClient(diigo.Options{
		BaseURL:  srv.URL,
		APIKey:   "k",
		Username: "alice",
		Password: "secret",
		Logger:   logger.New("error", false),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	svc := bookmarks.New(bookmarks.Options{
		Client:      client,
		DefaultUser: "alice",
		Logger:      logger.New("error", false),
		Sleep:       func(d time.Duration) {},
	})
	return NewHandler(svc, logger.New("error", false))
}

func request(t *testing.T, id any, method, params string) Request {
	t.Helper()
	req := Request{JSONRPC: "2.0", ID: id, Method: method}
	if params != "" {
		req.Params = json.RawMessage(params)
	}
	return req
}

func emptyUpstream() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
}

func TestHandleInitialize(t *testing.T) {
	h := newTestHandler(t, emptyUpstream())

	resp := h.Handle(context.Background(), request(t, 1, "initialize", ""))
	if resp == nil || resp.Error != nil {
		t.Fatalf("resp = %+v, want result", resp)
	}

	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("result type = %T", resp.Result)
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion = %v", result["protocolVersion"])
	}
	info, _ := result["serverInfo"].(map[string]any)
	if info["name"] != "diigo-mcp-server" {
		t.Errorf("serverInfo = %v", result["serverInfo"])
	}
}

func TestHandlePing(t *testing.T) {
	h := newTestHandler(t, emptyUpstream())

	resp := h.Handle(context.Background(), request(t, "p1", "ping", ""))
	if resp == nil || resp.Error != nil {
		t.Fatalf("resp = %+v, want empty result", resp)
	}
	if resp.ID != "p1" {
		t.Errorf("id = %v, want echoed p1", resp.ID)
	}
}

func TestHandleToolsList(t *testing.T) {
	h := newTestHandler(t, emptyUpstream())

	resp := h.Handle(context.Background(), request(t, 2, "tools/list", ""))
	if resp == nil || resp.Error != nil {
		t.Fatalf("resp = %+v, want result", resp)
	}

	result, _ := resp.Result.(map[string]any)
	tools, _ := result["tools"].([]map[string]any)
	if len(tools) != 9 {
		t.Fatalf("len(tools) = %d, want 9", len(tools))
	}

	names := map[string]bool{}
	for _, tool := range tools {
		name, _ := tool["name"].(string)
		names[name] = true
		if tool["description"] == "" || tool["inputSchema"] == nil {
			t.Errorf("tool %q missing description or schema", name)
		}
	}
	for _, want := range []string{
		"diigo_list_bookmarks", "diigo_search_bookmarks", "diigo_get_bookmark",
		"diigo_create_bookmark", "diigo_update_bookmark", "diigo_delete_bookmark",
		"diigo_get_recent_bookmarks", "diigo_get_annotations", "diigo_bulk_create_bookmarks",
	} {
		if !names[want] {
			t.Errorf("missing tool %q", want)
		}
	}
}

func TestHandleNotificationGetsNoReply(t *testing.T) {
	h := newTestHandler(t, emptyUpstream())

	resp := h.Handle(context.Background(), Request{JSONRPC: "2.0", Method: "notifications/initialized"})
	if resp != nil {
		t.Errorf("resp = %+v, want nil for a notification", resp)
	}
}

func TestHandleBadVersion(t *testing.T) {
	h := newTestHandler(t, emptyUpstream())

	resp := h.Handle(context.Background(), Request{JSONRPC: "1.0", ID: 1, Method: "ping"})
	if resp == nil || resp.Error == nil || resp.Error.Code != codeInvalidRequest {
		t.Errorf("resp = %+v, want invalid request error", resp)
	}
}

func TestHandleMethodNotFound(t *testing.T) {
	h := newTestHandler(t, emptyUpstream())

	resp := h.Handle(context.Background(), request(t, 3, "resources/list", ""))
	if resp == nil || resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Errorf("resp = %+v, want method not found", resp)
	}
}

func TestHandleUnknownTool(t *testing.T) {
	h := newTestHandler(t, emptyUpstream())

	resp := h.Handle(context.Background(), request(t, 4, "tools/call", `{"name":"diigo_frobnicate","arguments":{}}`))
	if resp == nil || resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Errorf("resp = %+v, want invalid params for unknown tool", resp)
	}
}

// toolText extracts the single text content block of a tools/call result.
func toolText(t *testing.T, resp *Response) string {
	t.Helper()
	if resp == nil {
		t.Fatal("resp is nil")
	}
	if resp.Error != nil {
		t.Fatalf("resp error = %+v, want result", resp.Error)
	}
	result, _ := resp.Result.(map[string]any)
	content, _ := result["content"].([]map[string]any)
	if len(content) != 1 {
		t.Fatalf("content = %v, want one text block", result["content"])
	}
	text, _ := content[0]["text"].(string)
	return text
}

func TestToolsCallListBookmarks(t *testing.T) {
	h := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"title":"One","url":"https://example.com/1","tags":"go,web","created_at":"2008/04/30 06:28:54 +0800"}]`))
	}))

	resp := h.Handle(context.Background(), request(t, 5, "tools/call",
		`{"name":"diigo_list_bookmarks","arguments":{"count":10}}`))

	var got []map[string]any
	if err := json.Unmarshal([]byte(toolText(t, resp)), &got); err != nil {
		t.Fatalf("unmarshal tool text: %v", err)
	}
	if len(got) != 1 || got[0]["title"] != "One" {
		t.Fatalf("got = %v, want the single bookmark", got)
	}
	tags, _ := got[0]["tags_list"].([]any)
	if len(tags) != 2 {
		t.Errorf("tags_list = %v, want parsed tags", got[0]["tags_list"])
	}
	if id, _ := got[0]["generated_id"].(string); id == "" {
		t.Errorf("generated_id missing from formatted output")
	}
}

func TestToolsCallErrorsStayInPayload(t *testing.T) {
	h := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))

	resp := h.Handle(context.Background(), request(t, 6, "tools/call",
		`{"name":"diigo_list_bookmarks","arguments":{}}`))

	// Upstream failures are data, not protocol errors.
	if resp.Error != nil {
		t.Fatalf("resp error = %+v, want error carried in the text payload", resp.Error)
	}

	var payload map[string]string
	if err := json.Unmarshal([]byte(toolText(t, resp)), &payload); err != nil {
		t.Fatalf("unmarshal tool text: %v", err)
	}
	if !strings.Contains(payload["error"], "Authentication failed") {
		t.Errorf("payload = %v, want authentication failure message", payload)
	}
}

func TestToolsCallMissingRequiredArgs(t *testing.T) {
	h := newTestHandler(t, emptyUpstream())

	tests := []struct {
		name string
		call string
		want string
	}{
		{"search without query", `{"name":"diigo_search_bookmarks","arguments":{}}`, "query is required"},
		{"get without url", `{"name":"diigo_get_bookmark","arguments":{}}`, "url is required"},
		{"create without title", `{"name":"diigo_create_bookmark","arguments":{"url":"https://example.com"}}`, "url and title are required"},
		{"delete without url", `{"name":"diigo_delete_bookmark","arguments":{}}`, "url is required"},
		{"bulk without array", `{"name":"diigo_bulk_create_bookmarks","arguments":{}}`, "bookmarks array is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.Handle(context.Background(), request(t, 7, "tools/call", tt.call))
			var payload map[string]string
			if err := json.Unmarshal([]byte(toolText(t, resp)), &payload); err != nil {
				t.Fatalf("unmarshal tool text: %v", err)
			}
			if payload["error"] != tt.want {
				t.Errorf("error = %q, want %q", payload["error"], tt.want)
			}
		})
	}
}

func TestToolsCallCreateBookmark(t *testing.T) {
	var form map[string]string
	h := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Write([]byte(`{"message":"Saved 1 bookmark(s)","code":1}`))
	}))

	resp := h.Handle(context.Background(), request(t, 8, "tools/call",
		`{"name":"diigo_create_bookmark","arguments":{"url":"https://example.com/x","title":"X","shared":true,"tags":"a,b"}}`))

	text := toolText(t, resp)
	if !strings.Contains(text, "Saved 1 bookmark(s)") {
		t.Errorf("text = %q, want upstream payload passed through", text)
	}
	if form["shared"] != "yes" || form["readLater"] != "no" || form["merge"] != "no" {
		t.Errorf("form = %v, want normalized wire values", form)
	}
}

func TestToolsCallBulkCreate(t *testing.T) {
	h := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"saved"}`))
	}))

	resp := h.Handle(context.Background(), request(t, 9, "tools/call",
		`{"name":"diigo_bulk_create_bookmarks","arguments":{"bookmarks":[{"url":"https://example.com/a","title":"a"},{"url":"bogus","title":"b"}],"delay":0}}`))

	var summary map[string]any
	if err := json.Unmarshal([]byte(toolText(t, resp)), &summary); err != nil {
		t.Fatalf("unmarshal tool text: %v", err)
	}
	if summary["total"] != float64(2) || summary["success"] != float64(1) || summary["failed"] != float64(1) {
		t.Errorf("summary = %v, want total 2 / success 1 / failed 1", summary)
	}
}

func TestToolsCallUpdateOnlyPatchesGivenFields(t *testing.T) {
	var form map[string]string
	h := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`[{"title":"Old","url":"https://example.com/x","desc":"keep","tags":"keep","shared":"no","readlater":"yes"}]`))
			return
		}
		_ = r.ParseForm()
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Write([]byte(`{"message":"updated"}`))
	}))

	h.Handle(context.Background(), request(t, 10, "tools/call",
		`{"name":"diigo_update_bookmark","arguments":{"url":"https://example.com/x","title":"New"}}`))

	if form["title"] != "New" {
		t.Errorf("title = %q, want patched value", form["title"])
	}
	if form["desc"] != "keep" || form["tags"] != "keep" || form["shared"] != "no" || form["readLater"] != "yes" {
		t.Errorf("form = %v, want untouched fields preserved from the existing record", form)
	}
	if form["merge"] != "yes" {
		t.Errorf("merge = %q, want yes on update", form["merge"])
	}
}
