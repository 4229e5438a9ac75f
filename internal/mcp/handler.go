// Package mcp adapts tool invocations arriving as JSON-RPC into calls on
// the bookmark orchestrator and serializes the results. It performs
// protocol framing only; all Diigo semantics live in internal/bookmarks.
package mcp

import (
	"context"
	"encoding/json"

	"github.com/MrSnakeDoc/diigo-mcp/internal/bookmarks"
	"github.com/MrSnakeDoc/diigo-mcp/internal/logger"
	"github.com/MrSnakeDoc/diigo-mcp/internal/version"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "diigo-mcp-server"
)

// Handler dispatches JSON-RPC requests. It is shared by the stdio and
// HTTP transports and holds no per-request state.
type Handler struct {
	svc *bookmarks.Service
	log logger.Logger
}

// NewHandler builds a Handler around the orchestrator.
func NewHandler(svc *bookmarks.Service, log logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Handle processes one request and returns the response, or nil for
// notifications (requests without an id), which get no reply.
func (h *Handler) Handle(ctx context.Context, req Request) *Response {
	if req.JSONRPC != "2.0" {
		return rpcErr(req.ID, codeInvalidRequest, "Invalid request: jsonrpc must be 2.0")
	}
	if req.ID == nil {
		// notifications/initialized, notifications/cancelled -- nothing to do
		return nil
	}

	switch req.Method {
	case "initialize":
		return h.handleInitialize(req)
	case "ping":
		return rpcResult(req.ID, map[string]any{})
	case "tools/list":
		return rpcResult(req.ID, map[string]any{"tools": toolDefinitions()})
	case "tools/call":
		return h.handleToolsCall(ctx, req)
	default:
		return rpcErr(req.ID, codeMethodNotFound, "Method not found: "+req.Method)
	}
}

func (h *Handler) handleInitialize(req Request) *Response {
	return rpcResult(req.ID, map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{"tools": map[string]any{}},
		"serverInfo": map[string]any{
			"name":    serverName,
			"version": version.Version,
		},
	})
}

func (h *Handler) handleToolsCall(ctx context.Context, req Request) *Response {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return rpcErr(req.ID, codeInvalidParams, "Invalid params: "+err.Error())
	}

	h.log.Info("tool call", logger.String("tool", params.Name))

	text, ok := h.callTool(ctx, params.Name, params.Arguments)
	if !ok {
		return rpcErr(req.ID, codeInvalidParams, "Unknown tool: "+params.Name)
	}

	return rpcResult(req.ID, map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
	})
}
