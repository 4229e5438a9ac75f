package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/MrSnakeDoc/diigo-mcp/internal/logger"
)

// maxLineSize bounds one JSON-RPC frame; bulk creates can carry large
// bookmark arrays.
const maxLineSize = 10 * 1024 * 1024

// Server runs the line-delimited JSON-RPC loop over stdio: one request
// per input line, one response per output line, processed synchronously.
type Server struct {
	handler *Handler
	in      io.Reader
	out     io.Writer
	log     logger.Logger
}

// NewServer builds a stdio server reading stdin and writing stdout.
func NewServer(handler *Handler, log logger.Logger) *Server {
	return &Server{
		handler: handler,
		in:      os.Stdin,
		out:     os.Stdout,
		log:     log,
	}
}

// NewServerIO builds a server over arbitrary streams (used in tests).
func NewServerIO(handler *Handler, in io.Reader, out io.Writer, log logger.Logger) *Server {
	return &Server{handler: handler, in: in, out: out, log: log}
}

// Run processes input until EOF or context cancellation. A malformed
// line is logged and skipped; it never aborts the loop or its siblings.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	enc := json.NewEncoder(s.out)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("invalid JSON-RPC line, skipping", logger.Error(err))
			continue
		}

		resp := s.handler.Handle(ctx, req)
		if resp == nil {
			continue // notification, no reply
		}

		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}
