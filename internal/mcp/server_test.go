package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/diigo-mcp/internal/logger"
)

func runServer(t *testing.T, h *Handler, input string) []Response {
	t.Helper()

	var out bytes.Buffer
	srv := NewServerIO(h, strings.NewReader(input), &out, logger.New("error", false))
	if err := srv.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var responses []Response
	dec := json.NewDecoder(&out)
	for dec.More() {
		var resp Response
		if err := dec.Decode(&resp); err != nil {
			t.Fatalf("decode output: %v", err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func TestServerRunSequence(t *testing.T) {
	h := newTestHandler(t, emptyUpstream())

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"ping"}`,
	}, "\n") + "\n"

	responses := runServer(t, h, input)
	// The notification gets no reply.
	if len(responses) != 3 {
		t.Fatalf("responses = %d, want 3", len(responses))
	}
	for i, want := range []float64{1, 2, 3} {
		if id, _ := responses[i].ID.(float64); id != want {
			t.Errorf("response[%d].ID = %v, want %v", i, responses[i].ID, want)
		}
		if responses[i].JSONRPC != "2.0" {
			t.Errorf("response[%d].JSONRPC = %q", i, responses[i].JSONRPC)
		}
	}
}

func TestServerSkipsMalformedAndBlankLines(t *testing.T) {
	h := newTestHandler(t, emptyUpstream())

	input := strings.Join([]string{
		`this is not json`,
		``,
		`   `,
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
	}, "\n") + "\n"

	responses := runServer(t, h, input)
	if len(responses) != 1 {
		t.Fatalf("responses = %d, want 1 (bad lines skipped, loop alive)", len(responses))
	}
	if id, _ := responses[0].ID.(float64); id != 1 {
		t.Errorf("response.ID = %v, want 1", responses[0].ID)
	}
}

func TestServerOneLinePerResponse(t *testing.T) {
	h := newTestHandler(t, emptyUpstream())

	var out bytes.Buffer
	input := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n"
	srv := NewServerIO(h, strings.NewReader(input), &out, logger.New("error", false))
	if err := srv.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 1 {
		t.Errorf("output lines = %d, want exactly one line per response", len(lines))
	}
}

func TestServerStopsOnCancelledContext(t *testing.T) {
	h := newTestHandler(t, emptyUpstream())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	input := `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n"
	srv := NewServerIO(h, strings.NewReader(input), &out, logger.New("error", false))

	if err := srv.Run(ctx); err != context.Canceled {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want none after cancellation", out.String())
	}
}
