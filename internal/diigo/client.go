// Package diigo implements the authenticated HTTP client for the Diigo
// API v2, with bounded exponential-backoff retries and a typed error
// taxonomy. Every call reduces to either a JSON payload or an *Error;
// nothing escapes uncaught.
package diigo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/diigo-mcp/internal/logger"
	"github.com/MrSnakeDoc/diigo-mcp/internal/utils"
)

const userAgent = "diigo-mcp/0.1"

// Options configures a Client.
type Options struct {
	BaseURL  string // ex: https://secure.diigo.com/api/v2
	APIKey   string // injected as the "key" query parameter on every call
	Username string // Basic Auth user
	Password string // Basic Auth password

	Timeout     time.Duration // per-request timeout (default 10s)
	MaxRetries  int           // attempt budget for transient failures (default 3)
	BackoffBase float64       // wait = base^attempt seconds (default 2.0)

	Logger logger.Logger
	Sleep  func(time.Duration) // test hook, defaults to time.Sleep
}

// Client issues authenticated requests against the Diigo API.
type Client struct {
	baseURL     string
	apiKey      string
	username    string
	password    string
	maxRetries  int
	backoffBase float64
	http        *http.Client
	log         logger.Logger
	sleep       func(time.Duration)
}

// NewClient builds a Client, applying defaults for unset options.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("diigo: base URL is empty")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 3
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 2.0
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}

	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      opts.APIKey,
		username:    opts.Username,
		password:    opts.Password,
		maxRetries:  opts.MaxRetries,
		backoffBase: opts.BackoffBase,
		http:        &http.Client{Timeout: opts.Timeout},
		log:         opts.Logger,
		sleep:       opts.Sleep,
	}, nil
}

// Request performs one authenticated call with bounded retries.
//
// 200 responses yield the body as JSON (non-JSON bodies are wrapped as a
// {"message": ...} payload). 400 and 503 are retried with deterministic
// base^attempt backoff up to the attempt budget, as are network
// timeouts. 401, 403, 404 and any other status are terminal, as is any
// non-timeout transport fault.
func (c *Client) Request(ctx context.Context, method, endpoint string, query url.Values, form url.Values) (json.RawMessage, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("key", c.apiKey)

	fullURL := c.baseURL + "/" + endpoint + "?" + query.Encode()

	m := NewMachine(c.maxRetries, c.backoffBase)

	var (
		lastStatus int
		lastBody   string
		timedOut   bool
	)

	for m.State() == StateAttempting {
		attempt := m.Attempt()

		status, body, err := c.do(ctx, method, fullURL, form)
		if err != nil {
			if !isTimeout(err) {
				// Non-timeout transport faults short-circuit: retrying a
				// broken connection setup is pointless.
				m.Observe(DispositionTerminal)
				return nil, &Error{Kind: KindTransport, Message: fmt.Sprintf("Request failed: %v", err), Err: err}
			}
			timedOut = true
			c.log.Warnf("request timeout (attempt %d/%d)", attempt+1, c.maxRetries)
			if m.Observe(DispositionRetry) == StateAttempting {
				c.backOff(m, attempt)
			}
			continue
		}
		timedOut = false

		switch Classify(status) {
		case DispositionSuccess:
			m.Observe(DispositionSuccess)
			return successPayload(body), nil

		case DispositionTerminal:
			m.Observe(DispositionTerminal)
			return nil, terminalStatusError(status, string(body))

		case DispositionRetry:
			lastStatus, lastBody = status, string(body)
			c.log.Warnf("HTTP %d (attempt %d/%d): %s", status, attempt+1, c.maxRetries, lastBody)
			if m.Observe(DispositionRetry) == StateAttempting {
				c.backOff(m, attempt)
			}
		}
	}

	if m.State() == StateFailedExhausted {
		return nil, c.exhaustedError(timedOut, lastStatus, lastBody)
	}

	// Defensive fallback: the loop ended without an explicit return.
	return nil, &Error{Kind: KindTransient, Message: "Max retries exceeded"}
}

func (c *Client) backOff(m *Machine, attempt int) {
	wait := m.Backoff(attempt)
	c.log.Infof("retrying in %s...", wait)
	c.sleep(wait)
}

func (c *Client) exhaustedError(timedOut bool, status int, body string) *Error {
	if timedOut {
		return &Error{Kind: KindTransient, Message: fmt.Sprintf("Request timeout after %d attempts", c.maxRetries)}
	}
	if status == 503 {
		return &Error{Kind: KindTransient, Status: status, Message: fmt.Sprintf("Server busy after %d attempts: %s", c.maxRetries, body)}
	}
	return &Error{Kind: KindTransient, Status: status, Message: fmt.Sprintf("Request failed after %d attempts: %s", c.maxRetries, body)}
}

// do issues a single HTTP attempt and returns status and raw body.
func (c *Client) do(ctx context.Context, method, fullURL string, form url.Values) (int, []byte, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return 0, nil, err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("User-Agent", userAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer utils.Close(resp.Body)

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, b, nil
}

// successPayload returns the body as JSON, wrapping non-JSON responses
// as a message payload instead of failing (the API answers some POSTs
// with plain text).
func successPayload(body []byte) json.RawMessage {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	wrapped, _ := json.Marshal(map[string]string{"message": string(body)})
	return wrapped
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
