package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// HeaderFunc supplies the headers attached to every request, typically the
// session's Authorization header.
type HeaderFunc func() map[string]string

// Client issues GraphQL operations against the game server over HTTP.
type Client struct {
	endpoint string
	httpc    *http.Client
	headers  HeaderFunc
}

func NewClient(endpoint string, headers HeaderFunc) *Client {
	return &Client{
		endpoint: endpoint,
		httpc:    &http.Client{Timeout: defaultTimeout},
		headers:  headers,
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// do posts one operation and unmarshals the data payload into out.
func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.headers != nil {
		for k, v := range c.headers() {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("posting operation: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var gr gqlResponse
	if err := json.Unmarshal(data, &gr); err != nil {
		return fmt.Errorf("unmarshalling response: %w", err)
	}
	if len(gr.Errors) > 0 {
		slog.DebugContext(ctx, "graphql operation failed", "errors", len(gr.Errors))
		return &OperationError{Messages: messages(gr.Errors)}
	}

	if out != nil {
		if err := json.Unmarshal(gr.Data, out); err != nil {
			return fmt.Errorf("unmarshalling data: %w", err)
		}
	}

	return nil
}

func messages(errs []gqlError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}
