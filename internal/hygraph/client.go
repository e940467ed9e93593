package hygraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agape-academy/academy-api/pkg/config"
)

// Client issues GraphQL operations against the Hygraph endpoint. Every call
// carries the configured timeout; a hung upstream must never block a request
// indefinitely.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	logger   *zap.Logger
	observer Observer
}

// Observer receives timing for every upstream operation.
type Observer interface {
	ObserveUpstream(operation string, duration time.Duration, err error)
}

// SetObserver wires metrics collection. Safe to leave unset.
func (c *Client) SetObserver(o Observer) {
	c.observer = o
}

// NewClient builds a Hygraph client from config.
func NewClient(cfg config.HygraphConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// Do executes the operation and unmarshals the `data` object into dest.
func (c *Client) Do(ctx context.Context, query string, variables map[string]interface{}, dest interface{}) error {
	start := time.Now()
	err := c.do(ctx, query, variables, dest)
	if c.observer != nil {
		c.observer.ObserveUpstream(operationName(query), time.Since(start), err)
	}
	return err
}

func (c *Client) do(ctx context.Context, query string, variables map[string]interface{}, dest interface{}) error {
	payload, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call hygraph: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read hygraph response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("hygraph request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("operation", operationName(query)))
		return fmt.Errorf("hygraph returned status %d", resp.StatusCode)
	}

	var decoded gqlResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("decode hygraph response: %w", err)
	}

	if len(decoded.Errors) > 0 {
		messages := make([]string, len(decoded.Errors))
		for i, e := range decoded.Errors {
			messages[i] = e.Message
		}
		c.logger.Warn("hygraph operation returned errors",
			zap.Strings("errors", messages),
			zap.String("operation", operationName(query)))
		return fmt.Errorf("hygraph errors: %s", strings.Join(messages, "; "))
	}

	if dest == nil || len(decoded.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(decoded.Data, dest); err != nil {
		return fmt.Errorf("unmarshal hygraph data: %w", err)
	}
	return nil
}

// operationName extracts the document name for logging, e.g.
// "query GetBlogPosts(..." -> "GetBlogPosts".
func operationName(query string) string {
	fields := strings.Fields(query)
	if len(fields) < 2 {
		return "unknown"
	}
	name := fields[1]
	if i := strings.IndexAny(name, "({"); i > 0 {
		name = name[:i]
	}
	return name
}
