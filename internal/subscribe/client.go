package subscribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/metcalfc/trustfall/internal/faction"
)

// Path is where the endpoint is mounted.
const Path = "/api/subscribe"

var (
	// ErrMissingFields is returned when the server rejects an empty email or faction.
	ErrMissingFields = errors.New("email and faction are required")
	// ErrServerConfig is returned when the server lacks provider credentials.
	ErrServerConfig = errors.New("server configuration error")
)

// ResponseError is a non-200 answer from the endpoint.
type ResponseError struct {
	StatusCode int
	Message    string
	Details    json.RawMessage
}

func (e *ResponseError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("subscribe: %d %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("subscribe: %d %s", e.StatusCode, e.Message)
}

func (e *ResponseError) Unwrap() error {
	switch e.Message {
	case MsgMissingFields:
		return ErrMissingFields
	case MsgServerConfig:
		return ErrServerConfig
	}
	return nil
}

// Client submits signups to a running subscribe endpoint.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient creates a client for the site at baseURL.
func NewClient(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: client}
}

// Subscribe signs email up for the newsletter of f.
func (c *Client) Subscribe(ctx context.Context, email string, f faction.Faction) (*Response, error) {
	data, err := json.Marshal(Request{Email: email, Faction: f.String()})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+Path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	if err != nil {
		return nil, fmt.Errorf("subscribe: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error   string          `json:"error"`
			Details json.RawMessage `json:"details"`
		}
		if err := json.Unmarshal(body, &failure); err != nil || failure.Error == "" {
			failure.Error = http.StatusText(resp.StatusCode)
		}
		return nil, &ResponseError{StatusCode: resp.StatusCode, Message: failure.Error, Details: failure.Details}
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("subscribe: decode response: %w", err)
	}
	return &out, nil
}
