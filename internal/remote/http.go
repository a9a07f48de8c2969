package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gigtrack/gig/internal/models"
)

// Per-call timeout: a remote call that takes longer than this is treated as a
// network failure.
const defaultTimeout = 15 * time.Second

// Client is an HTTP adapter for the gig-server record API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New creates a record service client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: defaultTimeout},
	}
}

var _ Service = (*Client)(nil)

// apiError is the standard error body from the server.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

// CreateRecord creates a record remotely. A duplicate-ID conflict is reported
// as nil: the record already exists, so the create is already satisfied.
func (c *Client) CreateRecord(ctx context.Context, rec *models.TripRecord) error {
	err := c.do(ctx, "POST", "/v1/records", rec, nil)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.Code == "duplicate" {
			return nil
		}
	}
	return err
}

// UpdateRecord replaces the full record with the given ID.
func (c *Client) UpdateRecord(ctx context.Context, id string, rec *models.TripRecord) error {
	return c.do(ctx, "PUT", "/v1/records/"+url.PathEscape(id), rec, nil)
}

// DeleteRecord deletes the record with the given ID.
func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/v1/records/"+url.PathEscape(id), nil, nil)
}

// ListRecords fetches the full authoritative record list.
func (c *Client) ListRecords(ctx context.Context) ([]models.TripRecord, error) {
	var records []models.TripRecord
	if err := c.do(ctx, "GET", "/v1/records", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Ping hits the health endpoint to verify server reachability.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "GET", "/healthz", nil, nil)
}

// do executes one request and classifies the outcome into the sentinel
// taxonomy. Transport errors and 5xx responses are ErrUnreachable; 4xx
// responses are permanent (ErrRejected / ErrNotFound / ErrUnauthorized).
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnreachable, err)
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: HTTP %d", ErrUnreachable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		var apiErr apiError
		haveBody := json.Unmarshal(respBody, &apiErr) == nil && apiErr.Code != ""
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			if haveBody {
				return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
			}
			return ErrUnauthorized
		case http.StatusNotFound:
			if haveBody {
				return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
			}
			return ErrNotFound
		default:
			if haveBody {
				return fmt.Errorf("%w: %w", ErrRejected, &apiErr)
			}
			return fmt.Errorf("%w: HTTP %d: %s", ErrRejected, resp.StatusCode, string(respBody))
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
