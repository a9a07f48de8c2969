// Package analyze asks the AI proxy for insights over the user's trip
// history. The proxy holds the model credentials; the client only ever sends
// record data. Analysis is a premium feature.
package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gigtrack/gig/internal/models"
)

// ErrPremiumRequired is returned when the current account lacks premium
// entitlement.
var ErrPremiumRequired = errors.New("analysis requires a premium account")

const defaultTimeout = 60 * time.Second

// Client calls the analysis proxy endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New creates an analysis client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: defaultTimeout},
	}
}

type analyzeRequest struct {
	Type    string         `json:"type"`
	Payload analyzePayload `json:"payload"`
}

type analyzePayload struct {
	Records  []models.TripRecord `json:"records"`
	Settings models.Settings     `json:"settings"`
}

type analyzeResponse struct {
	Insight string `json:"insight"`
	Error   string `json:"error,omitempty"`
}

// Records sends the trip history to the proxy and returns the generated
// insight text. The premium gate is enforced server-side as well; checking
// locally just gives a clearer message without a round trip.
func (c *Client) Records(ctx context.Context, records []models.TripRecord, settings models.Settings, premium bool) (string, error) {
	if !premium {
		return "", ErrPremiumRequired
	}
	if len(records) == 0 {
		return "", errors.New("no records to analyze")
	}

	body, err := json.Marshal(analyzeRequest{
		Type:    "analyzeRecords",
		Payload: analyzePayload{Records: records, Settings: settings},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("analysis service unreachable: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusForbidden {
		return "", ErrPremiumRequired
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("analysis failed: HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var out analyzeResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("analysis failed: %s", out.Error)
	}
	return out.Insight, nil
}
