package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"volley-predict-system/models"
)

// SourceClient talks to the observation feed service — the collaborator that
// scrapes an arbitrary competition page into pre-parsed match observations.
// One call per group per sync cycle; failures are the caller's to isolate.
type SourceClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewSourceClient() *SourceClient {
	baseURL := os.Getenv("SOURCE_FEED_URL")
	if baseURL == "" {
		log.Fatal("SOURCE_FEED_URL environment variable is required")
	}
	token := os.Getenv("PREDICT_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("PREDICT_SERVICE_TOKEN environment variable is required for the observation feed")
	}
	return &SourceClient{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchObservations returns the matches currently reported for one
// competition page.
func (c *SourceClient) FetchObservations(ctx context.Context, sourceURL string) ([]models.MatchObservation, error) {
	u, err := url.Parse(fmt.Sprintf("%s/api/v1/observations", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed base URL: %w", err)
	}
	q := u.Query()
	q.Set("source", sourceURL)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call observation feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("observation feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Observations []models.MatchObservation `json:"observations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode observation feed response: %w", err)
	}
	return response.Observations, nil
}
