package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIProvider queries the availability endpoint of the GPU cloud API.
type APIProvider struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewAPIProvider(baseURL, token string, timeout time.Duration) (*APIProvider, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("pricing API base URL is empty")
	}

	return &APIProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   strings.TrimSpace(token),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (p *APIProvider) Availability(ctx context.Context, gpuType string) (map[string][]Offer, error) {
	u, err := p.AvailabilityURL(gpuType)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request availability API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("availability API returned %s", resp.Status)
	}

	var out map[string][]Offer
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func (p *APIProvider) AvailabilityURL(gpuType string) (string, error) {
	u, err := url.Parse(p.baseURL + "/api/v1/availability/")
	if err != nil {
		return "", fmt.Errorf("build availability URL: %w", err)
	}

	q := u.Query()
	q.Set("gpu_type", gpuType)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (p *APIProvider) Source() string {
	return "api"
}
