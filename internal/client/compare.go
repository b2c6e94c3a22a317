package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/xiantools/sbt-sync/internal/model"
)

// CompareClient is a client for the off-chain compare backend
type CompareClient struct {
	baseURL string
	client  *http.Client
}

// NewCompareClient creates a new compare backend client
func NewCompareClient(baseURL string) *CompareClient {
	return &CompareClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CompareTraits fetches the off-chain/on-chain comparison for one address
func (c *CompareClient) CompareTraits(ctx context.Context, address string) (*model.ComparisonResult, error) {
	reqURL := fmt.Sprintf("%s/api/compare_traits?address=%s", c.baseURL, url.QueryEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build compare request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comparison: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch comparison: status %d", resp.StatusCode)
	}

	var result model.ComparisonResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode comparison: %w", err)
	}

	return &result, nil
}
