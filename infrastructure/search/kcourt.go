// Package search provides the case-law search client the precedent resolver
// queries for real court decisions.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/keyublog/gaepan-core/internal/domain"
	"github.com/keyublog/gaepan-core/internal/ports"
)

// Client queries a case-law search HTTP API and maps results to domain
// precedents.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

var _ ports.PrecedentSearcher = (*Client)(nil)

// NewClient builds a search client. timeout caps each search request.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// searchResponse mirrors the API's JSON payload.
type searchResponse struct {
	Items []struct {
		CaseName   string `json:"case_name"`
		CaseNumber string `json:"case_number"`
		Court      string `json:"court"`
		Summary    string `json:"summary"`
	} `json:"items"`
}

// Search runs a keyword query and returns up to limit precedents.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Precedent, error) {
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(limit))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("case-law search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("case-law search: HTTP %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]domain.Precedent, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.CaseName == "" && item.CaseNumber == "" {
			continue
		}
		results = append(results, domain.Precedent{
			CaseName:   item.CaseName,
			CaseNumber: item.CaseNumber,
			Court:      item.Court,
			Summary:    item.Summary,
		})
		if len(results) == limit {
			break
		}
	}
	return results, nil
}
