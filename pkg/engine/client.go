// Package engine provides the public Go SDK for the movie recommender API.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ErrNotFound is matched by errors.Is for a title the service could not resolve.
var ErrNotFound = errors.New("movie not found")

// Client is the public SDK client for the movie recommender API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientConfig holds client configuration.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// NewClient creates a new client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000"
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// SearchHit is one fuzzy title match.
type SearchHit struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// SearchResponse is the result of a title search.
type SearchResponse struct {
	Query   string      `json:"query"`
	Results []SearchHit `json:"results"`
}

// RecommendRequest asks for titles similar to Title. Nil fields take the
// server defaults.
type RecommendRequest struct {
	Title     string   `json:"title"`
	TopK      *int     `json:"top_k,omitempty"`
	MinRating *float64 `json:"min_rating,omitempty"`
	MinVotes  *int     `json:"min_votes,omitempty"`
}

// Recommendation is one ranked similar title.
type Recommendation struct {
	Title      string  `json:"title"`
	Rating     float64 `json:"rating"`
	Votes      int     `json:"votes"`
	Similarity float64 `json:"similarity"`
}

// Thresholds are the quality gates applied to a recommendation.
type Thresholds struct {
	MinRating float64 `json:"min_rating"`
	MinVotes  int     `json:"min_votes"`
}

// RecommendResponse is a resolved title with its ranked neighbours.
type RecommendResponse struct {
	Input           string           `json:"input"`
	ResolvedTitle   string           `json:"resolved_title"`
	Corrected       bool             `json:"corrected"`
	MatchScore      float64          `json:"match_score"`
	Filters         Thresholds       `json:"filters"`
	Recommendations []Recommendation `json:"recommendations"`
}

// FilterRequest selects catalog items by attribute. Nil fields are inactive.
type FilterRequest struct {
	Runtime  *int    `json:"runtime,omitempty"`
	Director *string `json:"director,omitempty"`
	Cast     *string `json:"cast,omitempty"`
	Language *string `json:"language,omitempty"`
	Genre    *string `json:"genre,omitempty"`
	Limit    *int    `json:"limit,omitempty"`
}

// FilterRow is one matching catalog item.
type FilterRow struct {
	Title   string   `json:"original_title"`
	Rating  *float64 `json:"vote_average"`
	Votes   *int     `json:"vote_count"`
	Runtime *int     `json:"runtime"`
}

// FilterResponse is the result of an attribute filter.
type FilterResponse struct {
	Applied FilterRequest `json:"filters_applied"`
	Count   int           `json:"count"`
	Results []FilterRow   `json:"results"`
}

// NotFoundError describes a title the service could not resolve. BestGuess
// is empty when the catalog offered no candidate.
type NotFoundError struct {
	Title      string
	BestGuess  string
	MatchScore float64
	Hint       string
}

func (e *NotFoundError) Error() string {
	if e.BestGuess == "" {
		return fmt.Sprintf("%s: %q", ErrNotFound, e.Title)
	}
	return fmt.Sprintf("%s: %q (best guess %q, score %.1f)", ErrNotFound, e.Title, e.BestGuess, e.MatchScore)
}

// Unwrap lets errors.Is match ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// APIError is any other non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Health reports whether the service answers its liveness probe.
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("unexpected health status %q", resp.Status)
	}
	return nil
}

// Search fuzzy-matches query against catalog titles. A non-positive limit
// uses the server default.
func (c *Client) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	params := url.Values{"query": {query}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var resp SearchResponse
	if err := c.do(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Recommend returns titles similar to req.Title. An unresolvable title
// returns a *NotFoundError.
func (c *Client) Recommend(ctx context.Context, req RecommendRequest) (*RecommendResponse, error) {
	var resp RecommendResponse
	err := c.do(ctx, http.MethodPost, "/recommend", req, &resp)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		nf := &NotFoundError{Title: req.Title}
		var body struct {
			BestGuess  string  `json:"best_guess"`
			MatchScore float64 `json:"match_score"`
			Hint       string  `json:"hint"`
		}
		if json.Unmarshal([]byte(apiErr.Detail), &body) == nil {
			nf.BestGuess, nf.MatchScore, nf.Hint = body.BestGuess, body.MatchScore, body.Hint
		}
		return nil, nf
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Filter selects catalog items by attribute.
func (c *Client) Filter(ctx context.Context, req FilterRequest) (*FilterResponse, error) {
	var resp FilterResponse
	if err := c.do(ctx, http.MethodPost, "/filter", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do sends a JSON request and decodes a 2xx body into out. For a 404 the
// raw body is kept in APIError.Detail so callers can decode it.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if resp.StatusCode == http.StatusNotFound {
			apiErr.Detail = string(data)
			return apiErr
		}
		var errBody struct {
			Error   string `json:"error"`
			Message string `json:"message"`
			Detail  string `json:"detail"`
		}
		if json.Unmarshal(data, &errBody) == nil {
			if errBody.Message != "" {
				apiErr.Message = errBody.Message
			} else if errBody.Error != "" {
				apiErr.Message = errBody.Error
			}
			apiErr.Detail = errBody.Detail
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
