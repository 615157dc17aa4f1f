// Package tmdb provides a best-effort poster lookup against the TMDB API.
package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const imageBaseURL = "https://image.tmdb.org/t/p/w500"

// Config configures the TMDB client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration // per-call timeout (default: 5 seconds)
}

// Client calls the TMDB API. A client with an empty API key is valid and
// always reports no poster.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a TMDB client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.themoviedb.org/3"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type searchResponse struct {
	Results []struct {
		PosterPath string `json:"poster_path"`
	} `json:"results"`
}

// PosterURL looks up the poster image URL for a movie by title and year.
// An empty string with nil error means no poster was found; absence is not
// an error.
func (c *Client) PosterURL(ctx context.Context, title string, year *int) (string, error) {
	if c.apiKey == "" {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{
		"api_key": {c.apiKey},
		"query":   {title},
	}
	if year != nil {
		params.Set("year", strconv.Itoa(*year))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/movie?"+params.Encode(), nil)
	if err != nil {
		return "", errors.Wrap(err, "build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "tmdb search failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", errors.Errorf("tmdb search failed with status %d", resp.StatusCode)
	}

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", errors.Wrap(err, "decode tmdb response")
	}

	if len(data.Results) == 0 || data.Results[0].PosterPath == "" {
		return "", nil
	}
	return imageBaseURL + data.Results[0].PosterPath, nil
}
