// Package trakt provides a minimal client for the Trakt API, covering movie
// search, details, ratings, and related-movie listings.
package trakt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the API responds with 404 for a movie id.
var ErrNotFound = errors.New("trakt: movie not found")

// IDs holds the external identifiers of a movie.
type IDs struct {
	Trakt int    `json:"trakt"`
	Slug  string `json:"slug"`
	IMDB  string `json:"imdb,omitempty"`
	TMDB  int    `json:"tmdb,omitempty"`
}

// Movie is a Trakt movie record. Rating, Genres and Overview are only
// populated when fetched with extended=full.
type Movie struct {
	Title    string   `json:"title"`
	Year     *int     `json:"year"`
	IDs      IDs      `json:"ids"`
	Overview string   `json:"overview,omitempty"`
	Rating   float64  `json:"rating,omitempty"`
	Votes    int      `json:"votes,omitempty"`
	Genres   []string `json:"genres,omitempty"`
}

// SearchResult is one entry of a /search/movie response.
type SearchResult struct {
	Type  string  `json:"type"`
	Score float64 `json:"score"`
	Movie *Movie  `json:"movie"`
}

// Ratings is a /movies/{id}/ratings response.
type Ratings struct {
	Rating float64 `json:"rating"`
	Votes  int     `json:"votes"`
}

// Config configures the Trakt client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration // per-call timeout (default: 5 seconds)
	RPS     float64       // client-side rate limit (default: 3 requests/second)
}

// Client calls the Trakt API.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Trakt client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.trakt.tv"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 3
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RPS), int(cfg.RPS)+1),
	}
}

// SearchMovies searches movies by free text query.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]*SearchResult, error) {
	var results []*SearchResult
	params := url.Values{"query": {query}}
	if err := c.get(ctx, "/search/movie", params, &results); err != nil {
		return nil, err
	}
	// Drop non-movie entries defensively; the endpoint can mix types.
	filtered := make([]*SearchResult, 0, len(results))
	for _, r := range results {
		if r.Movie != nil {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// GetMovie fetches the full record of a movie, including rating and genres.
func (c *Client) GetMovie(ctx context.Context, id string) (*Movie, error) {
	var movie Movie
	params := url.Values{"extended": {"full"}}
	if err := c.get(ctx, "/movies/"+url.PathEscape(id), params, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetRatings fetches the rating summary of a movie.
func (c *Client) GetRatings(ctx context.Context, id string) (*Ratings, error) {
	var ratings Ratings
	if err := c.get(ctx, "/movies/"+url.PathEscape(id)+"/ratings", nil, &ratings); err != nil {
		return nil, err
	}
	return &ratings, nil
}

// GetRelated fetches movies related to the given movie id.
func (c *Client) GetRelated(ctx context.Context, id string) ([]*Movie, error) {
	var movies []*Movie
	if err := c.get(ctx, "/movies/"+url.PathEscape(id)+"/related", nil, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter wait")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", "2")
	req.Header.Set("trakt-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "trakt request %s failed", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("trakt request %s failed with status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response body")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "decode response of %s", path)
	}
	return nil
}

// SlugOrTraktID returns the preferred external identifier for a movie:
// the slug when present, otherwise the numeric Trakt id.
func SlugOrTraktID(m *Movie) string {
	if m.IDs.Slug != "" {
		return m.IDs.Slug
	}
	return fmt.Sprintf("%d", m.IDs.Trakt)
}
