package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PosterURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "Inception", r.URL.Query().Get("query"))
		assert.Equal(t, "2010", r.URL.Query().Get("year"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [{"poster_path": "/abc123.jpg"}]}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})
	year := 2010
	posterURL, err := client.PosterURL(context.Background(), "Inception", &year)
	require.NoError(t, err)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc123.jpg", posterURL)
}

func TestClient_PosterURL_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})
	posterURL, err := client.PosterURL(context.Background(), "Unknown Movie", nil)
	require.NoError(t, err)
	assert.Empty(t, posterURL)
}

func TestClient_PosterURL_NoAPIKey(t *testing.T) {
	client := NewClient(Config{})
	posterURL, err := client.PosterURL(context.Background(), "Inception", nil)
	require.NoError(t, err)
	assert.Empty(t, posterURL)
}
