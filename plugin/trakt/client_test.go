package trakt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, APIKey: "test-key", RPS: 1000})
}

func TestClient_GetRelated(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movies/inception-2010/related", r.URL.Path)
		assert.Equal(t, "2", r.Header.Get("trakt-api-version"))
		assert.Equal(t, "test-key", r.Header.Get("trakt-api-key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"title": "Interstellar", "year": 2014, "ids": {"trakt": 1, "slug": "interstellar-2014"}},
			{"title": "The Prestige", "year": 2006, "ids": {"trakt": 2, "slug": "the-prestige-2006"}}
		]`))
	})

	movies, err := client.GetRelated(context.Background(), "inception-2010")
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "Interstellar", movies[0].Title)
	require.NotNil(t, movies[0].Year)
	assert.Equal(t, 2014, *movies[0].Year)
	assert.Equal(t, "interstellar-2014", movies[0].IDs.Slug)
}

func TestClient_GetMovie(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movies/inception-2010", r.URL.Path)
		assert.Equal(t, "full", r.URL.Query().Get("extended"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"title": "Inception", "year": 2010,
			"ids": {"trakt": 16662, "slug": "inception-2010"},
			"rating": 8.7, "votes": 40000,
			"genres": ["action", "science-fiction"],
			"overview": "a thief who steals corporate secrets"
		}`))
	})

	movie, err := client.GetMovie(context.Background(), "inception-2010")
	require.NoError(t, err)
	assert.Equal(t, "Inception", movie.Title)
	assert.InDelta(t, 8.7, movie.Rating, 0.001)
	assert.Equal(t, []string{"action", "science-fiction"}, movie.Genres)
}

func TestClient_GetMovie_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetMovie(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_SearchMovies_FiltersNonMovies(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "batman", r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"type": "movie", "score": 100, "movie": {"title": "Batman", "year": 1989, "ids": {"trakt": 3}}},
			{"type": "show", "score": 50}
		]`))
	})

	results, err := client.SearchMovies(context.Background(), "batman")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Batman", results[0].Movie.Title)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond, RPS: 1000})
	_, err := client.GetRelated(context.Background(), "slow")
	assert.Error(t, err)
}

func TestSlugOrTraktID(t *testing.T) {
	assert.Equal(t, "inception-2010", SlugOrTraktID(&Movie{IDs: IDs{Trakt: 16662, Slug: "inception-2010"}}))
	assert.Equal(t, "16662", SlugOrTraktID(&Movie{IDs: IDs{Trakt: 16662}}))
}
