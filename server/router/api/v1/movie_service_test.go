package v1

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/omar251/CinemaTec-sub001/store"
)

func TestSearchMovies(t *testing.T) {
	_, e := newTestService(t)

	t.Run("missing query", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/v1/movies/search", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid limit", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/v1/movies/search?query=alpha&limit=nope", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upstream fallthrough", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/v1/movies/search?query=alpha", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var response searchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		require.Equal(t, "upstream", response.Source)
		require.Len(t, response.Results, 1)
		require.Equal(t, "alpha", response.Results[0].ID)
	})

	t.Run("cache hit after details fetch", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/v1/movies/alpha", "")
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(e, http.MethodGet, "/api/v1/movies/search?query=alpha", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var response searchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		require.Equal(t, "cache", response.Source)
	})
}

func TestGetMovie(t *testing.T) {
	_, e := newTestService(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/movies/alpha", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var movie store.Movie
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movie))
	require.Equal(t, "alpha", movie.ID)
	require.Equal(t, "Alpha", movie.Title)
	require.NotNil(t, movie.Rating)
	require.Equal(t, 8.0, *movie.Rating)

	rec = doRequest(e, http.MethodGet, "/api/v1/movies/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMovieRatings(t *testing.T) {
	_, e := newTestService(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/movies/alpha/ratings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ratings struct {
		Rating float64 `json:"rating"`
		Votes  int     `json:"votes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ratings))
	require.Equal(t, 8.0, ratings.Rating)
	require.Equal(t, 1200, ratings.Votes)
}

func TestGetRelatedMovies(t *testing.T) {
	_, e := newTestService(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/movies/alpha/related", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var movies []*store.Movie
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movies))
	require.Len(t, movies, 1)
	require.Equal(t, "beta", movies[0].ID)
}

func TestMovieCacheEndpoints(t *testing.T) {
	_, e := newTestService(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/movies/cache/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats store.MovieCacheStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, 0, stats.TotalMovies)

	rec = doRequest(e, http.MethodGet, "/api/v1/movies/alpha", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/v1/movies/cache/stats", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, 1, stats.TotalMovies)

	rec = doRequest(e, http.MethodDelete, "/api/v1/movies/cache", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/v1/movies/cache/stats", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, 0, stats.TotalMovies)
}

func TestGenerateSynopsisUnconfigured(t *testing.T) {
	_, e := newTestService(t)

	rec := doRequest(e, http.MethodPost, "/api/v1/movies/alpha/synopsis", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var response errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Equal(t, "LLM_UNAVAILABLE", string(response.Code))
}
