package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/omar251/CinemaTec-sub001/plugin/trakt"
	apierr "github.com/omar251/CinemaTec-sub001/internal/errors"
	"github.com/omar251/CinemaTec-sub001/store"
)

const defaultSearchLimit = 10

type searchResponse struct {
	Query   string         `json:"query"`
	Results []*store.Movie `json:"results"`
	Source  string         `json:"source"`
}

// SearchMovies searches the local cache first and falls through to the
// upstream search endpoint on a miss.
func (s *APIV1Service) SearchMovies(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return replyError(c, apierr.InvalidArgument("query parameter is required"))
	}
	limit := defaultSearchLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return replyError(c, apierr.InvalidArgument("limit must be a positive integer"))
		}
		limit = parsed
	}

	if cached := s.Store.Movies().Search(query, limit); len(cached) > 0 {
		return c.JSON(http.StatusOK, &searchResponse{Query: query, Results: cached, Source: "cache"})
	}

	results, err := s.Trakt.SearchMovies(c.Request().Context(), query)
	if err != nil {
		return replyError(c, apierr.UpstreamUnavailable("movie search failed", err))
	}
	movies := make([]*store.Movie, 0, limit)
	for _, result := range results {
		if len(movies) == limit {
			break
		}
		movies = append(movies, &store.Movie{
			ID:    trakt.SlugOrTraktID(result.Movie),
			Title: result.Movie.Title,
			Year:  result.Movie.Year,
		})
	}
	return c.JSON(http.StatusOK, &searchResponse{Query: query, Results: movies, Source: "upstream"})
}

// GetMovie returns the enriched record of a movie, reading through the cache
// tiers before the upstream.
func (s *APIV1Service) GetMovie(c echo.Context) error {
	id := c.Param("id")

	if record := s.Store.Movies().Get(id, "", nil); record != nil {
		return c.JSON(http.StatusOK, &record.Movie)
	}

	details, err := s.Trakt.GetMovie(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, trakt.ErrNotFound) {
			return replyError(c, apierr.NotFoundf("movie %s not found", id))
		}
		return replyError(c, apierr.UpstreamUnavailable("movie details fetch failed", err))
	}

	rating := details.Rating
	movie := &store.Movie{
		ID:       trakt.SlugOrTraktID(details),
		Title:    details.Title,
		Year:     details.Year,
		Rating:   &rating,
		Genres:   details.Genres,
		Overview: details.Overview,
	}
	s.Store.Movies().Put(movie)
	return c.JSON(http.StatusOK, movie)
}

// GetMovieRatings returns the upstream rating summary for a movie.
func (s *APIV1Service) GetMovieRatings(c echo.Context) error {
	id := c.Param("id")

	ratings, err := s.Trakt.GetRatings(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, trakt.ErrNotFound) {
			return replyError(c, apierr.NotFoundf("movie %s not found", id))
		}
		return replyError(c, apierr.UpstreamUnavailable("ratings fetch failed", err))
	}
	return c.JSON(http.StatusOK, ratings)
}

// GetRelatedMovies returns the upstream related listing for a movie.
func (s *APIV1Service) GetRelatedMovies(c echo.Context) error {
	id := c.Param("id")

	related, err := s.Trakt.GetRelated(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, trakt.ErrNotFound) {
			return replyError(c, apierr.NotFoundf("movie %s not found", id))
		}
		return replyError(c, apierr.UpstreamUnavailable("related listing failed", err))
	}

	movies := make([]*store.Movie, 0, len(related))
	for _, listing := range related {
		movies = append(movies, &store.Movie{
			ID:    trakt.SlugOrTraktID(listing),
			Title: listing.Title,
			Year:  listing.Year,
		})
	}
	return c.JSON(http.StatusOK, movies)
}

// GetMovieCacheStats reports movie cache statistics.
func (s *APIV1Service) GetMovieCacheStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Store.Movies().Stats())
}

// ClearMovieCache drops the movie cache, in memory and durable.
func (s *APIV1Service) ClearMovieCache(c echo.Context) error {
	if err := s.Store.Movies().Clear(c.Request().Context()); err != nil {
		return replyError(c, apierr.StorageFailure("failed to clear movie cache", err))
	}
	return c.NoContent(http.StatusNoContent)
}
