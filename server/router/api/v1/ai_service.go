package v1

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apierr "github.com/omar251/CinemaTec-sub001/internal/errors"
	"github.com/omar251/CinemaTec-sub001/store"
)

type synopsisResponse struct {
	MovieID  string `json:"movieId"`
	Synopsis string `json:"synopsis"`
}

// GenerateSynopsis generates a short synopsis for a cached movie. Identical
// prompts are served from the long-TTL text cache inside the summarizer.
func (s *APIV1Service) GenerateSynopsis(c echo.Context) error {
	if s.Summarizer == nil {
		return replyError(c, apierr.LLMUnavailable("synopsis generation is not configured"))
	}

	id := c.Param("id")
	record := s.Store.Movies().Get(id, "", nil)
	if record == nil {
		return replyError(c, apierr.NotFoundf("movie %s not found in cache", id))
	}

	synopsis, err := s.Summarizer.Summarize(c.Request().Context(), synopsisPrompt(&record.Movie))
	if err != nil {
		return replyError(c, apierr.LLMUnavailable("synopsis generation failed"))
	}
	return c.JSON(http.StatusOK, &synopsisResponse{MovieID: id, Synopsis: synopsis})
}

func synopsisPrompt(movie *store.Movie) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a concise two-sentence synopsis of the movie %q", movie.Title)
	if movie.Year != nil {
		fmt.Fprintf(&b, " (%d)", *movie.Year)
	}
	b.WriteString(".")
	if len(movie.Genres) > 0 {
		fmt.Fprintf(&b, " Genres: %s.", strings.Join(movie.Genres, ", "))
	}
	if movie.Overview != "" {
		fmt.Fprintf(&b, " Known overview: %s", movie.Overview)
	}
	return b.String()
}
