// Package v1 exposes the REST API: movie lookups, network crawling and
// persistence, exports, and synopsis generation.
package v1

import (
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/omar251/CinemaTec-sub001/internal/profile"
	"github.com/omar251/CinemaTec-sub001/plugin/ai"
	"github.com/omar251/CinemaTec-sub001/plugin/trakt"
	"github.com/omar251/CinemaTec-sub001/server/service/network"
	"github.com/omar251/CinemaTec-sub001/store"
)

// maxConcurrentCrawls bounds in-flight network builds; a crawl fans out to
// many upstream calls and can hold a few MB of graph state.
const maxConcurrentCrawls = 3

type APIV1Service struct {
	Profile    *profile.Profile
	Store      *store.Store
	Trakt      *trakt.Client
	Crawler    *network.Crawler
	Summarizer *ai.Summarizer

	crawlSemaphore *semaphore.Weighted
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, traktClient *trakt.Client, crawler *network.Crawler, summarizer *ai.Summarizer) *APIV1Service {
	return &APIV1Service{
		Profile:        profile,
		Store:          store,
		Trakt:          traktClient,
		Crawler:        crawler,
		Summarizer:     summarizer,
		crawlSemaphore: semaphore.NewWeighted(maxConcurrentCrawls),
	}
}

// RegisterRoutes mounts all API routes under /api/v1.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	g := echoServer.Group("/api/v1")

	g.GET("/movies/search", s.SearchMovies)
	g.GET("/movies/cache/stats", s.GetMovieCacheStats)
	g.DELETE("/movies/cache", s.ClearMovieCache)
	g.GET("/movies/:id", s.GetMovie)
	g.GET("/movies/:id/ratings", s.GetMovieRatings)
	g.GET("/movies/:id/related", s.GetRelatedMovies)
	g.POST("/movies/:id/synopsis", s.GenerateSynopsis)

	g.POST("/networks", s.CreateNetwork)
	g.GET("/networks", s.ListNetworks)
	g.GET("/networks/stats/summary", s.GetNetworkStats)
	g.GET("/networks/:id", s.GetNetwork)
	g.PATCH("/networks/:id", s.UpdateNetwork)
	g.DELETE("/networks/:id", s.DeleteNetwork)
	g.GET("/networks/:id/export", s.ExportNetwork)
}
