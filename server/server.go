// Package server assembles the HTTP server: echo instance, middleware, cache
// tiers, upstream clients, and the v1 API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/omar251/CinemaTec-sub001/internal/profile"
	"github.com/omar251/CinemaTec-sub001/plugin/ai"
	"github.com/omar251/CinemaTec-sub001/plugin/cache"
	"github.com/omar251/CinemaTec-sub001/plugin/tmdb"
	"github.com/omar251/CinemaTec-sub001/plugin/trakt"
	servermw "github.com/omar251/CinemaTec-sub001/server/middleware"
	apiv1 "github.com/omar251/CinemaTec-sub001/server/router/api/v1"
	"github.com/omar251/CinemaTec-sub001/server/service/network"
	"github.com/omar251/CinemaTec-sub001/store"
)

// Cache tier TTLs. Raw upstream payloads go stale fastest, enriched entities
// live longer, generated text longest.
const (
	rawCacheTTL    = 10 * time.Minute
	entityCacheTTL = 30 * time.Minute
	textCacheTTL   = 2 * time.Hour
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo

	relatedCache *cache.Cache[[]*trakt.Movie]
	entityCache  *cache.Cache[store.Movie]
	textCache    *cache.Cache[string]
}

func NewServer(ctx context.Context, profile *profile.Profile, st *store.Store) (*Server, error) {
	echoServer := echo.New()
	echoServer.Debug = true
	echoServer.HideBanner = true
	echoServer.HidePort = true

	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.CORS())
	echoServer.Use(servermw.RequestLogger())
	echoServer.Use(servermw.RateLimit(servermw.NewRateLimiter(10, 20)))

	s := &Server{
		Profile:    profile,
		Store:      st,
		echoServer: echoServer,

		relatedCache: cache.New[[]*trakt.Movie](cache.Config{DefaultTTL: rawCacheTTL}),
		entityCache:  cache.New[store.Movie](cache.Config{DefaultTTL: entityCacheTTL}),
		textCache:    cache.New[string](cache.Config{DefaultTTL: textCacheTTL}),
	}

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	traktClient := trakt.NewClient(trakt.Config{
		BaseURL: profile.TraktBaseURL,
		APIKey:  profile.TraktAPIKey,
	})

	var posters network.PosterAPI
	if profile.TMDBAPIKey != "" {
		posters = tmdb.NewClient(tmdb.Config{
			BaseURL: profile.TMDBBaseURL,
			APIKey:  profile.TMDBAPIKey,
		})
	}

	crawler := network.NewCrawler(traktClient, posters, st.Movies(), s.relatedCache, s.entityCache)

	var summarizer *ai.Summarizer
	if profile.IsAIEnabled() {
		summarizer = ai.NewSummarizer(&ai.Config{
			BaseURL: profile.AIBaseURL,
			APIKey:  profile.AIAPIKey,
			Model:   profile.AIModel,
		}, s.textCache)
	}

	apiV1Service := apiv1.NewAPIV1Service(profile, st, traktClient, crawler, summarizer)
	apiV1Service.RegisterRoutes(echoServer)

	if err := st.Migrate(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}
	if err := st.Movies().Hydrate(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to hydrate movie cache")
	}

	return s, nil
}

func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	return s.echoServer.Start(address)
}

func (s *Server) Shutdown(_ context.Context) {
	// The caller's context is usually already canceled when shutdown begins.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		fmt.Printf("failed to shutdown server, error: %+v\n", err)
	}

	s.relatedCache.Close()
	s.entityCache.Close()
	s.textCache.Close()

	if err := s.Store.Close(); err != nil {
		fmt.Printf("failed to close store, error: %+v\n", err)
	}

	fmt.Printf("server stopped properly\n")
}

// GetEcho exposes the echo instance for tests.
func (s *Server) GetEcho() *echo.Echo {
	return s.echoServer
}
