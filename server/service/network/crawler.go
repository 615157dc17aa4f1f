// Package network builds movie relationship graphs by bounded breadth-first
// expansion over an upstream relationship API.
package network

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/omar251/CinemaTec-sub001/plugin/cache"
	"github.com/omar251/CinemaTec-sub001/plugin/trakt"
	apierr "github.com/omar251/CinemaTec-sub001/internal/errors"
	"github.com/omar251/CinemaTec-sub001/store"
)

const (
	defaultMaxDepth    = 2
	defaultMaxBreadth  = 8
	defaultMaxInFlight = 4
)

// RelationshipAPI is the upstream surface the crawler expands through.
type RelationshipAPI interface {
	GetMovie(ctx context.Context, id string) (*trakt.Movie, error)
	GetRelated(ctx context.Context, id string) ([]*trakt.Movie, error)
}

// PosterAPI resolves poster artwork for a movie. An empty URL with a nil
// error means no poster was found.
type PosterAPI interface {
	PosterURL(ctx context.Context, title string, year *int) (string, error)
}

// Options bounds a crawl. Zero values fall back to defaults.
type Options struct {
	MaxDepth    int
	MaxBreadth  int
	MaxInFlight int
	Name        string
	Description string
}

func (o Options) normalized() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = defaultMaxDepth
	}
	if o.MaxBreadth <= 0 {
		o.MaxBreadth = defaultMaxBreadth
	}
	if o.MaxInFlight <= 0 {
		o.MaxInFlight = defaultMaxInFlight
	}
	return o
}

// Crawler expands a seed movie into a relationship network. Upstream reads go
// through a short-lived raw cache and a longer-lived enriched entity cache
// before hitting the network.
type Crawler struct {
	relations RelationshipAPI
	posters   PosterAPI
	movies    *store.MovieCache

	relatedCache *cache.Cache[[]*trakt.Movie]
	entityCache  *cache.Cache[store.Movie]
}

// NewCrawler creates a crawler. posters may be nil when no artwork source is
// configured.
func NewCrawler(relations RelationshipAPI, posters PosterAPI, movies *store.MovieCache, relatedCache *cache.Cache[[]*trakt.Movie], entityCache *cache.Cache[store.Movie]) *Crawler {
	return &Crawler{
		relations:    relations,
		posters:      posters,
		movies:       movies,
		relatedCache: relatedCache,
		entityCache:  entityCache,
	}
}

// Build crawls outward from seedID and returns the resulting network, not yet
// persisted. A seed that cannot be resolved is the only fatal upstream error;
// any later per-movie failure degrades that movie instead of failing the
// crawl.
func (c *Crawler) Build(ctx context.Context, seedID string, opts Options) (*store.Network, error) {
	opts = opts.normalized()
	start := time.Now()

	seedMovie, err := c.relations.GetMovie(ctx, seedID)
	if err != nil {
		if errors.Is(err, trakt.ErrNotFound) {
			return nil, apierr.NotFoundf("seed movie %s not found", seedID)
		}
		return nil, apierr.UpstreamUnavailable("failed to resolve seed movie "+seedID, err)
	}

	seed := c.enrichSeed(ctx, seedMovie)
	visited := map[string]int{seed.ID: 0}
	nodes := []*store.NetworkNode{newNode(seed, 0)}
	links := []*store.NetworkLink{}

	frontier := []string{seed.ID}
	for depth := 0; depth < opts.MaxDepth && len(frontier) > 0; depth++ {
		related := c.fetchRelatedAll(ctx, frontier, opts.MaxInFlight)

		// Discovery is sequential so that depth assignment and link
		// bookkeeping stay race-free; only upstream I/O runs concurrently.
		next := []string{}
		pending := []*trakt.Movie{}
		pendingIDs := []string{}
		for _, parentID := range frontier {
			neighbors := related[parentID]
			if len(neighbors) > opts.MaxBreadth {
				neighbors = neighbors[:opts.MaxBreadth]
			}
			for _, neighbor := range neighbors {
				id := trakt.SlugOrTraktID(neighbor)
				if id == parentID {
					continue
				}
				if _, ok := visited[id]; !ok {
					visited[id] = depth + 1
					pending = append(pending, neighbor)
					pendingIDs = append(pendingIDs, id)
					next = append(next, id)
				}
				links = append(links, &store.NetworkLink{Source: parentID, Target: id})
			}
		}

		enriched := c.enrichAll(ctx, pending, opts.MaxInFlight)
		for i, movie := range enriched {
			nodes = append(nodes, newNode(movie, visited[pendingIDs[i]]))
		}
		frontier = next
	}

	normalized, err := store.NormalizeLinks(nodes, links)
	if err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = seed.Title + " network"
	}
	network := &store.Network{
		Name:        name,
		Description: opts.Description,
		SeedID:      seed.ID,
		Nodes:       nodes,
		Links:       normalized,
		Settings: map[string]string{
			"crawl_id":    uuid.NewString(),
			"max_depth":   strconv.Itoa(opts.MaxDepth),
			"max_breadth": strconv.Itoa(opts.MaxBreadth),
		},
	}
	network.Metadata = store.ComputeMetadata(network.Nodes, network.Links)

	slog.Info("network crawl finished",
		slog.String("seed", seed.ID),
		slog.Int("nodes", len(nodes)),
		slog.Int("links", len(normalized)),
		slog.Duration("elapsed", time.Since(start)))
	return network, nil
}

// fetchRelatedAll loads the related listing of every frontier movie with at
// most maxInFlight concurrent upstream calls. A movie whose listing fails is
// left out of the result and becomes a leaf.
func (c *Crawler) fetchRelatedAll(ctx context.Context, ids []string, maxInFlight int) map[string][]*trakt.Movie {
	var mu sync.Mutex
	related := make(map[string][]*trakt.Movie, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			movies, err := c.getRelated(gctx, id)
			if err != nil {
				slog.Warn("related listing failed, treating movie as leaf",
					slog.String("movie", id),
					slog.String("error", err.Error()))
				return nil
			}
			mu.Lock()
			related[id] = movies
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return related
}

// getRelated reads the related listing through the raw cache.
func (c *Crawler) getRelated(ctx context.Context, id string) ([]*trakt.Movie, error) {
	key := "related:" + id
	if movies, ok := c.relatedCache.Get(key); ok {
		return movies, nil
	}
	movies, err := c.relations.GetRelated(ctx, id)
	if err != nil {
		return nil, err
	}
	c.relatedCache.Set(key, movies, 0)
	return movies, nil
}

// enrichAll enriches discovered movies with at most maxInFlight concurrent
// upstream calls, preserving input order.
func (c *Crawler) enrichAll(ctx context.Context, listings []*trakt.Movie, maxInFlight int) []*store.Movie {
	enriched := make([]*store.Movie, len(listings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)
	for i, listing := range listings {
		i, listing := i, listing
		g.Go(func() error {
			enriched[i] = c.enrichFull(gctx, listing)
			return nil
		})
	}
	_ = g.Wait()
	return enriched
}

// enrichSeed builds the seed entity from an already-full details record, so
// the seed never costs a second upstream call.
func (c *Crawler) enrichSeed(ctx context.Context, details *trakt.Movie) *store.Movie {
	id := trakt.SlugOrTraktID(details)
	key := "entity:" + id
	if movie, ok := c.entityCache.Get(key); ok {
		return &movie
	}

	rating := details.Rating
	movie := &store.Movie{
		ID:       id,
		Title:    details.Title,
		Year:     details.Year,
		Rating:   &rating,
		Genres:   details.Genres,
		Overview: details.Overview,
	}
	if c.posters != nil {
		if url, err := c.posters.PosterURL(ctx, details.Title, details.Year); err == nil {
			movie.PosterURL = url
		} else {
			slog.Warn("poster lookup failed",
				slog.String("movie", id),
				slog.String("error", err.Error()))
		}
	}

	c.movies.Put(movie)
	c.entityCache.Set(key, *movie, 0)
	return movie
}

// enrichFull resolves the complete entity for a movie known from a listing.
// Lookup order is entity cache, persistent movie cache, then upstream. Every
// upstream failure degrades to the listing fields with unknown rating and
// genres.
func (c *Crawler) enrichFull(ctx context.Context, listing *trakt.Movie) *store.Movie {
	id := trakt.SlugOrTraktID(listing)
	key := "entity:" + id
	if movie, ok := c.entityCache.Get(key); ok {
		return &movie
	}
	if record := c.movies.Get(id, listing.Title, listing.Year); record != nil {
		movie := record.Movie
		c.entityCache.Set(key, movie, 0)
		return &movie
	}

	movie := &store.Movie{
		ID:    id,
		Title: listing.Title,
		Year:  listing.Year,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		details, err := c.relations.GetMovie(ctx, id)
		if err != nil {
			slog.Warn("movie details fetch failed, keeping listing fields",
				slog.String("movie", id),
				slog.String("error", err.Error()))
			return
		}
		rating := details.Rating
		movie.Rating = &rating
		movie.Genres = details.Genres
		movie.Overview = details.Overview
		if details.Year != nil {
			movie.Year = details.Year
		}
	}()

	var posterURL string
	if c.posters != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			url, err := c.posters.PosterURL(ctx, listing.Title, listing.Year)
			if err != nil {
				slog.Warn("poster lookup failed",
					slog.String("movie", id),
					slog.String("error", err.Error()))
				return
			}
			posterURL = url
		}()
	}
	wg.Wait()
	movie.PosterURL = posterURL

	c.movies.Put(movie)
	c.entityCache.Set(key, *movie, 0)
	return movie
}

func newNode(movie *store.Movie, depth int) *store.NetworkNode {
	return &store.NetworkNode{
		Movie:        *movie,
		Depth:        depth,
		DiscoveredTs: time.Now().Unix(),
	}
}
