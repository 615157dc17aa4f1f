package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// recentAccessWindow bounds the "recently accessed" count in cache stats.
const recentAccessWindow = time.Hour

// Movie is a fully-enriched movie entity. Rating and Year are nil when the
// value is unknown upstream; nil is distinct from a genuine 0.
type Movie struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Year      *int     `json:"year,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	PosterURL string   `json:"posterUrl,omitempty"`
	Overview  string   `json:"overview,omitempty"`
}

// MovieRecord is a cached movie with bookkeeping timestamps.
type MovieRecord struct {
	Movie
	CachedTs       int64 `json:"cachedTs"`
	LastAccessedTs int64 `json:"lastAccessedTs"`
}

// MovieCacheStats summarizes the state of the movie cache.
type MovieCacheStats struct {
	TotalMovies        int   `json:"totalMovies"`
	RecentlyAccessed   int   `json:"recentlyAccessed"`
	EstimatedSizeBytes int64 `json:"estimatedSizeBytes"`
}

// MovieCache is a persistent cache of enriched movies keyed by external id,
// with a secondary title/year lookup and free-text search.
//
// The in-memory index is the source of truth during a run; the driver holds a
// snapshot written by Flush. Records are append-or-replace by id and never
// deleted individually.
type MovieCache struct {
	driver Driver

	mu      sync.RWMutex
	byID    map[string]*MovieRecord
	byTitle map[string][]string // normalized title -> ids
	dirty   map[string]struct{}
}

// NewMovieCache creates a movie cache. driver may be nil for a memory-only
// cache (Hydrate and Flush become no-ops).
func NewMovieCache(driver Driver) *MovieCache {
	return &MovieCache{
		driver:  driver,
		byID:    make(map[string]*MovieRecord),
		byTitle: make(map[string][]string),
		dirty:   make(map[string]struct{}),
	}
}

// Hydrate loads the durable snapshot into the in-memory index.
func (c *MovieCache) Hydrate(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}

	records, err := c.driver.ListMovieRecords(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, record := range records {
		c.byID[record.ID] = record
		c.indexTitleLocked(record.ID, record.Title)
	}
	slog.Info("movie cache hydrated", slog.Int("movies", len(records)))
	return nil
}

// Get looks a movie up by id. When the id misses and a title is given, it
// falls back to the title index, tolerating a one-year disagreement between
// sources. A successful lookup touches LastAccessedTs.
func (c *MovieCache) Get(id, title string, year *int) *MovieRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	if record, ok := c.byID[id]; ok {
		return c.touchLocked(record)
	}

	if title == "" {
		return nil
	}
	for _, candidateID := range c.byTitle[normalizeTitle(title)] {
		record, ok := c.byID[candidateID]
		if !ok {
			continue
		}
		if yearMatches(record.Year, year) {
			return c.touchLocked(record)
		}
	}
	return nil
}

// Put inserts or replaces a movie by id, preserving CachedTs on replace and
// resetting LastAccessedTs.
func (c *MovieCache) Put(movie *Movie) {
	now := time.Now().Unix()

	c.mu.Lock()
	defer c.mu.Unlock()

	record := &MovieRecord{Movie: *movie, CachedTs: now, LastAccessedTs: now}
	if existing, ok := c.byID[movie.ID]; ok {
		record.CachedTs = existing.CachedTs
		if existing.Title != movie.Title {
			c.unindexTitleLocked(movie.ID, existing.Title)
			c.indexTitleLocked(movie.ID, movie.Title)
		}
	} else {
		c.indexTitleLocked(movie.ID, movie.Title)
	}
	c.byID[movie.ID] = record
	c.dirty[movie.ID] = struct{}{}
}

// Search returns up to limit movies whose title contains the query,
// case-insensitively. Earlier matches rank first; ties break by descending
// rating with unknown ratings last.
func (c *MovieCache) Search(query string, limit int) []*Movie {
	query = normalizeTitle(query)
	if query == "" || limit <= 0 {
		return nil
	}

	type match struct {
		movie *Movie
		pos   int
	}

	c.mu.RLock()
	matches := []match{}
	for _, record := range c.byID {
		pos := strings.Index(normalizeTitle(record.Title), query)
		if pos < 0 {
			continue
		}
		movie := record.Movie
		matches = append(matches, match{movie: &movie, pos: pos})
	}
	c.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].pos != matches[j].pos {
			return matches[i].pos < matches[j].pos
		}
		ri, rj := matches[i].movie.Rating, matches[j].movie.Rating
		switch {
		case ri != nil && rj != nil && *ri != *rj:
			return *ri > *rj
		case ri != nil && rj == nil:
			return true
		case ri == nil && rj != nil:
			return false
		}
		return matches[i].movie.Title < matches[j].movie.Title
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	movies := make([]*Movie, len(matches))
	for i, m := range matches {
		movies[i] = m.movie
	}
	return movies
}

// Stats summarizes the cache contents.
func (c *MovieCache) Stats() *MovieCacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := &MovieCacheStats{TotalMovies: len(c.byID)}
	cutoff := time.Now().Add(-recentAccessWindow).Unix()
	for _, record := range c.byID {
		if record.LastAccessedTs >= cutoff {
			stats.RecentlyAccessed++
		}
		if raw, err := json.Marshal(record); err == nil {
			stats.EstimatedSizeBytes += int64(len(raw))
		}
	}
	return stats
}

// Clear drops the whole in-memory index and the durable snapshot.
func (c *MovieCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.byID = make(map[string]*MovieRecord)
	c.byTitle = make(map[string][]string)
	c.dirty = make(map[string]struct{})
	c.mu.Unlock()

	if c.driver == nil {
		return nil
	}
	return c.driver.DeleteAllMovieRecords(ctx)
}

// Flush writes all dirty records to the driver. Records that fail to persist
// stay dirty and are retried on the next flush.
func (c *MovieCache) Flush(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}

	c.mu.Lock()
	pending := make([]*MovieRecord, 0, len(c.dirty))
	for id := range c.dirty {
		if record, ok := c.byID[id]; ok {
			copied := *record
			pending = append(pending, &copied)
		}
	}
	c.mu.Unlock()

	var firstErr error
	flushed := 0
	for _, record := range pending {
		if err := c.driver.UpsertMovieRecord(ctx, record); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		c.mu.Lock()
		delete(c.dirty, record.ID)
		c.mu.Unlock()
		flushed++
	}
	if flushed > 0 {
		slog.Debug("movie cache flushed", slog.Int("records", flushed))
	}
	return firstErr
}

// touchLocked updates the access timestamp and returns a copy of the record.
func (c *MovieCache) touchLocked(record *MovieRecord) *MovieRecord {
	record.LastAccessedTs = time.Now().Unix()
	c.dirty[record.ID] = struct{}{}
	copied := *record
	return &copied
}

func (c *MovieCache) indexTitleLocked(id, title string) {
	key := normalizeTitle(title)
	c.byTitle[key] = append(c.byTitle[key], id)
}

func (c *MovieCache) unindexTitleLocked(id, title string) {
	key := normalizeTitle(title)
	ids := c.byTitle[key]
	for i, candidate := range ids {
		if candidate == id {
			c.byTitle[key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(c.byTitle[key]) == 0 {
		delete(c.byTitle, key)
	}
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// yearMatches tolerates a one-year disagreement between sources. An unknown
// year on either side matches.
func yearMatches(a, b *int) bool {
	if a == nil || b == nil {
		return true
	}
	diff := *a - *b
	return diff >= -1 && diff <= 1
}
