package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMovieCacheGetByID(t *testing.T) {
	cache := NewMovieCache(nil)
	cache.Put(&Movie{ID: "tt0133093", Title: "The Matrix", Year: intPtr(1999), Rating: floatPtr(8.7)})

	record := cache.Get("tt0133093", "", nil)
	require.NotNil(t, record)
	require.Equal(t, "The Matrix", record.Title)
	require.NotZero(t, record.LastAccessedTs)

	require.Nil(t, cache.Get("tt9999999", "", nil))
}

func TestMovieCacheTitleFallback(t *testing.T) {
	cache := NewMovieCache(nil)
	cache.Put(&Movie{ID: "tt0133093", Title: "The Matrix", Year: intPtr(1999)})

	tests := []struct {
		name  string
		title string
		year  *int
		found bool
	}{
		{"exact title and year", "The Matrix", intPtr(1999), true},
		{"case insensitive", "the matrix", intPtr(1999), true},
		{"year off by one", "The Matrix", intPtr(2000), true},
		{"year off by one down", "The Matrix", intPtr(1998), true},
		{"year too far off", "The Matrix", intPtr(2005), false},
		{"unknown year matches", "The Matrix", nil, true},
		{"unknown title", "The Moontrix", intPtr(1999), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := cache.Get("unknown-id", tt.title, tt.year)
			if tt.found {
				require.NotNil(t, record)
				require.Equal(t, "tt0133093", record.ID)
			} else {
				require.Nil(t, record)
			}
		})
	}
}

func TestMovieCachePutReplace(t *testing.T) {
	cache := NewMovieCache(nil)
	cache.Put(&Movie{ID: "m1", Title: "Old Title"})
	first := cache.Get("m1", "", nil)
	require.NotNil(t, first)

	cache.Put(&Movie{ID: "m1", Title: "New Title", Rating: floatPtr(7.5)})
	record := cache.Get("m1", "", nil)
	require.NotNil(t, record)
	require.Equal(t, "New Title", record.Title)
	require.Equal(t, first.CachedTs, record.CachedTs)

	// The old title is no longer indexed; the new one is.
	require.Nil(t, cache.Get("missing", "Old Title", nil))
	require.NotNil(t, cache.Get("missing", "New Title", nil))
}

func TestMovieCacheSearch(t *testing.T) {
	cache := NewMovieCache(nil)
	cache.Put(&Movie{ID: "m1", Title: "The Matrix", Rating: floatPtr(8.7)})
	cache.Put(&Movie{ID: "m2", Title: "The Matrix Reloaded", Rating: floatPtr(7.2)})
	cache.Put(&Movie{ID: "m3", Title: "Matrix Rebooted"})
	cache.Put(&Movie{ID: "m4", Title: "Inception", Rating: floatPtr(8.8)})

	results := cache.Search("matrix", 10)
	require.Len(t, results, 3)
	// "Matrix Rebooted" matches at position 0, the others at position 4.
	require.Equal(t, "m3", results[0].ID)
	// Ties on position break by rating descending, unknown last.
	require.Equal(t, "m1", results[1].ID)
	require.Equal(t, "m2", results[2].ID)

	require.Len(t, cache.Search("matrix", 2), 2)
	require.Empty(t, cache.Search("", 10))
	require.Empty(t, cache.Search("matrix", 0))
}

func TestMovieCacheStats(t *testing.T) {
	cache := NewMovieCache(nil)
	require.Equal(t, 0, cache.Stats().TotalMovies)

	cache.Put(&Movie{ID: "m1", Title: "The Matrix"})
	cache.Put(&Movie{ID: "m2", Title: "Inception"})

	stats := cache.Stats()
	require.Equal(t, 2, stats.TotalMovies)
	require.Equal(t, 2, stats.RecentlyAccessed)
	require.Greater(t, stats.EstimatedSizeBytes, int64(0))
}

func TestMovieCacheClear(t *testing.T) {
	cache := NewMovieCache(nil)
	cache.Put(&Movie{ID: "m1", Title: "The Matrix"})

	require.NoError(t, cache.Clear(context.Background()))
	require.Nil(t, cache.Get("m1", "", nil))
	require.Equal(t, 0, cache.Stats().TotalMovies)
}

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}
