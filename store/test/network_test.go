package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	apierr "github.com/omar251/CinemaTec-sub001/internal/errors"
	"github.com/omar251/CinemaTec-sub001/store"
)

func testNetwork(seed string) *store.Network {
	rating := 8.7
	year := 1999
	return &store.Network{
		Name:   "Matrix neighborhood",
		SeedID: seed,
		Nodes: []*store.NetworkNode{
			{Movie: store.Movie{ID: seed, Title: "The Matrix", Year: &year, Rating: &rating, Genres: []string{"sci-fi"}}, Depth: 0},
			{Movie: store.Movie{ID: seed + "-related", Title: "Dark City"}, Depth: 1},
		},
		Links: []*store.NetworkLink{{Source: seed, Target: seed + "-related"}},
	}
}

func TestNetworkStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	saved, err := ts.SaveNetwork(ctx, testNetwork("tt0133093"))
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.NotZero(t, saved.CreatedTs)
	require.Equal(t, 2, saved.Metadata.NodeCount)
	require.Equal(t, 1, saved.Metadata.LinkCount)

	loaded, err := ts.GetNetwork(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, saved.Name, loaded.Name)
	require.Len(t, loaded.Nodes, 2)
	require.Len(t, loaded.Links, 1)
	require.NotNil(t, loaded.Nodes[0].Rating)

	_, err = ts.GetNetwork(ctx, "missing")
	require.Error(t, err)
	require.True(t, apierr.IsCode(err, apierr.ErrCodeNotFound))
}

func TestNetworkStoreUpdate(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	saved, err := ts.SaveNetwork(ctx, testNetwork("tt0133093"))
	require.NoError(t, err)

	newName := "renamed"
	updated, err := ts.UpdateNetwork(ctx, saved.ID, &store.UpdateNetwork{Name: &newName})
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Name)
	require.Equal(t, saved.ID, updated.ID)
	require.Equal(t, saved.CreatedTs, updated.CreatedTs)
	// Nodes and links are untouched by a name-only update.
	require.Len(t, updated.Nodes, 2)

	_, err = ts.UpdateNetwork(ctx, "missing", &store.UpdateNetwork{Name: &newName})
	require.Error(t, err)
	require.True(t, apierr.IsCode(err, apierr.ErrCodeNotFound))
}

func TestNetworkStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	first, err := ts.SaveNetwork(ctx, testNetwork("tt0133093"))
	require.NoError(t, err)
	second, err := ts.SaveNetwork(ctx, testNetwork("tt0118929"))
	require.NoError(t, err)

	summaries, err := ts.ListNetworks(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	ids := []string{summaries[0].ID, summaries[1].ID}
	require.Contains(t, ids, first.ID)
	require.Contains(t, ids, second.ID)

	require.NoError(t, ts.DeleteNetwork(ctx, first.ID))
	summaries, err = ts.ListNetworks(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	err = ts.DeleteNetwork(ctx, first.ID)
	require.Error(t, err)
	require.True(t, apierr.IsCode(err, apierr.ErrCodeNotFound))
}

func TestNetworkStoreStats(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	stats, err := ts.GetNetworkStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, stats.TotalGraphs)

	_, err = ts.SaveNetwork(ctx, testNetwork("tt0133093"))
	require.NoError(t, err)
	_, err = ts.SaveNetwork(ctx, testNetwork("tt0118929"))
	require.NoError(t, err)

	stats, err = ts.GetNetworkStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalGraphs)
	require.Equal(t, 4, stats.TotalNodes)
	require.Equal(t, 2, stats.TotalLinks)
	require.Greater(t, stats.TotalStorageBytes, int64(0))
	require.InDelta(t, 2.0, stats.AverageGraphSize, 0.001)
}

func TestNetworkStoreRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	_, err := ts.SaveNetwork(ctx, &store.Network{Name: "empty"})
	require.Error(t, err)
	require.True(t, apierr.IsCode(err, apierr.ErrCodeInvalidArgument))

	network := testNetwork("tt0133093")
	network.Links = append(network.Links, &store.NetworkLink{Source: "tt0133093", Target: "zzz"})
	_, err = ts.SaveNetwork(ctx, network)
	require.Error(t, err)
	require.True(t, apierr.IsCode(err, apierr.ErrCodeInvalidArgument))
}

func TestMovieCachePersistence(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	year := 1999
	rating := 8.7
	ts.Movies().Put(&store.Movie{
		ID:     "tt0133093",
		Title:  "The Matrix",
		Year:   &year,
		Rating: &rating,
		Genres: []string{"sci-fi", "action"},
	})
	ts.Movies().Put(&store.Movie{ID: "tt0118929", Title: "Dark City"})
	require.NoError(t, ts.Movies().Flush(ctx))

	// A second cache over the same driver sees the flushed snapshot.
	rehydrated := store.NewMovieCache(ts.GetDriver())
	require.NoError(t, rehydrated.Hydrate(ctx))

	record := rehydrated.Get("tt0133093", "", nil)
	require.NotNil(t, record)
	require.Equal(t, "The Matrix", record.Title)
	require.NotNil(t, record.Year)
	require.Equal(t, 1999, *record.Year)
	require.Equal(t, []string{"sci-fi", "action"}, record.Genres)

	record = rehydrated.Get("tt0118929", "", nil)
	require.NotNil(t, record)
	require.Nil(t, record.Year)
	require.Nil(t, record.Rating)
}
