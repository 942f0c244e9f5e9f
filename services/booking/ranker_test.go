package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankAvailabilityBeatsRatingBeatsDistance(t *testing.T) {
	f := newFixture(t)
	f.addProvider(t, "A", "plumber", rating(4.5), 2)
	f.addProvider(t, "B", "plumber", rating(5.0), 1)
	f.addProvider(t, "C", "plumber", rating(4.0), 1)
	f.book(t, "B", f.slotStart)

	ranked, err := f.ranker.Rank(context.Background(), RankRequest{
		Service: "plumber", Coords: f.origin, Start: &f.slotStart,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, ids(ranked))
	assert.True(t, ranked[0].Available)
	assert.False(t, ranked[2].Available)
}

func TestRankAnnotatesDistanceAndEta(t *testing.T) {
	f := newFixture(t)
	f.addProvider(t, "A", "plumber", nil, 7)

	ranked, err := f.ranker.Rank(context.Background(), RankRequest{Service: "plumber", Coords: f.origin})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	require.NotNil(t, ranked[0].DistanceMeters)
	assert.InDelta(t, 7000, *ranked[0].DistanceMeters, 10)
	// 7 km at 35 km/h is 12 minutes.
	assert.Equal(t, 12, *ranked[0].EtaMinutes)
	assert.Equal(t, 0.0, ranked[0].Rating)
	// No start requested, so every candidate counts as available.
	assert.True(t, ranked[0].Available)
}

func TestRankFallsBackToListingWithoutDistance(t *testing.T) {
	f := newFixture(t)
	f.addProvider(t, "far", "plumber", rating(3), 80)
	f.addProvider(t, "nocoords", "plumber", rating(4), -1)

	t.Run("nothing within radius", func(t *testing.T) {
		ranked, err := f.ranker.Rank(context.Background(), RankRequest{Service: "plumber", Coords: f.origin})
		require.NoError(t, err)
		assert.Equal(t, []string{"nocoords", "far"}, ids(ranked))
		for _, r := range ranked {
			assert.Nil(t, r.DistanceMeters)
			assert.Nil(t, r.EtaMinutes)
		}
	})

	t.Run("user coordinates unknown", func(t *testing.T) {
		ranked, err := f.ranker.Rank(context.Background(), RankRequest{Service: "plumber"})
		require.NoError(t, err)
		assert.Len(t, ranked, 2)
	})
}

func TestRankCapsShortlistAndHonoursExclude(t *testing.T) {
	f := newFixture(t)
	for i, id := range []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7"} {
		f.addProvider(t, id, "cleaner", rating(float64(i)), 1)
	}
	ranked, err := f.ranker.Rank(context.Background(), RankRequest{
		Service: "cleaner", Coords: f.origin, Exclude: []string{"p7"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p6", "p5", "p4", "p3", "p2"}, ids(ranked))
}

func TestSortRankedUnknownDistanceLast(t *testing.T) {
	near, far := 100.0, 900.0
	ranked := []RankedProvider{
		{Available: true, Rating: 4},
		{Available: true, Rating: 4, DistanceMeters: &far},
		{Available: true, Rating: 4, DistanceMeters: &near},
	}
	SortRanked(ranked)
	assert.Equal(t, &near, ranked[0].DistanceMeters)
	assert.Equal(t, &far, ranked[1].DistanceMeters)
	assert.Nil(t, ranked[2].DistanceMeters)
}

func TestEtaMinutes(t *testing.T) {
	assert.Equal(t, 0, EtaMinutes(0))
	assert.Equal(t, 60, EtaMinutes(35_000))
	assert.Equal(t, 3, EtaMinutes(1_500))
}
