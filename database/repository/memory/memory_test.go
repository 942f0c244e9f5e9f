package memoryRepo

import (
	"context"
	"testing"
	"time"

	"hustlr/database"
	bookingRepo "hustlr/database/repository/booking"
	providerRepo "hustlr/database/repository/provider"
	"hustlr/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingOverlapExcludesTouchingIntervals(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepo()
	base := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &models.Booking{ID: "b1", ProviderID: "p1", Start: base, End: base.Add(time.Hour)}))

	cases := []struct {
		name     string
		provider string
		start    time.Time
		conflict bool
	}{
		{"touching after", "p1", base.Add(time.Hour), false},
		{"touching before", "p1", base.Add(-time.Hour), false},
		{"half overlap", "p1", base.Add(30 * time.Minute), true},
		{"same slot", "p1", base, true},
		{"other provider", "p2", base, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.FindOverlap(ctx, tc.provider, tc.start, tc.start.Add(time.Hour))
			require.NoError(t, err)
			assert.Equal(t, tc.conflict, got != nil)
		})
	}
}

func TestUpcomingCoversUserAndProvider(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepo()
	now := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	for i, b := range []models.Booking{
		{ID: "past", UserID: "+1", ProviderID: "px", Start: now.Add(-2 * time.Hour)},
		{ID: "mine-late", UserID: "+1", ProviderID: "px", Start: now.Add(5 * time.Hour)},
		{ID: "mine-early", UserID: "+1", ProviderID: "px", Start: now.Add(time.Hour)},
		{ID: "as-provider", UserID: "+2", ProviderID: "p1", Start: now.Add(3 * time.Hour)},
		{ID: "someone-else", UserID: "+3", ProviderID: "py", Start: now.Add(2 * time.Hour)},
	} {
		b := b
		b.End = b.Start.Add(time.Hour)
		require.NoError(t, repo.Create(ctx, &b), i)
	}

	got, err := repo.Upcoming(ctx, bookingRepo.UpcomingQuery{UserID: "+1", ProviderID: "p1", After: now, Limit: 5})
	require.NoError(t, err)
	var ids []string
	for _, b := range got {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"mine-early", "as-provider", "mine-late"}, ids)
}

func TestNearbyFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	repo := NewProviderRepo()
	add := func(phone, service string, active bool, lat, lng float64) {
		require.NoError(t, repo.Create(ctx, &models.Provider{
			ID: phone, Phone: phone, ServiceType: service, Active: active,
			CoverageCoords: models.NewPoint(lat, lng),
		}))
	}
	add("far", "plumber", true, -1.30, 36.90)
	add("near", "plumber", true, -1.281, 36.821)
	add("inactive", "plumber", false, -1.28, 36.82)
	add("painter", "painter", true, -1.28, 36.82)
	add("out-of-range", "plumber", true, 0.5, 37.5)

	got, err := repo.Nearby(ctx, providerRepo.NearbyQuery{
		ServiceType: "plumber",
		Point:       *models.NewPoint(-1.28, 36.82),
		MaxMeters:   30_000,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "near", got[0].Phone)
	assert.Equal(t, "far", got[1].Phone)
	assert.Less(t, got[0].DistanceMeters, got[1].DistanceMeters)

	types, err := repo.DistinctServiceTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"painter", "plumber"}, types)
}

func TestConversationLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepo()

	_, err := repo.GetOpen(ctx, "+1")
	assert.ErrorIs(t, err, database.ErrNotFound)

	require.NoError(t, repo.Create(ctx, &models.Conversation{SessionID: "s1", Phone: "+1", Status: models.StatusOpen, StartedAt: time.Now()}))
	require.NoError(t, repo.AppendMessage(ctx, "s1", models.Message{Role: models.RoleUser, Content: "hi"}))
	require.NoError(t, repo.SaveNegotiation(ctx, "s1", models.Negotiation{
		Draft: &models.BookingDraft{Service: "plumber"},
		State: models.StateCollecting,
	}))

	open, err := repo.GetOpen(ctx, "+1")
	require.NoError(t, err)
	assert.Len(t, open.Messages, 1)
	assert.Equal(t, models.StateCollecting, open.State)
	assert.Equal(t, "plumber", open.Draft.Service)

	require.NoError(t, repo.ClearNegotiation(ctx, "s1"))
	require.NoError(t, repo.Close(ctx, "s1", time.Now()))

	_, err = repo.GetOpen(ctx, "+1")
	assert.ErrorIs(t, err, database.ErrNotFound)
	closed, err := repo.GetBySession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, closed.Status)
	assert.Nil(t, closed.Draft)
}
