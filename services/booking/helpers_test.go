package booking

import (
	"context"
	"testing"
	"time"

	memoryRepo "hustlr/database/repository/memory"
	"hustlr/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// kmNorth is the latitude offset of a point the given distance north of the equator origin.
func kmNorth(km float64) float64 { return km / 111.195 }

type fixture struct {
	providers *memoryRepo.ProviderRepo
	bookings  *memoryRepo.BookingRepo
	ranker    *Ranker
	committer *Committer
	service   *Service
	origin    *models.GeoPoint
	slotStart time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		providers: memoryRepo.NewProviderRepo(),
		bookings:  memoryRepo.NewBookingRepo(),
		origin:    models.NewPoint(0, 0),
		slotStart: time.Date(2030, 5, 2, 15, 0, 0, 0, time.UTC),
	}
	logger := zap.NewNop()
	availability := &Availability{Bookings: f.bookings}
	f.ranker = NewRanker(f.providers, availability, time.Hour, 30, logger)
	f.committer = NewCommitter(f.bookings, availability, f.ranker, time.Hour, logger)
	f.service = NewService(f.bookings, availability, f.ranker, logger)
	return f
}

func (f *fixture) addProvider(t *testing.T, id, service string, rating *float64, km float64) {
	t.Helper()
	p := &models.Provider{
		ID: id, Phone: "+" + id, Name: "Provider " + id,
		ServiceType: service, Active: true, Rating: rating,
	}
	if km >= 0 {
		p.CoverageCoords = models.NewPoint(kmNorth(km), 0)
	}
	require.NoError(t, f.providers.Create(context.Background(), p))
}

func (f *fixture) book(t *testing.T, providerID string, start time.Time) {
	t.Helper()
	require.NoError(t, f.bookings.Create(context.Background(), &models.Booking{
		ID: "existing-" + providerID + start.Format("1504"), UserID: "+999",
		ProviderID: providerID, Start: start, End: start.Add(time.Hour),
	}))
}

func rating(v float64) *float64 { return &v }

func ids(ranked []RankedProvider) []string {
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.Provider.ID)
	}
	return out
}
