package chat

import (
	"context"
	"testing"
	"time"

	memoryRepo "hustlr/database/repository/memory"
	"hustlr/models"
	"hustlr/services/booking"
	ai "hustlr/services/intelligence"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const alice = "+254700000001"

var testNow = time.Date(2030, 3, 14, 9, 30, 0, 0, time.UTC)

// tomorrowAt3 is what "tomorrow at 3pm" resolves to at testNow.
var tomorrowAt3 = time.Date(2030, 3, 15, 15, 0, 0, 0, time.UTC)

type fakeGeocoder struct {
	label string
	err   error
}

func (g fakeGeocoder) Reverse(context.Context, float64, float64) (string, error) {
	return g.label, g.err
}

type harness struct {
	users         *memoryRepo.UserRepo
	providers     *memoryRepo.ProviderRepo
	bookings      *memoryRepo.BookingRepo
	conversations *memoryRepo.ConversationRepo
	assistant     *Assistant
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		users:         memoryRepo.NewUserRepo(),
		providers:     memoryRepo.NewProviderRepo(),
		bookings:      memoryRepo.NewBookingRepo(),
		conversations: memoryRepo.NewConversationRepo(),
	}
	h.assistant = h.build(func(*Deps) {})
	return h
}

// build wires an assistant over the harness stores. mutate can swap collaborators.
func (h *harness) build(mutate func(*Deps)) *Assistant {
	logger := zap.NewNop()
	availability := &booking.Availability{Bookings: h.bookings}
	ranker := booking.NewRanker(h.providers, availability, time.Hour, 30, logger)
	d := Deps{
		Users:         h.users,
		Providers:     h.providers,
		Bookings:      h.bookings,
		Conversations: h.conversations,
		Ranker:        ranker,
		Committer:     booking.NewCommitter(h.bookings, availability, ranker, time.Hour, logger),
		Generator:     ai.LocalGenerator{},
		Geocoder:      fakeGeocoder{label: "Kilimani, Nairobi"},
		Logger:        logger,
		Location:      time.UTC,
		Now:           func() time.Time { return testNow },
	}
	mutate(&d)
	return NewAssistant(d)
}

func (h *harness) send(t *testing.T, sender, text string) string {
	t.Helper()
	resp, err := h.assistant.HandleMessage(context.Background(), models.ChatRequest{Sender: sender, Message: text})
	require.NoError(t, err)
	return resp.Reply
}

func (h *harness) sendCoords(t *testing.T, sender, text string, lat, lng float64) string {
	t.Helper()
	resp, err := h.assistant.HandleMessage(context.Background(), models.ChatRequest{
		Sender: sender, Message: text, Lat: &lat, Lng: &lng,
	})
	require.NoError(t, err)
	return resp.Reply
}

// registered seeds a user who has finished registration.
func (h *harness) registered(t *testing.T, phone string, addresses ...models.Address) *models.User {
	t.Helper()
	u := &models.User{
		Phone:        phone,
		Name:         "Alice",
		Location:     "North, City",
		Coords:       models.NewPoint(0, 0),
		AgreedPolicy: true,
		Addresses:    addresses,
	}
	require.NoError(t, h.users.Create(context.Background(), u))
	return u
}

func (h *harness) addProvider(t *testing.T, id, name, service string, rating, km float64) {
	t.Helper()
	require.NoError(t, h.providers.Create(context.Background(), &models.Provider{
		ID: id, Phone: "+1000" + id, Name: name, ServiceType: service,
		Active: true, AgreedPolicy: true, Rating: &rating,
		CoverageCoords: models.NewPoint(km/111.195, 0),
	}))
}

func (h *harness) user(t *testing.T, phone string) *models.User {
	t.Helper()
	u, err := h.users.GetByPhone(context.Background(), phone)
	require.NoError(t, err)
	return u
}

func (h *harness) openConversation(t *testing.T, phone string) *models.Conversation {
	t.Helper()
	c, err := h.conversations.GetOpen(context.Background(), phone)
	require.NoError(t, err)
	return c
}
