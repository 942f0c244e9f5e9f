package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"hustlr/database"
	memoryRepo "hustlr/database/repository/memory"
	"hustlr/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrationAsksOneFieldPerTurn(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, registrationQuestions[models.FieldName], h.send(t, alice, "hi"))
	assert.Equal(t, models.FieldName, h.user(t, alice).PendingField)

	assert.Equal(t, registrationQuestions[models.FieldLocation], h.send(t, alice, "Alice"))
	assert.Equal(t, registrationQuestions[models.FieldPolicy], h.send(t, alice, "Westlands, Nairobi"))

	first := h.openConversation(t, alice)
	reply := h.send(t, alice, "yes")
	assert.Contains(t, reply, "Thanks Alice, you're all set!")

	u := h.user(t, alice)
	assert.True(t, u.Registered())
	assert.Equal(t, "Westlands, Nairobi", u.Location)

	_, err := h.conversations.GetOpen(context.Background(), alice)
	assert.ErrorIs(t, err, database.ErrNotFound)
	closed, err := h.conversations.GetBySession(context.Background(), first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, closed.Status)
	require.NotEmpty(t, closed.Messages)
	assert.Equal(t, models.RoleAssistant, closed.Messages[len(closed.Messages)-1].Role)

	reply = h.send(t, alice, "hello")
	assert.Contains(t, reply, "near Westlands, Nairobi")
	assert.NotEqual(t, first.SessionID, h.openConversation(t, alice).SessionID)
}

func TestSlashCommandRunsBeforePendingAnswer(t *testing.T) {
	h := newHarness(t)
	h.send(t, alice, "hi")

	reply := h.send(t, alice, "/profile")
	assert.Contains(t, reply, "Your profile:")
	assert.Equal(t, models.FieldName, h.user(t, alice).PendingField)
	assert.Empty(t, h.user(t, alice).Name)
}

func TestDeclinedPolicyKeepsAsking(t *testing.T) {
	h := newHarness(t)
	h.send(t, alice, "hi")
	h.send(t, alice, "Alice")
	h.send(t, alice, "Nairobi")

	assert.Contains(t, h.send(t, alice, "no"), "You need to accept the terms")
	assert.Equal(t, models.FieldPolicy, h.user(t, alice).PendingField)
	assert.Equal(t, registrationQuestions[models.FieldPolicy], h.send(t, alice, "what terms?"))

	assert.Contains(t, h.send(t, alice, "yes I agree"), "you're all set")
	assert.True(t, h.user(t, alice).AgreedPolicy)
}

func TestSharedLocationAnswersPendingLocation(t *testing.T) {
	h := newHarness(t)
	h.send(t, alice, "hi")
	h.send(t, alice, "Alice")

	reply := h.sendCoords(t, alice, "", -1.29, 36.78)
	assert.Equal(t, registrationQuestions[models.FieldPolicy], reply)

	u := h.user(t, alice)
	assert.Equal(t, "Kilimani, Nairobi", u.Location)
	require.True(t, u.Coords.Valid())
	assert.InDelta(t, -1.29, u.Coords.Lat(), 1e-9)
	assert.Equal(t, models.FieldPolicy, u.PendingField)
}

func TestSharedLocationFallsBackToCoordinates(t *testing.T) {
	h := newHarness(t)
	h.assistant = h.build(func(d *Deps) { d.Geocoder = fakeGeocoder{err: errors.New("timeout")} })
	h.send(t, alice, "hi")
	h.send(t, alice, "Alice")
	h.sendCoords(t, alice, "", 1.5, 2.25)

	assert.Equal(t, "1.50000, 2.25000", h.user(t, alice).Location)
}

func TestResetClearsRegistration(t *testing.T) {
	h := newHarness(t)
	h.registered(t, alice, models.Address{Street: "12 Main", City: "City", IsDefault: true})

	assert.Contains(t, h.send(t, alice, "/reset"), "cleared")
	u := h.user(t, alice)
	assert.Empty(t, u.Name)
	assert.Empty(t, u.Location)
	assert.Nil(t, u.Coords)
	assert.False(t, u.AgreedPolicy)
	assert.Len(t, u.Addresses, 1)

	assert.Equal(t, registrationQuestions[models.FieldName], h.send(t, alice, "hi again"))
}

func TestEndClosesConversation(t *testing.T) {
	h := newHarness(t)
	h.registered(t, alice)
	h.send(t, alice, "hello")

	assert.Contains(t, h.send(t, alice, "/end"), "Conversation ended")
	_, err := h.conversations.GetOpen(context.Background(), alice)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)
	h.registered(t, alice)
	assert.Contains(t, h.send(t, alice, "/dance"), commandHelp)
}

func TestBookingsCommandListsConsumerAndProviderBookings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.registered(t, alice)
	require.NoError(t, h.providers.Create(ctx, &models.Provider{ID: "prov-a", Phone: alice, Name: "Alice Fixes", ServiceType: "handyman"}))

	require.NoError(t, h.bookings.Create(ctx, &models.Booking{
		ID: "b1", UserID: alice, ProviderID: "p9", Service: "plumber",
		Start: tomorrowAt3, End: tomorrowAt3.Add(time.Hour), Address: "12 Main, City",
	}))
	require.NoError(t, h.bookings.Create(ctx, &models.Booking{
		ID: "b2", UserID: "+999", ProviderID: "prov-a", Service: "handyman",
		Start: tomorrowAt3.Add(2 * time.Hour), End: tomorrowAt3.Add(3 * time.Hour),
	}))
	require.NoError(t, h.bookings.Create(ctx, &models.Booking{
		ID: "past", UserID: alice, ProviderID: "p9", Service: "cleaner",
		Start: testNow.Add(-48 * time.Hour), End: testNow.Add(-47 * time.Hour),
	}))

	reply := h.send(t, alice, "/bookings")
	assert.Contains(t, reply, "1. plumber on Fri 15 Mar at 15:00 at 12 Main, City")
	assert.Contains(t, reply, "2. handyman on Fri 15 Mar at 17:00 (you're the provider)")
	assert.NotContains(t, reply, "cleaner")

	assert.Equal(t, "You have no upcoming bookings.", h.send(t, "+254700000002", "/bookings"))
}

func TestProviderStatusCommand(t *testing.T) {
	h := newHarness(t)
	h.registered(t, alice)
	assert.Contains(t, h.send(t, alice, "/provider status"), "not registered as a provider")
}

func TestFallbackReplyUsesLocation(t *testing.T) {
	h := newHarness(t)
	h.registered(t, alice)

	reply := h.send(t, alice, "my toilet keeps running")
	assert.Contains(t, reply, "plumber")
	assert.Contains(t, reply, "North, City")

	conv := h.openConversation(t, alice)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "my toilet keeps running", conv.Messages[0].Content)
	assert.Nil(t, conv.Draft)
}

func TestAnonymousSenderKeepsSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	resp, err := h.assistant.HandleMessage(ctx, models.ChatRequest{Sender: "web-visitor", Message: "hi"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.SessionID)
	assert.Contains(t, resp.Reply, "What do you need?")

	again, err := h.assistant.HandleMessage(ctx, models.ChatRequest{Message: "need a painter", SessionID: resp.SessionID})
	require.NoError(t, err)
	assert.Equal(t, resp.SessionID, again.SessionID)
	assert.Contains(t, again.Reply, "painter")

	conv, err := h.conversations.GetBySession(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Len(t, conv.Messages, 4)
	assert.Empty(t, conv.Phone)
}

func TestAnonymousSenderCannotResumeForeignSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.registered(t, alice)
	h.send(t, alice, "hello")

	owned := h.openConversation(t, alice)
	before := len(owned.Messages)

	resp, err := h.assistant.HandleMessage(ctx, models.ChatRequest{Message: "what did they say?", SessionID: owned.SessionID})
	require.NoError(t, err)
	assert.NotEqual(t, owned.SessionID, resp.SessionID)

	after, err := h.conversations.GetBySession(ctx, owned.SessionID)
	require.NoError(t, err)
	assert.Len(t, after.Messages, before)
	assert.Equal(t, alice, after.Phone)

	anon, err := h.conversations.GetBySession(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Empty(t, anon.Phone)
	assert.Len(t, anon.Messages, 2)
}

func TestAnonymousClosedSessionStartsFresh(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	resp, err := h.assistant.HandleMessage(ctx, models.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	require.NoError(t, h.conversations.Close(ctx, resp.SessionID, time.Now()))

	again, err := h.assistant.HandleMessage(ctx, models.ChatRequest{Message: "hi again", SessionID: resp.SessionID})
	require.NoError(t, err)
	assert.NotEqual(t, resp.SessionID, again.SessionID)

	closed, err := h.conversations.GetBySession(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Len(t, closed.Messages, 2)
}

func TestEmptyMessageIsRejected(t *testing.T) {
	h := newHarness(t)
	_, err := h.assistant.HandleMessage(context.Background(), models.ChatRequest{Sender: alice, Message: "  "})
	assert.Error(t, err)
}

type failingNegotiations struct {
	*memoryRepo.ConversationRepo
}

func (failingNegotiations) SaveNegotiation(context.Context, string, models.Negotiation) error {
	return errors.New("write conflict")
}

func TestStoreFailureAnswersWithApology(t *testing.T) {
	h := newHarness(t)
	h.registered(t, alice)
	h.addProvider(t, "p1", "Ann's Plumbing", "plumber", 4.5, 2)
	h.assistant = h.build(func(d *Deps) { d.Conversations = failingNegotiations{h.conversations} })

	reply := h.send(t, alice, "need a plumber for a leak tomorrow at 3pm")
	assert.Equal(t, apologyReply, reply)

	conv := h.openConversation(t, alice)
	assert.Equal(t, apologyReply, conv.Messages[len(conv.Messages)-1].Content)
}

func TestRepliesAreStoredInOrder(t *testing.T) {
	h := newHarness(t)
	h.send(t, alice, "hi")
	h.send(t, alice, "Alice")

	conv := h.openConversation(t, alice)
	roles := make([]string, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		roles = append(roles, m.Role)
	}
	assert.Equal(t, "user,assistant,user,assistant", strings.Join(roles, ","))
}
