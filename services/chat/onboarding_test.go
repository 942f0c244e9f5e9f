package chat

import (
	"context"
	"testing"

	"hustlr/database"
	"hustlr/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) provider(t *testing.T, phone string) *models.Provider {
	t.Helper()
	p, err := h.providers.GetByPhone(context.Background(), phone)
	require.NoError(t, err)
	return p
}

func TestProviderOnboardingWalksEveryStep(t *testing.T) {
	h := newHarness(t)
	h.registered(t, alice)

	assert.Equal(t, onboardingQuestions[models.StepName], h.send(t, alice, "I want to register as a provider"))
	assert.Equal(t, onboardingQuestions[models.StepServiceType], h.send(t, alice, "Alice Fixes"))
	assert.Equal(t, onboardingQuestions[models.StepCoverage], h.send(t, alice, "Plumber"))
	assert.Equal(t, onboardingQuestions[models.StepPolicy], h.sendCoords(t, alice, "", -1.29, 36.78))
	assert.Equal(t, onboardingQuestions[models.StepActivate], h.send(t, alice, "yes"))

	reply := h.send(t, alice, "yes")
	assert.Contains(t, reply, "You're live, Alice Fixes!")

	p := h.provider(t, alice)
	assert.Equal(t, "Alice Fixes", p.Name)
	assert.Equal(t, "plumber", p.ServiceType)
	assert.Equal(t, "Kilimani, Nairobi", p.Coverage)
	require.True(t, p.CoverageCoords.Valid())
	assert.True(t, p.AgreedPolicy)
	assert.True(t, p.Active)
	assert.Equal(t, models.StepNone, p.PendingField)

	// The user's own location is untouched by the coverage share.
	assert.Equal(t, "North, City", h.user(t, alice).Location)

	_, err := h.conversations.GetOpen(context.Background(), alice)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestProviderCoverageAsText(t *testing.T) {
	h := newHarness(t)
	h.registered(t, alice)

	h.send(t, alice, "register provider")
	h.send(t, alice, "Alice Fixes")
	h.send(t, alice, "window washing")
	h.send(t, alice, "Westlands")

	p := h.provider(t, alice)
	assert.Equal(t, "window washing", p.ServiceType)
	assert.Equal(t, "Westlands", p.Coverage)
	assert.Nil(t, p.CoverageCoords)
	assert.Equal(t, models.StepPolicy, p.PendingField)
}

func TestProviderDeclinesActivationThenGoesLive(t *testing.T) {
	h := newHarness(t)
	h.registered(t, alice)

	h.send(t, alice, "please register me as a service provider")
	h.send(t, alice, "Alice Fixes")
	h.send(t, alice, "electrician")
	h.send(t, alice, "Westlands")
	h.send(t, alice, "yes")
	assert.Contains(t, h.send(t, alice, "no"), "registered but not live")

	p := h.provider(t, alice)
	assert.False(t, p.Active)
	assert.False(t, p.Onboarding())

	assert.Contains(t, h.send(t, alice, "/provider status"), "Status: inactive")
	assert.Contains(t, h.send(t, alice, "ok go live"), "You're live, Alice Fixes!")
	assert.True(t, h.provider(t, alice).Active)
	assert.Equal(t, "You're already live.", h.send(t, alice, "go live"))
}

func TestOnboardingAnswersTakePriorityOverBooking(t *testing.T) {
	h := newHarness(t)
	h.registered(t, alice)

	h.send(t, alice, "register as provider")
	h.send(t, alice, "need a plumber tomorrow at 3pm")

	p := h.provider(t, alice)
	assert.Equal(t, "need a plumber tomorrow at 3pm", p.Name)
	assert.Equal(t, models.StepServiceType, p.PendingField)
	assert.Nil(t, h.openConversation(t, alice).Draft)
}

func TestRegisteringTwiceIsRefused(t *testing.T) {
	h := newHarness(t)
	h.registered(t, alice)
	require.NoError(t, h.providers.Create(context.Background(), &models.Provider{
		ID: "p1", Phone: alice, Name: "Alice Fixes", ServiceType: "plumber", Active: true, AgreedPolicy: true,
	}))

	assert.Equal(t, "You're already registered and live as a plumber.", h.send(t, alice, "register as provider"))
}

func TestProviderPolicyDeclineKeepsStep(t *testing.T) {
	h := newHarness(t)
	h.registered(t, alice)

	h.send(t, alice, "register as provider")
	h.send(t, alice, "Alice Fixes")
	h.send(t, alice, "painter")
	h.send(t, alice, "Westlands")

	assert.Contains(t, h.send(t, alice, "no"), "You need to accept the provider terms")
	assert.Equal(t, models.StepPolicy, h.provider(t, alice).PendingField)
}
