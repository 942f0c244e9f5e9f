package chat

import (
	"fmt"
	"strings"

	"hustlr/models"
	"hustlr/services/extraction"
	"hustlr/services/geocode"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func wantsProviderSignup(lower string) bool {
	return strings.Contains(lower, "register") && strings.Contains(lower, "provider")
}

// startOnboarding creates the provider record and asks the first question.
func (a *Assistant) startOnboarding(t *turn) (string, error) {
	if p := t.provider; p != nil {
		if p.Active {
			return t.reply(branchOnboarding, fmt.Sprintf("You're already registered and live as a %s.", p.ServiceType))
		}
		return t.reply(branchOnboarding, "You're already registered as a provider. Say \"go live\" to start receiving bookings.")
	}

	now := a.Now()
	p := &models.Provider{
		ID:           uuid.New().String(),
		Phone:        t.phone,
		PendingField: models.StepName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.Providers.Create(t.ctx, p); err != nil {
		return "", err
	}
	t.provider = p
	a.Logger.Info("provider onboarding started", zap.String("phone", t.phone), zap.String("providerId", p.ID))
	return t.reply(branchOnboarding, onboardingQuestions[models.StepName])
}

// answerOnboarding consumes the message as the answer to the provider's
// current step and moves to the next one.
func (a *Assistant) answerOnboarding(t *turn) (string, error) {
	p := t.provider
	step := p.PendingField

	switch step {
	case models.StepName:
		if t.text == "" {
			return t.reply(branchOnboarding, onboardingQuestions[step])
		}
		p.Name = t.text

	case models.StepServiceType:
		if t.text == "" {
			return t.reply(branchOnboarding, onboardingQuestions[step])
		}
		known, err := a.Catalog.ServiceTypes(t.ctx)
		if err != nil {
			a.Logger.Warn("service types unavailable", zap.Error(err))
		}
		service := extraction.MatchService(t.text, known)
		if service == "" {
			service = t.text
		}
		p.ServiceType = strings.ToLower(strings.TrimSpace(service))

	case models.StepCoverage:
		switch {
		case t.req.HasCoords():
			lat, lng := *t.req.Lat, *t.req.Lng
			p.CoverageCoords = models.NewPoint(lat, lng)
			p.Coverage = geocode.Label(t.ctx, a.Geocoder, lat, lng, a.Logger)
		case t.text != "":
			p.Coverage = t.text
		default:
			return t.reply(branchOnboarding, onboardingQuestions[step])
		}

	case models.StepPolicy:
		if !isYes(t.text) {
			if isNo(t.text) {
				return t.reply(branchOnboarding, "You need to accept the provider terms to receive bookings. Reply yes whenever you're ready.")
			}
			return t.reply(branchOnboarding, onboardingQuestions[step])
		}
		p.AgreedPolicy = true

	case models.StepActivate:
		return a.answerActivation(t)

	default:
		a.Logger.Warn("unknown onboarding step, clearing it", zap.String("phone", p.Phone), zap.String("step", string(step)))
		p.PendingField = models.StepNone
		if err := a.saveProvider(t); err != nil {
			return "", err
		}
		return t.reply(branchOnboarding, providerStatusText(p))
	}

	p.PendingField = step.Next()
	if err := a.saveProvider(t); err != nil {
		return "", err
	}
	return t.reply(branchOnboarding, onboardingQuestions[p.PendingField])
}

// answerActivation ends onboarding. Either answer closes the conversation.
func (a *Assistant) answerActivation(t *turn) (string, error) {
	p := t.provider
	var reply string
	switch {
	case isYes(t.text) || strings.Contains(t.lower, "go live"):
		p.Active = true
		reply = fmt.Sprintf("You're live, %s! Customers looking for a %s near %s can now book you.", p.Name, p.ServiceType, p.Coverage)
	case isNo(t.text):
		p.Active = false
		reply = "You're registered but not live yet. Say \"go live\" whenever you're ready."
	default:
		return t.reply(branchOnboarding, onboardingQuestions[models.StepActivate])
	}
	p.PendingField = models.StepNone
	if err := a.saveProvider(t); err != nil {
		return "", err
	}
	a.Catalog.Invalidate(t.ctx)
	a.Logger.Info("provider registered",
		zap.String("providerId", p.ID), zap.String("service", p.ServiceType), zap.Bool("active", p.Active))
	t.closeAfter = true
	return t.reply(branchOnboarding, reply)
}

// goLive activates a registered provider.
func (a *Assistant) goLive(t *turn) (string, error) {
	p := t.provider
	if p.Active {
		return t.reply(branchOnboarding, "You're already live.")
	}
	if !p.AgreedPolicy {
		p.PendingField = models.StepPolicy
		if err := a.saveProvider(t); err != nil {
			return "", err
		}
		return t.reply(branchOnboarding, onboardingQuestions[models.StepPolicy])
	}
	p.Active = true
	if err := a.saveProvider(t); err != nil {
		return "", err
	}
	a.Catalog.Invalidate(t.ctx)
	t.closeAfter = true
	return t.reply(branchOnboarding, fmt.Sprintf("You're live, %s! You'll now appear in %s searches.", p.Name, p.ServiceType))
}

func (a *Assistant) saveProvider(t *turn) error {
	t.provider.UpdatedAt = a.Now()
	return a.Providers.Update(t.ctx, t.provider)
}
