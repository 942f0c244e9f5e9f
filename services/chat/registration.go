package chat

import (
	"fmt"
	"strings"

	bookingRepo "hustlr/database/repository/booking"
	"hustlr/models"

	"go.uber.org/zap"
)

// askRegistration records field as pending and asks for it.
func (a *Assistant) askRegistration(t *turn, field models.RegistrationField) (string, error) {
	t.user.PendingField = field
	if err := a.saveUser(t); err != nil {
		return "", err
	}
	return t.reply(branchRegister, a.phrase(t.ctx, registrationInstructions[field], registrationQuestions[field]))
}

// answerRegistration consumes the whole message as the answer to the pending
// field, then asks for the next one. Agreeing to the policy completes
// registration and closes the conversation.
func (a *Assistant) answerRegistration(t *turn) (string, error) {
	u := t.user
	field := u.PendingField

	switch field {
	case models.FieldName:
		if t.text == "" {
			return t.reply(branchRegister, registrationQuestions[field])
		}
		u.Name = t.text
	case models.FieldLocation:
		if t.text == "" {
			return t.reply(branchRegister, registrationQuestions[field])
		}
		u.Location = t.text
	case models.FieldPolicy:
		if !isYes(t.text) {
			if isNo(t.text) {
				return t.reply(branchRegister, "You need to accept the terms to use Hustlr. Reply yes whenever you're ready.")
			}
			return t.reply(branchRegister, registrationQuestions[field])
		}
		u.AgreedPolicy = true
	default:
		a.Logger.Warn("unknown pending field, clearing it", zap.String("phone", u.Phone), zap.String("field", string(field)))
	}
	u.PendingField = models.FieldNone

	next := u.NextMissingField()
	if next == models.FieldNone {
		if err := a.saveUser(t); err != nil {
			return "", err
		}
		t.closeAfter = true
		return t.reply(branchRegister, fmt.Sprintf(
			"Thanks %s, you're all set! Tell me what you need, e.g. \"I need a plumber for a leak tomorrow at 3pm\".", u.Name))
	}
	return a.askRegistration(t, next)
}

// handleCommand runs a slash command, ahead of any pending question.
func (a *Assistant) handleCommand(t *turn) (string, error) {
	t.branch = branchCommand
	cmd := strings.Join(strings.Fields(t.lower), " ")

	switch cmd {
	case "/reset":
		t.user.Reset()
		if err := a.saveUser(t); err != nil {
			return "", err
		}
		if err := a.Conversations.ClearNegotiation(t.ctx, t.conv.SessionID); err != nil {
			return "", err
		}
		t.conv.Negotiation = models.Negotiation{}
		return "Your details have been cleared. Send any message to start again.", nil

	case "/end":
		t.closeAfter = true
		return "Conversation ended. Message me any time to start a new one.", nil

	case "/profile":
		return profileText(t.user), nil

	case "/provider status":
		return providerStatusText(t.provider), nil

	case "/bookings":
		return a.listBookings(t)
	}
	return "Sorry, I don't know that command. " + commandHelp, nil
}

func profileText(u *models.User) string {
	var sb strings.Builder
	sb.WriteString("Your profile:")
	fmt.Fprintf(&sb, "\nName: %s", orDash(u.Name))
	fmt.Fprintf(&sb, "\nLocation: %s", orDash(u.Location))
	fmt.Fprintf(&sb, "\nTerms accepted: %s", yesNo(u.AgreedPolicy))
	for i, addr := range u.Addresses {
		marker := ""
		if addr.IsDefault {
			marker = " (default)"
		}
		fmt.Fprintf(&sb, "\nAddress %d: %s%s", i+1, addr.String(), marker)
	}
	return sb.String()
}

func providerStatusText(p *models.Provider) string {
	if p == nil {
		return "You're not registered as a provider. Say \"register as provider\" to start."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Provider: %s", orDash(p.Name))
	fmt.Fprintf(&sb, "\nService: %s", orDash(p.ServiceType))
	fmt.Fprintf(&sb, "\nCoverage: %s", orDash(p.Coverage))
	switch {
	case p.Onboarding():
		fmt.Fprintf(&sb, "\nStatus: registration in progress (%s)", p.PendingField)
	case p.Active:
		sb.WriteString("\nStatus: live")
	default:
		sb.WriteString("\nStatus: inactive. Say \"go live\" to start receiving bookings.")
	}
	if p.Rating != nil {
		fmt.Fprintf(&sb, "\nRating: %.1f", *p.Rating)
	}
	return sb.String()
}

// listBookings shows upcoming bookings the phone holds as a consumer or,
// for providers, is assigned.
func (a *Assistant) listBookings(t *turn) (string, error) {
	q := bookingRepo.UpcomingQuery{UserID: t.phone, After: a.Now(), Limit: maxListBookings}
	if t.provider != nil {
		q.ProviderID = t.provider.ID
	}
	upcoming, err := a.Bookings.Upcoming(t.ctx, q)
	if err != nil {
		return "", err
	}
	if len(upcoming) == 0 {
		return "You have no upcoming bookings.", nil
	}

	var sb strings.Builder
	sb.WriteString("Your upcoming bookings:")
	for i, b := range upcoming {
		role := ""
		if t.provider != nil && b.ProviderID == t.provider.ID {
			role = " (you're the provider)"
		}
		fmt.Fprintf(&sb, "\n%d. %s on %s", i+1, b.Service, formatWhen(b.Start.In(a.Location)))
		if b.Address != "" {
			fmt.Fprintf(&sb, " at %s", b.Address)
		}
		sb.WriteString(role)
	}
	return sb.String(), nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
