package chat

import (
	"errors"
	"fmt"
	"strings"

	"hustlr/models"
	"hustlr/services/booking"
	"hustlr/services/extraction"

	"go.uber.org/zap"
)

// negotiate advances the booking draft held on the conversation. It reports
// handled=false when no negotiation is underway and the message carries no
// booking details.
func (a *Assistant) negotiate(t *turn) (reply string, handled bool, err error) {
	n := &t.conv.Negotiation
	if n.Draft == nil {
		n.Draft = &models.BookingDraft{}
	}

	switch n.State {
	case models.StateAwaitingConfirm:
		reply, err = a.confirm(t)
		return reply, true, err

	case models.StateAwaitingAddressChoice:
		if i, ok := parseChoice(t.text, len(n.AddressOptions)); ok {
			addr := n.AddressOptions[i]
			n.Draft.Address = &addr
			n.AddressOptions = nil
			reply, err = a.progress(t)
			return reply, true, err
		}

	case models.StateAwaitingProviderChoice:
		if i, ok := parseChoice(t.text, len(n.ProviderOptions)); ok {
			opt := n.ProviderOptions[i]
			n.Draft.ProviderID = opt.ProviderID
			n.Draft.ProviderName = opt.Name
			n.ProviderOptions = nil
			reply, err = a.progress(t)
			return reply, true, err
		}
	}

	found, _ := extraction.Extract(a.extractionInput(t), *n.Draft)
	if n.State == models.StateUnset && !startsBooking(found) {
		return "", false, nil
	}
	n.Draft.Merge(found)
	reply, err = a.progress(t)
	return reply, true, err
}

// startsBooking reports whether a message outside any negotiation asks for a
// booking. An address alone does not, since one is derived from the user's
// location on every message.
func startsBooking(found models.BookingDraft) bool {
	return found.Service != "" || (found.Issue != "" && found.DateTime != "")
}

func (a *Assistant) extractionInput(t *turn) extraction.Input {
	in := extraction.Input{Text: t.text, Now: a.Now().In(a.Location)}
	if len(t.user.Addresses) == 0 {
		in.UserLocation = t.user.Location
	}
	known, err := a.Catalog.ServiceTypes(t.ctx)
	if err != nil {
		a.Logger.Warn("service types unavailable, matching vocabulary only", zap.Error(err))
	}
	in.KnownServices = known
	return in
}

// progress moves the draft to its next state: pick an address, pick a
// provider, confirm, or ask for whatever is still missing.
func (a *Assistant) progress(t *turn) (string, error) {
	n := &t.conv.Negotiation
	d := n.Draft
	t.branch = branchBooking

	if d.Address == nil {
		addr, choices := t.user.SavedAddress()
		switch {
		case addr != nil:
			d.Address = addr
		case len(choices) > 1:
			n.AddressOptions = choices
			n.State = models.StateAwaitingAddressChoice
			if err := a.saveNegotiation(t); err != nil {
				return "", err
			}
			return formatAddressOptions(choices), nil
		}
	}

	if d.Service != "" && d.ProviderID == "" {
		return a.offerProviders(t)
	}

	missing := d.Missing()
	if len(missing) == 0 && d.ProviderID != "" {
		n.State = models.StateAwaitingConfirm
		if err := a.saveNegotiation(t); err != nil {
			return "", err
		}
		return confirmationSummary(*d, a.Location), nil
	}

	n.State = models.StateCollecting
	if err := a.saveNegotiation(t); err != nil {
		return "", err
	}
	return a.askMissing(t, missing), nil
}

func (a *Assistant) askMissing(t *turn, missing []string) string {
	fallback := missingQuestion(missing)
	d := t.conv.Negotiation.Draft
	instruction := fmt.Sprintf(
		"The user is booking a %s. Ask them, in one short friendly sentence, for: %s.",
		orDefault(d.Service, "service provider"), strings.Join(missing, ", "))
	return a.phrase(t.ctx, instruction, fallback)
}

// offerProviders ranks providers for the draft's service and stores them as
// numbered options.
func (a *Assistant) offerProviders(t *turn) (string, error) {
	n := &t.conv.Negotiation
	d := n.Draft

	req := booking.RankRequest{Service: d.Service, Coords: t.user.Coords}
	if start, err := d.Start(); err == nil {
		req.Start = &start
	}
	ranked, err := a.Ranker.Rank(t.ctx, req)
	if err != nil {
		return "", err
	}
	if len(ranked) == 0 {
		if err := a.clearNegotiation(t); err != nil {
			return "", err
		}
		return fmt.Sprintf("Sorry, I couldn't find any %s available near you right now. Is there another service I can help with?", d.Service), nil
	}

	n.ProviderOptions = make([]models.ProviderOption, 0, len(ranked))
	for _, r := range ranked {
		n.ProviderOptions = append(n.ProviderOptions, r.Option())
	}
	n.State = models.StateAwaitingProviderChoice
	if err := a.saveNegotiation(t); err != nil {
		return "", err
	}

	intro := a.phrase(t.ctx,
		fmt.Sprintf("In one short upbeat sentence, tell the user you found some %ss for their request. Do not list them.", d.Service),
		fmt.Sprintf("Here are the best %ss I found:", d.Service))
	return intro + "\n" + formatProviderOptions(n.ProviderOptions), nil
}

// confirm handles the answer to the confirmation summary. Anything other
// than yes or no shows the summary again without booking.
func (a *Assistant) confirm(t *turn) (string, error) {
	t.branch = branchBooking
	n := &t.conv.Negotiation
	switch {
	case isYes(t.text):
		return a.commit(t)
	case isNo(t.text):
		if err := a.clearNegotiation(t); err != nil {
			return "", err
		}
		return "Okay, I've cancelled that booking request. Anything else I can help with?", nil
	}
	return confirmationSummary(*n.Draft, a.Location), nil
}

func (a *Assistant) commit(t *turn) (string, error) {
	n := &t.conv.Negotiation
	d := *n.Draft
	if len(d.Missing()) > 0 || d.ProviderID == "" {
		return a.progress(t)
	}

	res, err := a.Committer.Commit(t.ctx, booking.CommitRequest{
		UserID: t.phone,
		Draft:  d,
		Coords: t.user.Coords,
		Source: "chat",
	})
	if errors.Is(err, booking.ErrSlotTaken) {
		n.Draft.DateTime = ""
		n.State = models.StateCollecting
		if err := a.saveNegotiation(t); err != nil {
			return "", err
		}
		return fmt.Sprintf("Sorry, %s was just booked for that time and no other %s is free then. What other time works for you?",
			d.ProviderName, d.Service), nil
	}
	if err != nil {
		return "", err
	}

	if err := a.clearNegotiation(t); err != nil {
		return "", err
	}
	if d.Address != nil && t.user.RememberAddress(*d.Address) {
		if err := a.saveUser(t); err != nil {
			a.Logger.Warn("failed to save address", zap.String("phone", t.phone), zap.Error(err))
		}
	}

	b := res.Booking
	a.Logger.Info("booking committed",
		zap.String("bookingId", b.ID), zap.String("providerId", b.ProviderID),
		zap.String("phone", t.phone), zap.Bool("substituted", res.Substituted))

	var sb strings.Builder
	if res.Substituted {
		fmt.Fprintf(&sb, "%s was just taken, so I booked %s instead. ", d.ProviderName, res.ProviderName)
	}
	fmt.Fprintf(&sb, "Booked! %s will come on %s at %s. Reference: %s.",
		res.ProviderName, formatWhen(b.Start.In(a.Location)), b.Address, shortRef(b.ID))
	return sb.String(), nil
}

func (a *Assistant) saveNegotiation(t *turn) error {
	return a.Conversations.SaveNegotiation(t.ctx, t.conv.SessionID, t.conv.Negotiation)
}

func (a *Assistant) clearNegotiation(t *turn) error {
	if err := a.Conversations.ClearNegotiation(t.ctx, t.conv.SessionID); err != nil {
		return err
	}
	t.conv.Negotiation = models.Negotiation{}
	return nil
}

func shortRef(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
