// Package chat holds the conversation state machine. One call to
// HandleMessage handles one inbound message and produces exactly one reply.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"hustlr/database"
	bookingRepo "hustlr/database/repository/booking"
	conversationRepo "hustlr/database/repository/conversation"
	providerRepo "hustlr/database/repository/provider"
	userRepo "hustlr/database/repository/user"
	"hustlr/metrics"
	"hustlr/models"
	"hustlr/services/booking"
	"hustlr/services/geocode"
	ai "hustlr/services/intelligence"
	"hustlr/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Deps are the collaborators of an Assistant.
type Deps struct {
	Users         userRepo.UserRepository
	Providers     providerRepo.ProviderRepository
	Bookings      bookingRepo.BookingRepository
	Conversations conversationRepo.ConversationRepository

	Ranker    *booking.Ranker
	Committer *booking.Committer
	Catalog   *booking.Catalog

	Generator ai.Generator
	Geocoder  geocode.ReverseGeocoder
	// Locker serialises turns per phone. Nil means no locking.
	Locker Locker
	Logger *zap.Logger

	// Location resolves "today" and "tomorrow". Defaults to time.Local.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

// Assistant is the conversation state machine.
type Assistant struct {
	Deps
}

func NewAssistant(d Deps) *Assistant {
	if d.Locker == nil {
		d.Locker = NoopLocker{}
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Generator == nil {
		d.Generator = ai.LocalGenerator{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Catalog == nil {
		d.Catalog = booking.NewCatalog(d.Providers, nil, d.Logger)
	}
	return &Assistant{Deps: d}
}

// Branches label which part of the state machine answered a turn.
const (
	branchAnonymous  = "anonymous"
	branchCommand    = "command"
	branchRegister   = "registration"
	branchOnboarding = "provider_onboarding"
	branchBooking    = "booking"
	branchFallback   = "fallback"
	branchError      = "error"
)

// turn is the state loaded for one inbound message.
type turn struct {
	ctx      context.Context
	req      models.ChatRequest
	text     string
	lower    string
	phone    string
	user     *models.User
	provider *models.Provider
	conv     *models.Conversation

	branch string
	// closeAfter closes the conversation once the reply is stored.
	closeAfter bool
}

func (t *turn) reply(branch, text string) (string, error) {
	t.branch = branch
	return text, nil
}

// HandleMessage runs one turn. Only an unusable request yields an error.
// Failures inside the turn are logged and answered with an apology.
func (a *Assistant) HandleMessage(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	start := time.Now()
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" && !req.HasCoords() {
		return models.ChatResponse{}, errors.New("message is empty")
	}

	phone := utils.NormalizePhone(req.Sender)
	if phone == "" {
		resp, err := a.handleAnonymous(ctx, req)
		a.observe(branchAnonymous, start)
		return resp, err
	}

	unlock, err := a.Locker.Lock(ctx, phone)
	if err != nil {
		a.Logger.Warn("turn lock unavailable, continuing unlocked", zap.String("phone", phone), zap.Error(err))
	} else {
		defer unlock()
	}

	t := &turn{
		ctx:   ctx,
		req:   req,
		text:  req.Message,
		lower: strings.ToLower(req.Message),
		phone: phone,
	}
	if err := a.load(t); err != nil {
		a.Logger.Error("failed to load conversation state", zap.String("phone", phone), zap.Error(err))
		a.observe(branchError, start)
		sessionID := ""
		if t.conv != nil {
			sessionID = t.conv.SessionID
		}
		return models.ChatResponse{Reply: apologyReply, SessionID: sessionID}, nil
	}

	reply, err := a.route(t)
	if err != nil {
		a.Logger.Error("chat turn failed",
			zap.String("phone", phone), zap.String("sessionId", t.conv.SessionID), zap.Error(err))
		reply, t.branch, t.closeAfter = apologyReply, branchError, false
	}
	a.record(t, reply)
	a.observe(t.branch, start)
	return models.ChatResponse{Reply: reply, SessionID: t.conv.SessionID}, nil
}

func (a *Assistant) observe(branch string, start time.Time) {
	metrics.ChatTurns.WithLabelValues(branch).Inc()
	metrics.ChatTurnDuration.WithLabelValues(branch).Observe(time.Since(start).Seconds())
}

// load fetches or creates the user and the open conversation, looks up any
// provider record and stores the inbound message.
func (a *Assistant) load(t *turn) error {
	ctx := t.ctx
	user, err := a.Users.GetByPhone(ctx, t.phone)
	switch {
	case errors.Is(err, database.ErrNotFound):
		now := a.Now()
		user = &models.User{Phone: t.phone, CreatedAt: now, UpdatedAt: now}
		if err := a.Users.Create(ctx, user); err != nil {
			return err
		}
		a.Logger.Info("new user", zap.String("phone", t.phone))
	case err != nil:
		return err
	}
	t.user = user

	provider, err := a.Providers.GetByPhone(ctx, t.phone)
	switch {
	case errors.Is(err, database.ErrNotFound):
	case err != nil:
		return err
	default:
		t.provider = provider
	}

	conv, err := a.Conversations.GetOpen(ctx, t.phone)
	switch {
	case errors.Is(err, database.ErrNotFound):
		conv, err = a.openConversation(ctx, t.phone, "")
		if err != nil {
			return err
		}
	case err != nil:
		return err
	}
	t.conv = conv

	content := t.text
	if content == "" && t.req.HasCoords() {
		content = "[shared location]"
	}
	return a.appendMessage(ctx, t.conv, models.RoleUser, content)
}

func (a *Assistant) openConversation(ctx context.Context, phone, sessionID string) (*models.Conversation, error) {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	conv := &models.Conversation{
		SessionID: sessionID,
		Phone:     phone,
		Status:    models.StatusOpen,
		StartedAt: a.Now(),
	}
	if err := a.Conversations.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (a *Assistant) appendMessage(ctx context.Context, conv *models.Conversation, role, content string) error {
	msg := models.Message{Role: role, Content: content, At: a.Now()}
	if err := a.Conversations.AppendMessage(ctx, conv.SessionID, msg); err != nil {
		return err
	}
	conv.Messages = append(conv.Messages, msg)
	return nil
}

// record stores the reply and closes the conversation when the turn asked for it.
func (a *Assistant) record(t *turn, reply string) {
	if err := a.appendMessage(t.ctx, t.conv, models.RoleAssistant, reply); err != nil {
		a.Logger.Error("failed to store reply", zap.String("sessionId", t.conv.SessionID), zap.Error(err))
	}
	if t.closeAfter {
		a.closeConversation(t.ctx, t.conv)
	}
}

// closeConversation ends the conversation and logs its transcript.
func (a *Assistant) closeConversation(ctx context.Context, conv *models.Conversation) {
	endedAt := a.Now()
	if err := a.Conversations.Close(ctx, conv.SessionID, endedAt); err != nil {
		a.Logger.Error("failed to close conversation", zap.String("sessionId", conv.SessionID), zap.Error(err))
		return
	}
	conv.Status = models.StatusClosed
	conv.EndedAt = &endedAt
	a.Logger.Info("conversation closed",
		zap.String("sessionId", conv.SessionID),
		zap.String("phone", conv.Phone),
		zap.Int("messages", len(conv.Messages)),
		zap.String("transcript", conv.Transcript()))
}

// route walks the branches in priority order. Each branch that handles the
// message returns its reply.
func (a *Assistant) route(t *turn) (string, error) {
	if t.req.HasCoords() {
		if err := a.attachLocation(t); err != nil {
			return "", err
		}
	}

	if strings.HasPrefix(t.text, "/") {
		return a.handleCommand(t)
	}

	if t.user.PendingField != models.FieldNone {
		return a.answerRegistration(t)
	}
	if t.provider.Onboarding() {
		return a.answerOnboarding(t)
	}

	if field := t.user.NextMissingField(); field != models.FieldNone {
		return a.askRegistration(t, field)
	}

	if wantsProviderSignup(t.lower) {
		return a.startOnboarding(t)
	}
	if strings.Contains(t.lower, "go live") && t.provider != nil {
		return a.goLive(t)
	}

	if reply, handled, err := a.negotiate(t); err != nil || handled {
		return reply, err
	}

	return t.reply(branchFallback, a.freeReply(t.ctx, t.conv, t.user.Location, t.req.Fast))
}

// attachLocation stores shared coordinates on a user that has no location
// yet or is being asked for it. It never ends the turn.
func (a *Assistant) attachLocation(t *turn) error {
	u := t.user
	if u.PendingField != models.FieldLocation && (u.Location != "" || u.Coords.Valid()) {
		return nil
	}
	lat, lng := *t.req.Lat, *t.req.Lng
	u.Location = geocode.Label(t.ctx, a.Geocoder, lat, lng, a.Logger)
	u.Coords = models.NewPoint(lat, lng)
	if u.PendingField == models.FieldLocation {
		u.PendingField = models.FieldNone
	}
	return a.saveUser(t)
}

func (a *Assistant) saveUser(t *turn) error {
	t.user.UpdatedAt = a.Now()
	return a.Users.Update(t.ctx, t.user)
}

// phrase asks the generator for a short phrasing of instruction and returns
// fallback when it fails or answers nothing.
func (a *Assistant) phrase(ctx context.Context, instruction, fallback string) string {
	text, err := a.Generator.Generate(ctx, ai.GenerateRequest{
		Messages: ai.UserPrompt(instruction),
		System:   systemPrompt,
		Fast:     true,
		Fallback: fallback,
	})
	if err != nil || strings.TrimSpace(text) == "" {
		return fallback
	}
	return strings.TrimSpace(text)
}

// freeReply answers from the recent dialogue. A known location is passed to
// the generator as a context line in front of the latest message.
func (a *Assistant) freeReply(ctx context.Context, conv *models.Conversation, location string, fast bool) string {
	recent := append([]models.Message(nil), conv.Recent(historyWindow)...)
	last := ""
	if n := len(recent); n > 0 {
		last = recent[n-1].Content
		if location != "" && recent[n-1].Role == models.RoleUser {
			recent[n-1].Content = ai.LocationPrefix + location + "\n" + last
		}
	}
	text, err := a.Generator.Generate(ctx, ai.GenerateRequest{Messages: recent, System: systemPrompt, Fast: fast})
	if err != nil || strings.TrimSpace(text) == "" {
		a.Logger.Warn("text generation failed, using local reply", zap.Error(err))
		if location != "" {
			return ai.LocalReply(ai.LocationPrefix + location + "\n" + last)
		}
		return ai.LocalReply(last)
	}
	return strings.TrimSpace(text)
}

// handleAnonymous serves senders without a phone token. They only get free
// replies, kept on a conversation keyed by session id.
func (a *Assistant) handleAnonymous(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	var (
		conv *models.Conversation
		err  error
	)
	sessionID := req.SessionID
	if sessionID != "" {
		conv, err = a.Conversations.GetBySession(ctx, sessionID)
		// Phone-owned and closed sessions are never resumed anonymously.
		if err == nil && (conv.Phone != "" || conv.Status == models.StatusClosed) {
			conv, err = nil, database.ErrNotFound
			sessionID = ""
		}
	}
	if sessionID == "" || errors.Is(err, database.ErrNotFound) {
		conv, err = a.openConversation(ctx, "", sessionID)
	}
	if err != nil {
		a.Logger.Error("failed to load anonymous session", zap.String("sessionId", req.SessionID), zap.Error(err))
		return models.ChatResponse{Reply: apologyReply, SessionID: req.SessionID}, nil
	}

	content := req.Message
	if content == "" {
		content = "[shared location]"
	}
	if err := a.appendMessage(ctx, conv, models.RoleUser, content); err != nil {
		a.Logger.Error("failed to store message", zap.String("sessionId", conv.SessionID), zap.Error(err))
		return models.ChatResponse{Reply: apologyReply, SessionID: conv.SessionID}, nil
	}

	location := ""
	if req.HasCoords() {
		location = geocode.Label(ctx, a.Geocoder, *req.Lat, *req.Lng, a.Logger)
	}
	reply := a.freeReply(ctx, conv, location, req.Fast)
	if err := a.appendMessage(ctx, conv, models.RoleAssistant, reply); err != nil {
		a.Logger.Error("failed to store reply", zap.String("sessionId", conv.SessionID), zap.Error(err))
	}
	return models.ChatResponse{Reply: reply, SessionID: conv.SessionID}, nil
}
