package ai

import (
	"context"
	"fmt"
	"strings"

	"hustlr/models"
)

// LocationPrefix marks the synthetic context line carrying the user's location.
const LocationPrefix = "User location: "

// serviceKeywords maps words found in a message to the service they suggest.
// Order matters: the first hit wins.
var serviceKeywords = []struct {
	service  string
	keywords []string
}{
	{"plumber", []string{"plumb", "leak", "pipe", "tap", "drain", "toilet", "sink"}},
	{"electrician", []string{"electric", "wiring", "socket", "power", "light", "fuse"}},
	{"cleaner", []string{"clean", "dust", "mop"}},
	{"painter", []string{"paint"}},
	{"gardener", []string{"garden", "lawn", "hedge", "grass"}},
	{"handyman", []string{"handyman", "repair", "fix", "assemble"}},
}

// LocalGenerator is the deterministic rule-based generator. It never fails.
type LocalGenerator struct{}

func (LocalGenerator) Generate(_ context.Context, req GenerateRequest) (string, error) {
	if req.Fallback != "" {
		return req.Fallback, nil
	}
	return LocalReply(lastUserText(req.Messages)), nil
}

func lastUserText(msgs []models.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == models.RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}

// DetectService returns the service suggested by the text, or "".
func DetectService(text string) string {
	lower := strings.ToLower(text)
	for _, sk := range serviceKeywords {
		for _, kw := range sk.keywords {
			if strings.Contains(lower, kw) {
				return sk.service
			}
		}
	}
	return ""
}

// splitLocation separates a leading "User location:" line from the message.
func splitLocation(text string) (location, body string) {
	if !strings.HasPrefix(text, LocationPrefix) {
		return "", text
	}
	rest := strings.TrimPrefix(text, LocationPrefix)
	line, body, _ := strings.Cut(rest, "\n")
	return strings.TrimSpace(line), body
}

// LocalReply answers from detected service keywords and whether a location is known.
func LocalReply(text string) string {
	location, body := splitLocation(text)
	service := DetectService(body)

	switch {
	case service != "" && location != "":
		return fmt.Sprintf("I can find a %s near %s for you. What's the problem, and when should they come? For example: \"tomorrow at 3pm\".", service, location)
	case service != "":
		return fmt.Sprintf("I can find a %s for you. Where should they come, and when?", service)
	case location != "":
		return fmt.Sprintf("How can I help? I can book a plumber, electrician, cleaner, painter, gardener or handyman near %s.", location)
	}
	return "Hi! I can book a plumber, electrician, cleaner, painter, gardener or handyman. What do you need?"
}
