// Package extraction turns free-form booking messages into partial booking
// drafts. Everything here is a pure function of its inputs.
package extraction

import (
	"strings"
	"time"

	"hustlr/models"
)

// ServiceVocabulary is matched, in order, before any fuzzy matching.
var ServiceVocabulary = []string{"plumber", "electrician", "cleaner", "painter", "gardener", "handyman"}

// Input is the context one extraction runs against.
type Input struct {
	Text string
	// UserLocation is a known location label used when no address is typed.
	UserLocation string
	// KnownServices are the distinct service types offered by providers.
	KnownServices []string
	// Now anchors "today" and "tomorrow".
	Now time.Time
}

// Extract pulls the booking fields out of in.Text. It returns the fields it
// found and the required fields that remain empty once they are merged into
// current.
func Extract(in Input, current models.BookingDraft) (models.BookingDraft, []string) {
	var found models.BookingDraft

	found.Service = MatchService(in.Text, in.KnownServices)
	found.Issue = ExtractIssue(in.Text)
	if at, ok := ExtractDateTime(in.Text, in.Now); ok {
		found.DateTime = at.Format(time.RFC3339)
	}
	found.Address = ExtractAddress(in.Text, in.UserLocation)

	merged := current
	merged.Merge(found)
	return found, merged.Missing()
}

// MatchService returns the first vocabulary word contained in text, falling
// back to the known service type sharing the most word stems with it.
func MatchService(text string, known []string) string {
	lower := strings.ToLower(text)
	for _, svc := range ServiceVocabulary {
		if strings.Contains(lower, svc) {
			return svc
		}
	}
	return fuzzyService(lower, known)
}

func fuzzyService(text string, known []string) string {
	msg := stems(text)
	if len(msg) == 0 {
		return ""
	}
	best, bestScore := "", 0
	for _, candidate := range known {
		score := 0
		for s := range stems(candidate) {
			if _, ok := msg[s]; ok {
				score++
			}
		}
		if score == 0 {
			continue
		}
		if score > bestScore || (score == bestScore && len(candidate) > len(best)) {
			best, bestScore = candidate, score
		}
	}
	return best
}
