package chat

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"hustlr/models"
)

const systemPrompt = "You are Hustlr, a friendly and concise assistant that books local service providers " +
	"(plumbers, electricians, cleaners, painters, gardeners, handymen). Keep replies short, ask at most one " +
	"question at a time and never invent providers, prices or bookings."

const (
	apologyReply    = "Sorry, something went wrong on our side. Please try again."
	policyURL       = "https://hustlr.app/terms"
	commandHelp     = "Commands: /reset, /end, /profile, /provider status, /bookings"
	maxListBookings = 5
	historyWindow   = 10
)

// registrationQuestions are the fixed questions asked when phrasing fails.
var registrationQuestions = map[models.RegistrationField]string{
	models.FieldName:     "Welcome to Hustlr! What's your name?",
	models.FieldLocation: "Where are you based? Share your location or type your area, e.g. \"Westlands, Nairobi\".",
	models.FieldPolicy:   "Do you agree to our terms of service (" + policyURL + ")? Reply yes to continue.",
}

var registrationInstructions = map[models.RegistrationField]string{
	models.FieldName:     "Greet a new user and ask for their name in one short sentence.",
	models.FieldLocation: "Ask the user where they are based. Mention they can share their location or type their area.",
	models.FieldPolicy:   "Ask the user to agree to the terms of service at " + policyURL + " by replying yes. One or two sentences.",
}

var onboardingQuestions = map[models.OnboardingStep]string{
	models.StepName:        "Let's get you registered as a provider. What name should customers see?",
	models.StepServiceType: "What service do you offer? For example plumber, electrician, cleaner, painter, gardener or handyman.",
	models.StepCoverage:    "Which area do you cover? Share your location or type the area.",
	models.StepPolicy:      "Do you agree to the provider terms (" + policyURL + "/providers)? Reply yes to continue.",
	models.StepActivate:    "Do you want to go live now and start receiving bookings? Reply yes or no.",
}

var missingFieldQuestions = map[string]string{
	models.DraftService:  "what service you need",
	models.DraftIssue:    "what the problem is",
	models.DraftDateTime: "when they should come (e.g. \"tomorrow at 3pm\")",
	models.DraftAddress:  "the address (e.g. \"12 Main Rd, Kilimani, Nairobi\")",
}

var (
	yesWords = map[string]bool{
		"yes": true, "y": true, "yeah": true, "yep": true, "sure": true, "ok": true, "okay": true,
		"confirm": true, "agree": true, "i agree": true, "go ahead": true, "book it": true,
	}
	noWords = map[string]bool{
		"no": true, "n": true, "nope": true, "cancel": true, "stop": true, "don't": true, "dont": true,
	}
	// firmYesWords cancel a leading no. "agree" is left out so "no, I don't
	// agree" still declines.
	firmYesWords = map[string]bool{"yes": true, "yeah": true, "yep": true, "sure": true, "ok": true, "okay": true}
	// hedgeWords turn a leading yes into a non-answer, as in "yes but later".
	hedgeWords = map[string]bool{"but": true, "later": true, "wait": true, "not": true, "maybe": true}

	trimPunct   = regexp.MustCompile(`^[\s.!,]+|[\s.!,]+$`)
	answerWords = regexp.MustCompile(`[a-z']+`)
)

func normalizeAnswer(text string) string {
	return strings.ToLower(trimPunct.ReplaceAllString(text, ""))
}

// leadsWith reports whether the answer opens with a one or two word phrase
// from set.
func leadsWith(words []string, set map[string]bool) bool {
	if len(words) == 0 {
		return false
	}
	if len(words) > 1 && set[words[0]+" "+words[1]] {
		return true
	}
	return set[words[0]]
}

func containsAny(words []string, sets ...map[string]bool) bool {
	for _, w := range words {
		for _, set := range sets {
			if set[w] {
				return true
			}
		}
	}
	return false
}

// isYes accepts answers that open with an affirmative and carry no negative
// or hedge, so "yes please" commits and "yes no" does not.
func isYes(text string) bool {
	words := answerWords.FindAllString(strings.ToLower(text), -1)
	return leadsWith(words, yesWords) && !containsAny(words, noWords, hedgeWords)
}

// isNo accepts answers that open with a negative and carry no affirmative.
func isNo(text string) bool {
	words := answerWords.FindAllString(strings.ToLower(text), -1)
	return leadsWith(words, noWords) && !containsAny(words, firmYesWords)
}

// parseChoice reads a 1-based selection. "recommend" picks the first option.
func parseChoice(text string, n int) (int, bool) {
	answer := normalizeAnswer(text)
	if strings.Contains(answer, "recommend") && n > 0 {
		return 0, true
	}
	answer = strings.TrimPrefix(answer, "#")
	i, err := strconv.Atoi(answer)
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

func missingQuestion(missing []string) string {
	parts := make([]string, 0, len(missing))
	for _, f := range missing {
		if q, ok := missingFieldQuestions[f]; ok {
			parts = append(parts, q)
		}
	}
	switch len(parts) {
	case 0:
		return "Could you tell me a bit more?"
	case 1:
		return "Could you tell me " + parts[0] + "?"
	}
	return "Could you tell me " + strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1] + "?"
}

func formatWhen(t time.Time) string {
	return t.Format("Mon 2 Jan at 15:04")
}

func formatProviderOptions(options []models.ProviderOption) string {
	var sb strings.Builder
	for i, o := range options {
		fmt.Fprintf(&sb, "%d. %s", i+1, o.Name)
		var details []string
		if o.Rating > 0 {
			details = append(details, fmt.Sprintf("★ %.1f", o.Rating))
		}
		if o.DistanceMeters != nil {
			details = append(details, fmt.Sprintf("%.1f km", *o.DistanceMeters/1000))
		}
		if o.EtaMinutes != nil {
			details = append(details, fmt.Sprintf("~%d min away", *o.EtaMinutes))
		}
		if !o.Available {
			details = append(details, "busy at that time")
		}
		if len(details) > 0 {
			sb.WriteString(" (" + strings.Join(details, ", ") + ")")
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("Reply with a number, or \"recommend\" to take the first one.")
	return sb.String()
}

func formatAddressOptions(options []models.Address) string {
	var sb strings.Builder
	sb.WriteString("Which address should we use?")
	for i, a := range options {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, a.String())
	}
	return sb.String()
}

func confirmationSummary(d models.BookingDraft, loc *time.Location) string {
	when := d.DateTime
	if start, err := d.Start(); err == nil {
		when = formatWhen(start.In(loc))
	}
	return fmt.Sprintf("Please confirm: %s with %s for \"%s\" on %s at %s. Reply yes to book or no to cancel.",
		d.Service, d.ProviderName, d.Issue, when, d.Address.String())
}
