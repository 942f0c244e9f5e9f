package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"hustlr/models"
)

var (
	wordRe = regexp.MustCompile(`[a-z]+`)

	issueForRe    = regexp.MustCompile(`(?i)\bfor\s+(.+?)(?:\s+(?:at|on)\b|$)`)
	complaintRe   = regexp.MustCompile(`(?i)\b(?:leak\w*|broken\w*|not working\w*|clog\w*)`)
	trailingDayRe = regexp.MustCompile(`(?i)(?:^|\s+)(?:today|tomorrow)$`)

	dayRe = regexp.MustCompile(`(?i)\b(today|tomorrow)\b`)
	// Clock forms, tried in order: 3:30pm / 15:30, 330pm, 3pm.
	colonTimeRe   = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`)
	compactTimeRe = regexp.MustCompile(`(?i)\b(\d{3,4})\s*(am|pm)\b`)
	bareTimeRe    = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(am|pm)\b`)

	addressRe = regexp.MustCompile(`(?i)\b(\d+[a-z]?\s+[a-z][a-z .'-]*?)\s*,\s*([a-z][a-z .'-]*?)\s*,\s*([a-z][a-z .'-]*?)\s*(?:$|[.;!?\n]|\s(?:today|tomorrow|at|on|for)\b)`)
)

// stemSuffixes are tried in order and at most one is stripped per token.
var stemSuffixes = []string{"ers", "ments", "ment", "ing", "er", "ed", "s"}

func stem(tok string) string {
	for _, suf := range stemSuffixes {
		if strings.HasSuffix(tok, suf) && len(tok)-len(suf) >= len(suf)+2 {
			return tok[:len(tok)-len(suf)]
		}
	}
	return tok
}

func stems(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range wordRe.FindAllString(strings.ToLower(s), -1) {
		out[stem(tok)] = struct{}{}
	}
	return out
}

// ExtractIssue returns the task description after "for", or the first
// complaint phrase such as "leaking" or "not working".
func ExtractIssue(text string) string {
	if m := issueForRe.FindStringSubmatch(text); m != nil {
		issue := strings.TrimSpace(trailingDayRe.ReplaceAllString(strings.TrimSpace(m[1]), ""))
		if issue != "" {
			return issue
		}
	}
	if m := complaintRe.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}

// ExtractDateTime resolves "today"/"tomorrow" plus a clock time against now.
// A clock time without a day word is left unresolved.
func ExtractDateTime(text string, now time.Time) (time.Time, bool) {
	day := dayRe.FindStringSubmatch(text)
	if day == nil {
		return time.Time{}, false
	}
	hour, minute, ok := parseClock(text)
	if !ok {
		return time.Time{}, false
	}
	offset := 0
	if strings.EqualFold(day[1], "tomorrow") {
		offset = 1
	}
	y, m, d := now.Date()
	return time.Date(y, m, d+offset, hour, minute, 0, 0, now.Location()), true
}

func parseClock(text string) (hour, minute int, ok bool) {
	if m := colonTimeRe.FindStringSubmatch(text); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		return to24h(hour, minute, m[3])
	}
	if m := compactTimeRe.FindStringSubmatch(text); m != nil {
		digits := m[1]
		hour, _ = strconv.Atoi(digits[:len(digits)-2])
		minute, _ = strconv.Atoi(digits[len(digits)-2:])
		return to24h(hour, minute, m[2])
	}
	if m := bareTimeRe.FindStringSubmatch(text); m != nil {
		hour, _ = strconv.Atoi(m[1])
		return to24h(hour, 0, m[2])
	}
	return 0, 0, false
}

func to24h(hour, minute int, meridiem string) (int, int, bool) {
	if minute > 59 {
		return 0, 0, false
	}
	switch strings.ToLower(meridiem) {
	case "pm":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour == 12 {
			hour = 0
		}
	default:
		if hour > 23 {
			return 0, 0, false
		}
	}
	return hour, minute, true
}

// ExtractAddress matches "<number> <street>, <suburb>, <city>". Without a
// match it splits the known user location on commas instead.
func ExtractAddress(text, userLocation string) *models.Address {
	if m := addressRe.FindStringSubmatch(text); m != nil {
		return &models.Address{
			Street: strings.TrimSpace(m[1]),
			Suburb: strings.TrimSpace(m[2]),
			City:   strings.TrimSpace(m[3]),
		}
	}
	return addressFromLocation(userLocation)
}

func addressFromLocation(location string) *models.Address {
	var parts []string
	for _, p := range strings.Split(location, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return &models.Address{City: parts[0]}
	}
	n := len(parts)
	return &models.Address{Suburb: parts[n-2], City: parts[n-1]}
}
