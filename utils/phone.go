package utils

import "strings"

// NormalizePhone derives the phone token from a raw sender identifier such as
// "whatsapp:+254 700-000001@c.us". Only the part before '@' contributes, and
// only its digits and a leading '+' are kept.
func NormalizePhone(sender string) string {
	if i := strings.IndexByte(sender, '@'); i >= 0 {
		sender = sender[:i]
	}
	var sb strings.Builder
	for _, r := range sender {
		switch {
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '+' && sb.Len() == 0:
			sb.WriteRune(r)
		}
	}
	token := sb.String()
	if token == "+" {
		return ""
	}
	return token
}
