package conversation

import (
	"regexp"
	"strings"
)

// Placeholders stored when a contact field cannot be found.
const (
	NoName  = "No name"
	NoEmail = "No email"
	NoPhone = "No phone"
)

var (
	phonePattern     = regexp.MustCompile(`\d{6,}`)
	contactSeparator = regexp.MustCompile(`[,;\n]`)
)

// Contact is the visitor's contact details as parsed from free text.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// hasContactChannel reports whether text carries something usable as an
// email (an "@") or a phone number (six or more consecutive digits).
func hasContactChannel(text string) bool {
	return strings.Contains(text, "@") || phonePattern.MatchString(text)
}

// parseContact splits text on commas, semicolons and newlines. The first
// segment is the name, the first segment with an "@" is the email and the
// first segment with six consecutive digits is the phone.
func parseContact(text string) Contact {
	segments := contactSeparator.Split(text, -1)

	c := Contact{Name: NoName, Email: NoEmail, Phone: NoPhone}

	if name := strings.TrimSpace(segments[0]); name != "" {
		c.Name = name
	}

	for _, s := range segments {
		if strings.Contains(s, "@") {
			c.Email = strings.TrimSpace(s)
			break
		}
	}

	for _, s := range segments {
		if phonePattern.MatchString(s) {
			c.Phone = strings.TrimSpace(s)
			break
		}
	}

	return c
}

// isAffirmative reports whether a sector confirmation reply agrees.
func isAffirmative(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range []string{"sí", "si", "correcto", "ok"} {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
