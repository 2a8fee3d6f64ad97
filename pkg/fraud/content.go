package fraud

import "strings"

// ValidateContent runs the moderation word list against a free-text field
// (food item name, description). A match blocks the submission outright but
// deliberately does not feed the abuse ledgers: a rude word is not the same
// signal as a fabricated identity.
func ValidateContent(text string) Verdict {
	normalized := normalizeLower(text)
	if normalized == "" {
		return soft("Text is required.")
	}

	for _, pattern := range wordBoundaryPatterns {
		if pattern.MatchString(normalized) {
			return hard("Inappropriate content detected. Please use appropriate language.")
		}
	}

	return valid()
}

func normalizeLower(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
