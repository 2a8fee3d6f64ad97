package fraud

import (
	"regexp"
	"strings"
)

var (
	lettersAndSpaces = regexp.MustCompile(`^[A-Za-z\s]+$`)
	consonantRun     = regexp.MustCompile(`[^aeiou]{6,}`)
)

// The repetition checks below would be backreference patterns (`(.)\1{3,}`,
// `^(.)\1+$`, `^(..)\1{2,}$`), but Go's RE2 engine does not support
// backreferences, so they are written out directly.

// hasRepeatedRun reports whether s contains the same character four or more
// times in a row.
func hasRepeatedRun(s string) bool {
	run := 1
	for i := 1; i < len(s); i++ {
		if s[i] == s[i-1] {
			run++
			if run >= 4 {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// isSingleRepeatedChar reports whether s is one character repeated two or
// more times.
func isSingleRepeatedChar(s string) bool {
	if len(s) < 2 {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// isTwoCharPattern reports whether s is a two-character block repeated three
// or more times.
func isTwoCharPattern(s string) bool {
	if len(s) < 6 || len(s)%2 != 0 {
		return false
	}
	for i := 2; i < len(s); i++ {
		if s[i] != s[i%2] {
			return false
		}
	}
	return true
}

const vowels = "aeiou"

// ValidateName scores a raw name input for human plausibility. All name
// failures are treated as soft: a rejected name is annoying but not by itself
// a fraud signal, so it never counts toward a device block.
func ValidateName(raw string) Verdict {
	name := strings.TrimSpace(raw)

	if len(name) < 3 {
		return soft("Name must be at least 3 characters.")
	}

	if !lettersAndSpaces.MatchString(name) {
		return soft("Name can only contain letters and spaces.")
	}

	// Letters-only lowercase projection for the statistical checks.
	letters := strings.ToLower(strings.Join(strings.Fields(name), ""))

	if hasRepeatedRun(letters) {
		return soft("Name contains too many repeating characters.")
	}

	if isSingleRepeatedChar(letters) {
		return soft("Name cannot be a single repeated character.")
	}

	if !strings.ContainsAny(letters, vowels) {
		return soft("Name must contain vowels.")
	}

	if consonantRun.MatchString(letters) {
		return soft("Name has too many consonants in a row.")
	}

	if len(letters) >= 5 {
		diversity := float64(uniqueRunes(letters)) / float64(len(letters))
		if diversity < MinNameDiversity {
			return soft("Name appears to be random or fake.")
		}

		if ShannonEntropy(letters) < MinNameEntropy {
			return soft("Name appears to be fake (low entropy).")
		}
	}

	if isKeyboardMash(letters) {
		return soft("Name looks like keyboard mash.")
	}

	if isTwoCharPattern(letters) {
		return soft("Name contains repeating patterns.")
	}

	return valid()
}

// isKeyboardMash scans every 5-character window of the lowercased letters.
// A window is a mash when all five characters sit on one physical keyboard
// row and each step moves at most two keys sideways (a short hand-drag like
// "asdfg" or "rewqt").
func isKeyboardMash(letters string) bool {
	for _, row := range keyboardRows {
		for i := 0; i+5 <= len(letters); i++ {
			window := letters[i : i+5]
			if rowDrag(window, row) {
				return true
			}
		}
	}
	return false
}

func rowDrag(window, row string) bool {
	prev := -1
	for i := 0; i < len(window); i++ {
		pos := strings.IndexByte(row, window[i])
		if pos < 0 {
			return false
		}
		if prev >= 0 {
			delta := pos - prev
			if delta < 0 {
				delta = -delta
			}
			if delta > 2 {
				return false
			}
		}
		prev = pos
	}
	return true
}
