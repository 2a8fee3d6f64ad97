package fraud

import "regexp"

// Static signal banks for fake-identity detection. Loaded once at init and
// never mutated; validators only read from them.

// Thresholds for the statistical checks.
const (
	// MinUniqueDigits rejects phone numbers with this many or fewer distinct
	// digits (e.g. 6767676767 has 2).
	MinUniqueDigits = 3
	// MinPhoneEntropy is the minimum Shannon entropy (bits) for a plausible
	// 10-digit number.
	MinPhoneEntropy = 2.0
	// MinNameEntropy is the minimum Shannon entropy (bits) for names of five
	// or more letters.
	MinNameEntropy = 2.0
	// MinNameDiversity is the minimum unique-letter ratio for names of five
	// or more letters.
	MinNameDiversity = 0.4
)

// knownFakeNumbers are joke/test numbers seen in real submissions. Checked by
// exact match after normalization.
var knownFakeNumbers = map[string]struct{}{
	"1234567890": {},
	"9876543210": {},
	"0123456789": {},
	"1111111111": {},
	"2222222222": {},
	"3333333333": {},
	"4444444444": {},
	"5555555555": {},
	"6666666666": {},
	"7777777777": {},
	"8888888888": {},
	"9999999999": {},
	"6000000000": {},
	"7000000000": {},
	"8000000000": {},
	"9000000000": {},
	"9123456789": {},
	"8123456789": {},
	"7123456789": {},
	"6123456789": {},
}

// fakePhonePatterns detect structurally fake numbers that are not on the
// exact-match list. The repetition checks would be backreference regexes
// (`^(\d)\1{9}$` etc.), but Go's RE2 engine does not support backreferences,
// so they are written as predicate functions.
var fakePhonePatterns = []func(string) bool{
	isAllSameDigit,
	isAlternatingPair,
	isRepeatedTriplet,
	isRepeatedQuartet,
	// Full ascending sequence
	regexp.MustCompile(`^0123456789$|^1234567890$`).MatchString,
	// Full descending sequence
	regexp.MustCompile(`^9876543210$|^0987654321$`).MatchString,
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isAllSameDigit: all digits the same, e.g. 9999999999 (`^(\d)\1{9}$`).
func isAllSameDigit(s string) bool {
	if len(s) != 10 || !isDigits(s) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// isAlternatingPair: two digits alternating, e.g. 1212121212, 9898989898
// (`^(\d)(\d)\1\2\1\2\1\2\1\2$`).
func isAlternatingPair(s string) bool {
	if len(s) != 10 || !isDigits(s) {
		return false
	}
	for i := 2; i < len(s); i++ {
		if s[i] != s[i-2] {
			return false
		}
	}
	return true
}

// isRepeatedTriplet: three-digit block repeated, e.g. 1231231231
// (`^(\d{3})\1\1\d?$`).
func isRepeatedTriplet(s string) bool {
	if (len(s) != 9 && len(s) != 10) || !isDigits(s) {
		return false
	}
	return s[0:3] == s[3:6] && s[3:6] == s[6:9]
}

// isRepeatedQuartet: four-digit block repeated, e.g. 1234123412
// (`^(\d{4})\1{1}\d{0,2}$`).
func isRepeatedQuartet(s string) bool {
	if len(s) < 8 || len(s) > 10 || !isDigits(s) {
		return false
	}
	return s[0:4] == s[4:8]
}

// junkPatterns flag placeholder text in name/room fields. Matched against the
// trimmed, lowercased value.
var junkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^abc`),
	regexp.MustCompile(`^test`),
	regexp.MustCompile(`^xxx`),
	regexp.MustCompile(`^asdf`),
	regexp.MustCompile(`^qwerty`),
	regexp.MustCompile(`^123$`),
	regexp.MustCompile(`^aaa+$`),
	regexp.MustCompile(`^bbb+$`),
	regexp.MustCompile(`^fake`),
	regexp.MustCompile(`^none`),
	regexp.MustCompile(`^na$`),
	regexp.MustCompile(`^n/a$`),
}

// keyboardRows are the three physical QWERTY rows used for mash detection.
var keyboardRows = []string{
	"qwertyuiop",
	"asdfghjkl",
	"zxcvbnm",
}

// inappropriateWords is the moderation word list for free-text fields (food
// item names and descriptions). Matched on word boundaries only, so
// "analysis" never trips on "anal".
var inappropriateWords = []string{
	// Sexual content
	"sex", "porn", "xxx", "dildo", "vibrator", "condom",
	"dick", "cock", "pussy", "penis", "vagina",

	// Drugs/alcohol
	"weed", "marijuana", "cannabis", "cocaine", "heroin",
	"meth", "mdma", "ecstasy", "lsd", "drug",
	"alcohol", "beer", "whisky", "vodka", "rum",
	"wine", "cigarette", "cigar", "tobacco", "vape",

	// Offensive/abusive
	"fuck", "shit", "bitch", "asshole", "bastard",
	"damn", "hell", "crap", "whore", "slut",

	// Other banned items
	"weapon", "gun", "knife", "blade", "bomb",
}

// wordBoundaryPatterns holds the compiled moderation regexes, built once.
var wordBoundaryPatterns = compileWordList(inappropriateWords)

func compileWordList(words []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return patterns
}

// IsJunkText reports whether text looks like placeholder/test data
// ("test123", "n/a", "aaaa"). Used for name and room fields.
func IsJunkText(text string) bool {
	trimmed := normalizeLower(text)
	for _, p := range junkPatterns {
		if p.MatchString(trimmed) {
			return true
		}
	}
	return false
}
