package fraud

import (
	"regexp"
	"strings"
)

// Indian mobile numbers: exactly 10 digits, first digit 6-9.
var indianMobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// NormalizePhone strips every non-digit character and drops a leading "91"
// country prefix when the remainder is a full 12-digit number. The result is
// what all subsequent checks (and persistence) operate on.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if len(cleaned) == 12 && strings.HasPrefix(cleaned, "91") {
		cleaned = cleaned[2:]
	}
	return cleaned
}

// ValidatePhone scores a raw phone input. Checks run in order and
// short-circuit on the first failure:
//
//  1. format (soft) — must normalize to a valid Indian mobile number
//  2. known-fake deny list (hard)
//  3. structural fake patterns (hard) — repeats, alternations, sequences
//  4. digit diversity (hard)
//  5. Shannon entropy (hard)
func ValidatePhone(raw string) PhoneVerdict {
	phone := NormalizePhone(raw)

	if !indianMobilePattern.MatchString(phone) {
		return PhoneVerdict{
			Verdict:    soft("Please enter a valid 10-digit mobile number starting with 6-9."),
			Normalized: phone,
		}
	}

	if _, ok := knownFakeNumbers[phone]; ok {
		return PhoneVerdict{
			Verdict:    hard("This phone number is not allowed."),
			Normalized: phone,
		}
	}

	for _, isFake := range fakePhonePatterns {
		if isFake(phone) {
			return PhoneVerdict{
				Verdict:    hard("This phone number appears to be fake."),
				Normalized: phone,
			}
		}
	}

	if uniqueRunes(phone) <= MinUniqueDigits {
		return PhoneVerdict{
			Verdict:    hard("Phone number has too few unique digits."),
			Normalized: phone,
		}
	}

	if ShannonEntropy(phone) < MinPhoneEntropy {
		return PhoneVerdict{
			Verdict:    hard("Phone number appears to be fake (low entropy)."),
			Normalized: phone,
		}
	}

	return PhoneVerdict{Verdict: valid(), Normalized: phone}
}
