package fraud

import "math"

// ShannonEntropy computes the Shannon entropy in bits over the rune frequency
// distribution of s, ignoring spaces. Uses the natural multiset of observed
// symbols, no smoothing. A 10-digit phone number drawn uniformly lands around
// 3 bits; "9999999999" is 0; keyboard mash tends to sit below 2.
func ShannonEntropy(s string) float64 {
	freq := make(map[rune]int)
	total := 0
	for _, r := range s {
		if r == ' ' {
			continue
		}
		freq[r]++
		total++
	}
	if total == 0 {
		return 0
	}

	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// uniqueRunes counts distinct runes in s.
func uniqueRunes(s string) int {
	seen := make(map[rune]struct{})
	for _, r := range s {
		seen[r] = struct{}{}
	}
	return len(seen)
}
