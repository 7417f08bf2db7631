package phone

import "strings"

// Normalize reduces a user-supplied phone number to the single +82
// international form stored on poll rosters. Registration and verification
// both go through this function, so roster matching is a plain string
// comparison.
//
// Rules, applied to the digits only:
//   - a leading national trunk "0" is dropped and "+82" prepended
//   - digits already starting with "82" just gain the "+"
//   - anything else gets "+82" prepended as a fallback
//
// The fallback also prepends +82 to numbers that were already international
// for another country. That matches the behavior this service replaces; see
// DESIGN.md before changing it.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case strings.HasPrefix(digits, "0"):
		return "+82" + digits[1:]
	case strings.HasPrefix(digits, "82"):
		return "+" + digits
	default:
		return "+82" + digits
	}
}
