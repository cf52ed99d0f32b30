package transfer

import "strings"

const reservedChars = `\/:*?"<>|`

// SanitizeFilename replaces filesystem-reserved characters with '_' and
// trims surrounding whitespace. An empty result means the name is
// unusable and the part carrying it should be skipped.
func SanitizeFilename(name string) string {
	mapped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(reservedChars, r) {
			return '_'
		}
		return r
	}, name)

	return strings.TrimSpace(mapped)
}
