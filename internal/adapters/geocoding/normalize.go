package geocoding

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize builds the cache key for an address: NFC form, collapsed
// whitespace, lower case. "Plaza  Mayor" and "plaza mayor" share a key.
func Normalize(address string) string {
	s := norm.NFC.String(address)
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
