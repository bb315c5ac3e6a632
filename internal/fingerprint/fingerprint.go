// Package fingerprint produces the content-addressed dedup key for listings.
package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Sum returns a stable hex digest of the lower-cased text. Two listings with
// identical lower-cased text always collide, regardless of where the text
// was posted; this is the sole dedup key.
func Sum(text string) string {
	hash := sha256.Sum256([]byte(strings.ToLower(text)))
	return fmt.Sprintf("%x", hash)
}
