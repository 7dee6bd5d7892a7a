// Package shortcode generates short codes from URLs.
//
// Codes are derived from an MD5 fingerprint of the URL, so generation is
// deterministic: the same URL always yields the same first candidate. The
// attempt counter is mixed into the fingerprint input to produce alternative
// candidates when a code is already taken.
package shortcode

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strconv"
)

// DefaultLength is the number of hex characters taken from the fingerprint.
const DefaultLength = 6

var customCodeRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Generate returns a candidate short code for rawURL. Attempt 0 fingerprints
// the URL alone; attempt >= 1 appends the attempt number, so colliding
// candidates can be retried deterministically.
func Generate(rawURL string, attempt, length int) string {
	input := rawURL
	if attempt > 0 {
		input += strconv.Itoa(attempt)
	}

	sum := md5.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:length]
}

// ValidCustomCode reports whether code is acceptable as a caller-supplied
// short code: 3-20 characters, alphanumeric plus underscore and hyphen.
func ValidCustomCode(code string) bool {
	if len(code) < 3 || len(code) > 20 {
		return false
	}
	return customCodeRe.MatchString(code)
}
