// internal/app/codes/pattern.go
package codes

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultPattern is used whenever a caller or tenant has not configured one.
// It yields codes like ASTR-EDITOR-00001.
const DefaultPattern = "{ORGCODE}-{ROLE}-{NUMBER:5}"

// defaultNumberWidth is the zero-pad width for a bare {NUMBER} token.
const defaultNumberWidth = 5

var numberToken = regexp.MustCompile(`\{NUMBER(?::(\d+))?\}`)

// Format expands a code pattern into a literal employee code.
//
// Supported tokens: {ORGCODE}, {ROLE}, {NUMBER} and {NUMBER:N}. {NUMBER}
// zero-pads to five digits; {NUMBER:N} zero-pads to N. A number wider than
// its configured width is printed in full, never truncated.
func Format(pattern, orgCode, role string, number int64) string {
	if pattern == "" {
		pattern = DefaultPattern
	}
	out := strings.ReplaceAll(pattern, "{ORGCODE}", orgCode)
	out = strings.ReplaceAll(out, "{ROLE}", role)
	return numberToken.ReplaceAllStringFunc(out, func(tok string) string {
		width := defaultNumberWidth
		if m := numberToken.FindStringSubmatch(tok); m[1] != "" {
			if w, err := strconv.Atoi(m[1]); err == nil {
				width = w
			}
		}
		return fmt.Sprintf("%0*d", width, number)
	})
}
