// internal/app/codes/normalize.go
package codes

import "strings"

// NormalizeRole canonicalizes a job-function tag for use as a counter key
// and pattern substitution: uppercase, runs of non-alphanumerics collapsed
// to a single underscore, leading/trailing underscores trimmed.
// "post producer" and "Post-Producer" both normalize to "POST_PRODUCER".
func NormalizeRole(role string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToUpper(strings.TrimSpace(role)) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}

// NormalizeOrgCode canonicalizes a discovered organization-code candidate:
// uppercase, alphanumerics only. An empty result means "no candidate".
func NormalizeOrgCode(code string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(code)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
