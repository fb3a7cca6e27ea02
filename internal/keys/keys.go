// Package keys builds the storage namespace strings shared by backends and
// the lock registries.
package keys

import "strings"

// Remote returns "{prefix}:{fnID}:{cacheKey}".
func Remote(prefix, fnID, cacheKey string) string {
	var b strings.Builder
	b.Grow(len(prefix) + len(fnID) + len(cacheKey) + 2)
	b.WriteString(prefix)
	b.WriteByte(':')
	b.WriteString(fnID)
	b.WriteByte(':')
	b.WriteString(cacheKey)
	return b.String()
}

// Pattern matches every remote key under prefix (SCAN MATCH syntax).
// Glob metacharacters in prefix are escaped.
func Pattern(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(prefix) + ":*"
}

// Lock returns the registry key for (fnID, cacheKey). fnID never contains a
// NUL byte, so the join is unambiguous.
func Lock(fnID, cacheKey string) string {
	return fnID + "\x00" + cacheKey
}
