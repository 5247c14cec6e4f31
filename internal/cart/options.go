package cart

import (
	"sort"
	"strings"
)

// canonicalOptions renders an option set as a stable "k=v;k=v" string
// sorted by key, so equal option sets always produce the same text.
// nil and empty maps both render as "".
func canonicalOptions(opts map[string]string) string {
	if len(opts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(opts[k])
	}
	return b.String()
}
