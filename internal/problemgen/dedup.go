package problemgen

import (
	"fmt"
	"strings"
)

// buildDedup formats the exclusion list for the prompt, keeping only the
// most recent max entries. Returns "None" if there is nothing to exclude.
func buildDedup(exclude []string, max int) string {
	if max > 0 && len(exclude) > max {
		exclude = exclude[len(exclude)-max:]
	}

	var b strings.Builder
	n := 0
	for _, q := range exclude {
		q = strings.Join(strings.Fields(q), " ")
		if q == "" {
			continue
		}
		n++
		fmt.Fprintf(&b, "%d. %s\n", n, q)
	}
	if n == 0 {
		return "None"
	}
	return strings.TrimRight(b.String(), "\n")
}
