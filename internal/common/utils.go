package common

import (
	"strconv"
	"strings"
)

// FormatCoord renders a coordinate with the shortest exact decimal form.
func FormatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// SplitList splits a comma separated list, trimming blanks and dropping
// empty items. An empty input yields nil.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
