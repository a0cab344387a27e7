package textnorm

import (
	"regexp"
	"strconv"
	"strings"
)

var countRe = regexp.MustCompile(`(\d[\d,]*)`)

// ParseCount extracts the first integer from a free-form engagement string,
// e.g. "1,234 likes" -> 1234. Comma grouping is removed; when no digit run
// is present the count is 0.
//
// Known limitation: abbreviated forms are not expanded — "1.2K" parses as 1.
// The source renders exact counts in accessibility labels, which is what the
// record parser feeds in, so the truncation only applies to degraded nodes.
func ParseCount(text string) int {
	match := countRe.FindString(text)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0
	}
	return n
}
