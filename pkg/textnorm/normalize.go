// Package textnorm normalizes raw post text and extracts the structured
// bits (mentions, tags, engagement counts) before the markers are stripped.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	mentionRe    = regexp.MustCompile(`@(\w+)`)
	tagRe        = regexp.MustCompile(`#(\w+)`)
	urlRe        = regexp.MustCompile(`http\S+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// ExtractMentions returns every @token in order of appearance, without the
// marker.
func ExtractMentions(text string) []string {
	return captures(mentionRe, text)
}

// ExtractTags returns every #token in order of appearance, without the
// marker.
func ExtractTags(text string) []string {
	return captures(tagRe, text)
}

func captures(re *regexp.Regexp, text string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// Normalize strips URLs and @mentions, drops bare # markers (the word that
// followed is kept in the body), collapses whitespace runs to a single
// space and trims. It never fails; the result may be empty.
//
// Mentions and tags must be extracted before calling Normalize, since the
// markers they rely on are removed here.
func Normalize(text string) string {
	text = urlRe.ReplaceAllString(text, "")
	text = mentionRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "#", "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
