package browser

import (
	"regexp"
	"strings"
)

// Selectors for the stable semantic roles the record parser relies on.
// These address data-testid hooks and element roles, not layout classes,
// which survive the platform's frequent visual reshuffles.
const (
	// SelPost matches one feed post container.
	SelPost = "article"
	// SelBodyText matches the post body container.
	SelBodyText = `div[data-testid="tweetText"]`
	// SelTimestamp matches the post timestamp element.
	SelTimestamp = "time"
	// SelLike, SelReshare and SelReply match the engagement indicators.
	SelLike    = `div[data-testid="like"]`
	SelReshare = `div[data-testid="retweet"]`
	SelReply   = `div[data-testid="reply"]`
	// SelAnchor matches any link; profile vs post targets are told apart
	// by their href shape (see PostID / IsProfilePath).
	SelAnchor = "a[href]"
)

// Attribute names read off nodes.
const (
	AttrDatetime = "datetime"
	AttrHref     = "href"
	AttrLabel    = "aria-label"
)

var postPathRe = regexp.MustCompile(`/status/(\d+)`)

// PostID extracts the numeric post identifier from a post-path href.
func PostID(href string) (string, bool) {
	m := postPathRe.FindStringSubmatch(href)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsProfilePath reports whether an href points at a profile rather than a
// post.
func IsProfilePath(href string) bool {
	if href == "" {
		return false
	}
	if strings.Contains(href, "/status/") {
		return false
	}
	return strings.HasPrefix(href, "/") || strings.Contains(href, "://")
}
