package collector

import (
	"strings"
	"time"

	"tagsignal/pkg/browser"
	"tagsignal/pkg/feed"
	"tagsignal/pkg/logger"
	"tagsignal/pkg/textnorm"
)

// RecordParser turns one post node into a feed.Record. Every field is
// extracted independently, so a malformed fragment degrades that field
// alone instead of discarding the post.
type RecordParser struct {
	log logger.Logger

	// now supplies the fallback timestamp; injectable for tests.
	now func() time.Time
}

// NewRecordParser returns a parser using the wall clock for timestamp
// fallbacks.
func NewRecordParser(log logger.Logger) *RecordParser {
	return &RecordParser{log: log, now: time.Now}
}

// Parse extracts a record from a post node. The second return is false when
// the node carried neither a body nor a post identifier, the one shape not
// worth keeping.
func (p *RecordParser) Parse(node browser.Node) (*feed.Record, bool) {
	rawText := p.bodyText(node)
	id := p.postID(node)

	if rawText == "" && id == "" {
		return nil, false
	}

	rec := &feed.Record{
		ID:       id,
		Text:     textnorm.Normalize(rawText),
		Mentions: textnorm.ExtractMentions(rawText),
		Tags:     textnorm.ExtractTags(rawText),
	}

	rec.Author = p.author(node)
	if rec.Author == "" {
		rec.Author = feed.UnknownAuthor
		rec.AuthorDefaulted = true
	}

	rec.ObservedAt = p.observedAt(node)
	if rec.ObservedAt == "" {
		rec.ObservedAt = p.now().UTC().Format(time.RFC3339)
		rec.ObservedAtDefaulted = true
	}

	rec.Engagement = feed.Engagement{
		Likes:    p.metric(node, browser.SelLike),
		Reshares: p.metric(node, browser.SelReshare),
		Replies:  p.metric(node, browser.SelReply),
	}

	return rec, true
}

func (p *RecordParser) bodyText(node browser.Node) string {
	body, ok := node.Find(browser.SelBodyText)
	if !ok {
		return ""
	}
	return body.Text()
}

// postID scans the node's links for a post path and returns its numeric
// identifier.
func (p *RecordParser) postID(node browser.Node) string {
	for _, a := range node.FindAll(browser.SelAnchor) {
		href, ok := a.Attr(browser.AttrHref)
		if !ok {
			continue
		}
		if id, ok := browser.PostID(href); ok {
			return id
		}
	}
	return ""
}

// author returns the handle from the first profile link, without the
// leading slash.
func (p *RecordParser) author(node browser.Node) string {
	for _, a := range node.FindAll(browser.SelAnchor) {
		href, ok := a.Attr(browser.AttrHref)
		if !ok || !browser.IsProfilePath(href) {
			continue
		}
		if handle := handleFromPath(href); handle != "" {
			return handle
		}
	}
	return ""
}

func handleFromPath(href string) string {
	// Strip any scheme+host, keep the first path segment
	if i := strings.Index(href, "://"); i >= 0 {
		rest := href[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			href = rest[j:]
		} else {
			return ""
		}
	}
	href = strings.TrimPrefix(href, "/")
	if i := strings.IndexAny(href, "/?#"); i >= 0 {
		href = href[:i]
	}
	// Platform pages like /search or /explore are not profiles
	switch href {
	case "", "search", "explore", "home", "notifications", "messages", "i":
		return ""
	}
	return href
}

func (p *RecordParser) observedAt(node browser.Node) string {
	ts, ok := node.Find(browser.SelTimestamp)
	if !ok {
		return ""
	}
	dt, ok := ts.Attr(browser.AttrDatetime)
	if !ok {
		return ""
	}
	return strings.TrimSpace(dt)
}

// metric reads an engagement count, preferring the accessibility label over
// the abbreviated on-screen text.
func (p *RecordParser) metric(node browser.Node, selector string) int {
	el, ok := node.Find(selector)
	if !ok {
		return 0
	}
	if label, ok := el.Attr(browser.AttrLabel); ok && label != "" {
		return textnorm.ParseCount(label)
	}
	return textnorm.ParseCount(el.Text())
}
