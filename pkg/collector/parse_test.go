package collector

import (
	"testing"
	"time"

	"tagsignal/pkg/browser"
	"tagsignal/pkg/config"
	"tagsignal/pkg/feed"
	"tagsignal/pkg/logger"
)

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := logger.New(&config.LoggingConfig{Level: "disabled"})
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return log
}

func postNode(t *testing.T, html string) browser.Node {
	t.Helper()
	nodes, err := browser.ParseNodes(html, browser.SelPost)
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("fixture should contain exactly one post, got %d", len(nodes))
	}
	return nodes[0]
}

func TestParseFullPost(t *testing.T) {
	node := postNode(t, `
<article>
  <a href="/alice">alice</a>
  <a href="/alice/status/12345"><time datetime="2024-05-01T10:00:00.000Z">1h</time></a>
  <div data-testid="tweetText">Check http://x.co @bob #nifty50 breakout</div>
  <div data-testid="like" aria-label="1,234 Likes"></div>
  <div data-testid="retweet" aria-label="56 reposts"></div>
  <div data-testid="reply" aria-label="7 Replies"></div>
</article>`)

	p := NewRecordParser(testLogger(t))
	rec, ok := p.Parse(node)
	if !ok {
		t.Fatal("expected the post to parse")
	}

	if rec.ID != "12345" {
		t.Errorf("ID = %q, want 12345", rec.ID)
	}
	if rec.Author != "alice" || rec.AuthorDefaulted {
		t.Errorf("Author = %q (defaulted=%v), want alice", rec.Author, rec.AuthorDefaulted)
	}
	if rec.ObservedAt != "2024-05-01T10:00:00.000Z" || rec.ObservedAtDefaulted {
		t.Errorf("ObservedAt = %q (defaulted=%v)", rec.ObservedAt, rec.ObservedAtDefaulted)
	}
	if rec.Text != "Check nifty50 breakout" {
		t.Errorf("Text = %q", rec.Text)
	}
	if len(rec.Mentions) != 1 || rec.Mentions[0] != "bob" {
		t.Errorf("Mentions = %v", rec.Mentions)
	}
	if len(rec.Tags) != 1 || rec.Tags[0] != "nifty50" {
		t.Errorf("Tags = %v", rec.Tags)
	}
	want := feed.Engagement{Likes: 1234, Reshares: 56, Replies: 7}
	if rec.Engagement != want {
		t.Errorf("Engagement = %+v, want %+v", rec.Engagement, want)
	}
}

func TestParseAuthorFallback(t *testing.T) {
	node := postNode(t, `
<article>
  <a href="/i/status/999"></a>
  <div data-testid="tweetText">orphaned body</div>
</article>`)

	p := NewRecordParser(testLogger(t))
	rec, ok := p.Parse(node)
	if !ok {
		t.Fatal("expected the post to parse")
	}
	if rec.Author != feed.UnknownAuthor {
		t.Errorf("Author = %q, want %q", rec.Author, feed.UnknownAuthor)
	}
	if !rec.AuthorDefaulted {
		t.Error("AuthorDefaulted should be set")
	}
	if rec.ID != "999" {
		t.Errorf("ID = %q, want 999", rec.ID)
	}
}

func TestParseTimestampFallback(t *testing.T) {
	node := postNode(t, `
<article>
  <a href="/alice">alice</a>
  <div data-testid="tweetText">no timestamp here</div>
</article>`)

	p := NewRecordParser(testLogger(t))
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	rec, ok := p.Parse(node)
	if !ok {
		t.Fatal("expected the post to parse")
	}
	if rec.ObservedAt != "2024-05-01T12:00:00Z" {
		t.Errorf("ObservedAt = %q", rec.ObservedAt)
	}
	if !rec.ObservedAtDefaulted {
		t.Error("ObservedAtDefaulted should be set")
	}
}

func TestParseSkipsHollowNode(t *testing.T) {
	node := postNode(t, `<article><span>promoted</span></article>`)

	p := NewRecordParser(testLogger(t))
	if _, ok := p.Parse(node); ok {
		t.Error("a node with neither body nor post link must be skipped")
	}
}

func TestParseMetricFromText(t *testing.T) {
	node := postNode(t, `
<article>
  <div data-testid="tweetText">body</div>
  <div data-testid="like">42</div>
</article>`)

	p := NewRecordParser(testLogger(t))
	rec, ok := p.Parse(node)
	if !ok {
		t.Fatal("expected the post to parse")
	}
	if rec.Engagement.Likes != 42 {
		t.Errorf("Likes = %d, want 42 (text fallback)", rec.Engagement.Likes)
	}
}

func TestParseMissingMetricsAreZero(t *testing.T) {
	node := postNode(t, `<article><div data-testid="tweetText">quiet post</div></article>`)

	p := NewRecordParser(testLogger(t))
	rec, ok := p.Parse(node)
	if !ok {
		t.Fatal("expected the post to parse")
	}
	if rec.Engagement != (feed.Engagement{}) {
		t.Errorf("Engagement = %+v, want zeros", rec.Engagement)
	}
}
