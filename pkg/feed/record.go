package feed

// UnknownAuthor is the sentinel handle used when no author could be
// extracted from a post node.
const UnknownAuthor = "unknown"

// Engagement holds the per-post interaction counts. Missing counts stay 0.
type Engagement struct {
	Likes    int `json:"likes"`
	Reshares int `json:"reshares"`
	Replies  int `json:"replies"`
}

// Record is one normalized observation derived from a single feed post.
// A Record is immutable once it has been admitted by the dedup store.
type Record struct {
	// ID is the platform-assigned post identifier. Empty when the source
	// node carried no recognizable post link.
	ID string `json:"id,omitempty"`

	// Author is the display handle. When it could not be extracted it is
	// UnknownAuthor and AuthorDefaulted is set, so consumers can tell
	// "observed" from "defaulted".
	Author          string `json:"author"`
	AuthorDefaulted bool   `json:"author_defaulted,omitempty"`

	// ObservedAt is the post timestamp in ISO-8601 form. When the source
	// omitted it, it is the collection time and ObservedAtDefaulted is set.
	ObservedAt          string `json:"observed_at"`
	ObservedAtDefaulted bool   `json:"observed_at_defaulted,omitempty"`

	// Text is the normalized body: links, mentions and tag markers
	// stripped, whitespace collapsed.
	Text string `json:"text"`

	Engagement Engagement `json:"engagement"`

	// Mentions and Tags are extracted from the pre-normalization body, in
	// order of appearance.
	Mentions []string `json:"mentions,omitempty"`
	Tags     []string `json:"tags,omitempty"`

	// SourceTag is the topic tag whose pass first observed this record.
	SourceTag string `json:"source_tag,omitempty"`
}

// Key returns the composite dedup identity: author + timestamp + normalized
// text. The platform ID is deliberately not part of the key, since it may be
// absent; two records with identical author/timestamp/text are treated as
// the same observation even if the platform would distinguish them.
func (r *Record) Key() string {
	return r.Author + r.ObservedAt + r.Text
}
