package feed

import "testing"

func TestRecordKey(t *testing.T) {
	a := Record{Author: "alice", ObservedAt: "2024-05-01T10:00:00Z", Text: "market up"}
	b := Record{Author: "alice", ObservedAt: "2024-05-01T10:00:00Z", Text: "market up"}

	if a.Key() != b.Key() {
		t.Error("identical author/timestamp/text must share a key")
	}

	// The platform ID is not part of the identity
	b.ID = "12345"
	if a.Key() != b.Key() {
		t.Error("platform ID must not affect the key")
	}

	c := b
	c.Text = "market down"
	if a.Key() == c.Key() {
		t.Error("different text must produce a different key")
	}

	d := b
	d.ObservedAt = "2024-05-01T10:00:01Z"
	if a.Key() == d.Key() {
		t.Error("different timestamp must produce a different key")
	}
}
