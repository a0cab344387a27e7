package textnorm

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "links mentions and markers stripped",
			in:   "Check http://x.co @alice #nifty50 now  ",
			want: "Check nifty50 now",
		},
		{
			name: "https link",
			in:   "read https://example.com/a?b=1 today",
			want: "read today",
		},
		{
			name: "whitespace collapsed",
			in:   "a\n\tb   c",
			want: "a b c",
		},
		{
			name: "only a link",
			in:   "http://x.co",
			want: "",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "tag word survives",
			in:   "#banknifty breakout",
			want: "banknifty breakout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractMentions(t *testing.T) {
	got := ExtractMentions("cc @alice and @bob_22, not alice@example.com")
	want := []string{"alice", "bob_22", "example"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractMentions = %v, want %v", got, want)
	}

	if got := ExtractMentions("no handles here"); got != nil {
		t.Errorf("expected nil for text without mentions, got %v", got)
	}
}

func TestExtractTags(t *testing.T) {
	got := ExtractTags("#nifty50 rally, #sensex too")
	want := []string{"nifty50", "sensex"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractTags = %v, want %v", got, want)
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1,234 likes", 1234},
		{"3 replies", 3},
		{"0", 0},
		{"", 0},
		{"no digits", 0},
		{"12,345,678 reposts", 12345678},
	}

	for _, tt := range tests {
		if got := ParseCount(tt.in); got != tt.want {
			t.Errorf("ParseCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
