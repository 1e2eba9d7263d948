package jsonrepair

import (
	"errors"
	"testing"

	"github.com/forPelevin/vidarticle/internal/types"
)

type proposal struct {
	Title  string `json:"title"`
	Topics []struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"topics"`
}

func TestUnmarshal_Placeholder(t *testing.T) {
	var got map[string]any
	if err := Unmarshal(`{"a": 1, ...}`, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got["a"] != float64(1) {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestUnmarshal_Variants(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantTopics int
		wantEnd    string
	}{
		{"valid", `{"title":"t","topics":[{"start":"0:00:00","end":"0:01:00"}]}`, 1, "0:01:00"},
		{"list placeholder", `{"title":"t","topics":[{"start":"0:00:00","end":"0:01:00"},...]}`, 1, "0:01:00"},
		{"spaced placeholder", `{"title":"t","topics":[{"start":"0:00:00","end":"0:01:00"}, ...]}`, 1, "0:01:00"},
		{"end ellipsis", `{"title":"t","topics":[{"start":"0:00:00","end": ...}]}`, 1, "0:00:00"},
		{"end ellipsis before quote", `{"title":"t","description":"d","topics":[{"start":"0:00:00","end": ..."}]}`, 1, "0:00:00"},
		{"end literal with placeholder", `{"title":"t","topics":[{"start":"0:00:00","end": "end"}, ...]}`, 1, "00:00:00"},
		{"end literal in valid json is kept", `{"title":"t","topics":[{"start":"0:00:00","end": "end"}]}`, 1, "end"},
		{"extra brace", `{"title":"t","topics":[{"start":"0:00:00","end":"0:01:00"}]}}`, 1, "0:01:00"},
		{"extra bracket", `{"title":"t","topics":[{"start":"0:00:00","end":"0:01:00"}]}]`, 1, "0:01:00"},
		{"extra brace with newline", "{\"title\":\"t\",\"topics\":[]}}\n", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p proposal
			if err := Unmarshal(tt.in, &p); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Title != "t" {
				t.Fatalf("unexpected title %q", p.Title)
			}
			if len(p.Topics) != tt.wantTopics {
				t.Fatalf("expected %d topics, got %d", tt.wantTopics, len(p.Topics))
			}
			if tt.wantTopics > 0 && p.Topics[0].End != tt.wantEnd {
				t.Fatalf("expected end %q, got %q", tt.wantEnd, p.Topics[0].End)
			}
		})
	}
}

func TestUnmarshal_Unrecoverable(t *testing.T) {
	for _, in := range []string{
		`{"title": "t", "topics": [{"start": "0:00:00"`,
		`not json at all`,
		`{"a": 1}}}`,
		``,
	} {
		var p proposal
		err := Unmarshal(in, &p)
		if !errors.Is(err, types.ErrMalformedResponse) {
			t.Fatalf("expected malformed response for %q, got %v", in, err)
		}
	}
}

func TestUnmarshal_SchemaMismatch(t *testing.T) {
	var p proposal
	err := Unmarshal(`{"title": 5}`, &p)
	if !errors.Is(err, types.ErrMalformedResponse) {
		t.Fatalf("expected malformed response, got %v", err)
	}
}
