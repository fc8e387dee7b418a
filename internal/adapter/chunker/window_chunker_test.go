package chunker

import (
	"strings"
	"testing"

	"github.com/thebraudalf/fnb-docbot/internal/domain"
)

func TestNewWindowChunkerValidation(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"valid", 700, 100, false},
		{"zero overlap", 10, 0, false},
		{"zero size", 0, 0, true},
		{"negative size", -5, 0, true},
		{"negative overlap", 10, -1, true},
		{"overlap equals size", 10, 10, true},
		{"overlap beyond size", 10, 20, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewWindowChunker(tc.size, tc.overlap)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !domain.IsKind(err, domain.KindInvalidConfiguration) {
					t.Errorf("expected invalid_configuration, got %v", domain.KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSplitEmptyInput(t *testing.T) {
	c, err := NewWindowChunker(700, 100)
	if err != nil {
		t.Fatal(err)
	}

	if got := c.Split(""); len(got) != 0 {
		t.Errorf("expected no chunks for empty input, got %d", len(got))
	}
	if got := c.Split("   \n\t  "); len(got) != 0 {
		t.Errorf("expected no chunks for whitespace-only input, got %d", len(got))
	}
}

func TestSplitShortText(t *testing.T) {
	c, err := NewWindowChunker(700, 100)
	if err != nil {
		t.Fatal(err)
	}

	chunks := c.Split("short text")
	if len(chunks) != 1 {
		t.Fatalf("expected exactly one chunk, got %d", len(chunks))
	}
	if chunks[0] != "short text" {
		t.Errorf("expected chunk to equal the whole text, got %q", chunks[0])
	}
}

func TestSplitNormalizesWhitespace(t *testing.T) {
	c, err := NewWindowChunker(50, 10)
	if err != nil {
		t.Fatal(err)
	}

	chunks := c.Split("first  line\n\nsecond\tline\r\n  third ")
	if len(chunks) != 1 {
		t.Fatalf("expected one chunk, got %d", len(chunks))
	}
	if chunks[0] != "first line second line third" {
		t.Errorf("unexpected normalization: %q", chunks[0])
	}
}

func TestSplitWindowSpans(t *testing.T) {
	c, err := NewWindowChunker(700, 100)
	if err != nil {
		t.Fatal(err)
	}

	text := strings.Repeat("a", 1500)
	chunks := c.Split(text)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for 1500 chars, got %d", len(chunks))
	}
	// Spans [0,700), [600,1300), [1200,1500).
	wantLens := []int{700, 700, 300}
	for i, want := range wantLens {
		if len(chunks[i]) != want {
			t.Errorf("chunk %d: expected length %d, got %d", i, want, len(chunks[i]))
		}
	}
}

func TestSplitOverlapAndReconstruction(t *testing.T) {
	const size, overlap = 40, 7
	c, err := NewWindowChunker(size, overlap)
	if err != nil {
		t.Fatal(err)
	}

	texts := []string{
		"The quick brown fox jumps over the lazy dog again and again until it gets tired of jumping entirely.",
		strings.Repeat("abcdefghij ", 30),
		"exactly-forty-characters-long-input-here",
	}

	for _, text := range texts {
		normalized := Normalize(text)
		chunks := c.Split(text)
		if len(chunks) == 0 {
			t.Fatalf("no chunks for %q", text)
		}

		// Every chunk but the last is full width, and consecutive chunks
		// share exactly overlap characters.
		for i := 0; i < len(chunks)-1; i++ {
			cur, next := chunks[i], chunks[i+1]
			if len(cur) != size {
				t.Errorf("chunk %d: expected full width %d, got %d", i, size, len(cur))
			}
			if cur[len(cur)-overlap:] != next[:overlap] {
				t.Errorf("chunks %d/%d do not share %d chars: %q vs %q", i, i+1, overlap, cur, next)
			}
		}

		// Concatenating the unique (non-overlapping) spans rebuilds the
		// normalized text exactly.
		var sb strings.Builder
		sb.WriteString(chunks[0])
		for i := 1; i < len(chunks); i++ {
			sb.WriteString(chunks[i][overlap:])
		}
		if sb.String() != normalized {
			t.Errorf("reconstruction mismatch:\nwant %q\ngot  %q", normalized, sb.String())
		}
	}
}

func TestSplitNoGaps(t *testing.T) {
	c, err := NewWindowChunker(10, 3)
	if err != nil {
		t.Fatal(err)
	}

	text := "0123456789abcdefghijklmnopqrstuvwxyz"
	chunks := c.Split(text)

	pos := 0
	for i, chunk := range chunks {
		if text[pos:pos+len(chunk)] != chunk {
			t.Fatalf("chunk %d does not start at expected offset %d", i, pos)
		}
		pos += len(chunk) - 3
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Error("final chunk does not reach the end of the text")
	}
}
