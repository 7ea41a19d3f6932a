package rag

import (
	"strings"
	"testing"
)

func TestChunkEmptyInput(t *testing.T) {
	if got := Chunk("", 1000, 200); got != nil {
		t.Fatalf("expected nil for empty input, got %d fragments", len(got))
	}
}

func TestChunkNoBoundariesExactWindows(t *testing.T) {
	text := strings.Repeat("a", 2400)
	fragments := Chunk(text, 1000, 200)
	if len(fragments) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(fragments))
	}

	wantSpans := [][2]int{{0, 1000}, {800, 1800}, {1600, 2400}}
	for i, f := range fragments {
		if f.Index != i {
			t.Fatalf("fragment %d: index %d", i, f.Index)
		}
		if f.Start != wantSpans[i][0] || f.End != wantSpans[i][1] {
			t.Fatalf("fragment %d: span [%d,%d), want [%d,%d)", i, f.Start, f.End, wantSpans[i][0], wantSpans[i][1])
		}
	}
	if fragments[0].Overlap != 0 {
		t.Fatalf("first fragment overlap %d, want 0", fragments[0].Overlap)
	}
	if fragments[1].Overlap != 200 || fragments[2].Overlap != 200 {
		t.Fatalf("overlaps %d/%d, want 200/200", fragments[1].Overlap, fragments[2].Overlap)
	}
}

func TestChunkSnapsToSentenceBoundary(t *testing.T) {
	// a period lands in the back half of the first window
	text := strings.Repeat("a", 80) + "." + strings.Repeat("b", 120)
	fragments := Chunk(text, 100, 20)
	if len(fragments) < 2 {
		t.Fatalf("expected at least 2 fragments, got %d", len(fragments))
	}
	if fragments[0].End != 81 {
		t.Fatalf("first cut at %d, want 81 (after the period)", fragments[0].End)
	}
	if !strings.HasSuffix(fragments[0].Content, ".") {
		t.Fatalf("first fragment should end at the sentence terminator: %q", fragments[0].Content)
	}
}

func TestChunkSnapsToWordBoundary(t *testing.T) {
	text := strings.Repeat("a", 80) + " " + strings.Repeat("b", 120)
	fragments := Chunk(text, 100, 20)
	if len(fragments) < 2 {
		t.Fatalf("expected at least 2 fragments, got %d", len(fragments))
	}
	if fragments[0].End != 80 {
		t.Fatalf("first cut at %d, want 80 (the space)", fragments[0].End)
	}
}

func TestChunkIgnoresBoundaryInFrontHalf(t *testing.T) {
	// the only period sits in the front half, so the cut stays at size
	text := "ab. " + strings.Repeat("c", 200)
	fragments := Chunk(text, 100, 10)
	if fragments[0].End != 100 {
		t.Fatalf("first cut at %d, want 100", fragments[0].End)
	}
}

func TestChunkTextShorterThanOverlap(t *testing.T) {
	fragments := Chunk("tiny", 1000, 200)
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}
	f := fragments[0]
	if f.Start != 0 || f.End != 4 || f.Content != "tiny" || f.Overlap != 0 {
		t.Fatalf("unexpected fragment %+v", f)
	}
}

func TestChunkTerminatesWhenOverlapEqualsCut(t *testing.T) {
	// overlap >= size is clamped; the walk must still finish
	text := strings.Repeat("x", 500)
	fragments := Chunk(text, 100, 100)
	if len(fragments) == 0 {
		t.Fatal("expected fragments")
	}
	last := fragments[len(fragments)-1]
	if last.End != 500 {
		t.Fatalf("last fragment ends at %d, want 500", last.End)
	}
}

func TestChunkCoversTextContiguously(t *testing.T) {
	text := strings.Repeat("word boundary text with sentences. ", 120)
	text = strings.TrimSpace(text)
	fragments := Chunk(text, 300, 60)

	if fragments[0].Start != 0 {
		t.Fatalf("first fragment starts at %d", fragments[0].Start)
	}
	for i := 1; i < len(fragments); i++ {
		if fragments[i].Start > fragments[i-1].End {
			t.Fatalf("gap between fragment %d (end %d) and %d (start %d)",
				i-1, fragments[i-1].End, i, fragments[i].Start)
		}
		if fragments[i].Index != fragments[i-1].Index+1 {
			t.Fatalf("indices not dense at %d", i)
		}
	}
	if got := fragments[len(fragments)-1].End; got != len([]rune(text)) {
		t.Fatalf("cover ends at %d, text has %d runes", got, len([]rune(text)))
	}
}

func TestChunkSkipsEmptyCutsWithoutIndexGaps(t *testing.T) {
	// whitespace-only window content is dropped but indices stay dense
	text := "abc" + strings.Repeat(" ", 50) + "def"
	fragments := Chunk(text, 10, 2)
	for i, f := range fragments {
		if f.Index != i {
			t.Fatalf("fragment %d carries index %d", i, f.Index)
		}
		if strings.TrimSpace(f.Content) == "" {
			t.Fatalf("fragment %d has empty content", i)
		}
	}
}
