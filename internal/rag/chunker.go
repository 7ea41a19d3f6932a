package rag

import (
	"strings"
	"unicode/utf8"
)

// Fragment is one passage cut from normalized text, before persistence.
// Start and End are rune offsets into the normalized text; Overlap counts
// the characters shared with the preceding fragment.
type Fragment struct {
	Index   int
	Content string
	Size    int
	Overlap int
	Start   int
	End     int
}

// Chunk walks text in windows of size runes. Before cutting it looks
// backward from the naive window end for a sentence terminator in the back
// half of the window, else a word boundary in the back half, and cuts there;
// otherwise it cuts exactly at size. The next window starts overlap runes
// before the cut. Fragments whose content trims to empty are skipped without
// consuming an index. Returns nil for empty input.
func Chunk(text string, size, overlap int) []Fragment {
	if text == "" || size <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}

	runes := []rune(text)
	var fragments []Fragment
	index := 0
	start := 0
	prevEnd := 0

	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			end = len(runes)
		} else {
			if cut := lastIndexInWindow(runes, '.', start, end); cut > start+size/2 {
				end = cut + 1
			} else if cut := lastIndexInWindow(runes, ' ', start, end); cut > start+size/2 {
				end = cut
			}
		}

		content := strings.TrimSpace(string(runes[start:end]))
		if content != "" {
			ov := 0
			if index > 0 && prevEnd > start {
				ov = prevEnd - start
			}
			fragments = append(fragments, Fragment{
				Index:   index,
				Content: content,
				Size:    utf8.RuneCountInString(content),
				Overlap: ov,
				Start:   start,
				End:     end,
			})
			index++
			prevEnd = end
		}

		if end >= len(runes) {
			break
		}
		next := end - overlap
		if next <= start {
			// overlap would stall the walk; advance past the cut instead
			next = end
		}
		start = next
	}

	return fragments
}

// lastIndexInWindow returns the largest i in [start, end) with runes[i] == r,
// or -1 when absent.
func lastIndexInWindow(runes []rune, r rune, start, end int) int {
	for i := end - 1; i >= start; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}
