package segment

import "log/slog"

// sentenceEnds are the punctuation marks accepted as a cut point when no
// line break is available. The mark stays with the preceding chunk.
var sentenceEnds = []rune{'。', '.', '！', '!', '？', '?'}

// splitFixed cuts text into windows of at most size runes. Each window after
// the first starts overlap runes before the previous cut, and the start
// always moves forward.
func splitFixed(text []rune, size, overlap int) []string {
	if len(text) <= size {
		return []string{string(text)}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			chunks = append(chunks, string(text[start:]))
			break
		}

		cut := findCut(text, start+size/2, end)
		if cut <= start {
			cut = end
		}
		chunks = append(chunks, string(text[start:cut]))

		next := cut - overlap
		if next <= start {
			// overlap too large to make progress; continue without overlap
			slog.Default().With("component", "segment").Debug("overlap dropped for next chunk",
				"chunk", len(chunks), "start", start, "cut", cut, "overlap", overlap)
			next = cut
		}
		start = next
	}
	return chunks
}

// findCut searches text[lo:end] backwards for a paragraph break, then a line
// break, then a sentence end. It returns end when nothing is found.
func findCut(text []rune, lo, end int) int {
	if i := lastIndex(text, []rune("\n\n"), lo, end); i >= 0 {
		return i
	}
	if i := lastIndex(text, []rune("\n"), lo, end); i >= 0 {
		return i
	}
	for _, mark := range sentenceEnds {
		if i := lastIndex(text, []rune{mark}, lo, end); i >= 0 {
			return i + 1
		}
	}
	return end
}

// lastIndex returns the start of the last occurrence of sub lying entirely
// within text[lo:end], or -1.
func lastIndex(text, sub []rune, lo, end int) int {
	if lo < 0 {
		lo = 0
	}
	if end > len(text) {
		end = len(text)
	}
	for i := end - len(sub); i >= lo; i-- {
		match := true
		for j, r := range sub {
			if text[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
