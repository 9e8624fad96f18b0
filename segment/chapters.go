package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(\S.*)$`)

// Heading is a Markdown heading line detected outside fenced code blocks.
type Heading struct {
	// Line is the 0-based line number.
	Line int
	// Offset is the rune offset of the start of the line.
	Offset int
	// Level is the number of leading '#' markers (1-6).
	Level int
	// Title is the heading text without markers.
	Title string
}

// Headings returns the headings of text in document order. Lines inside
// ``` fences are ignored.
func Headings(text string) []Heading {
	var headings []Heading
	inFence := false
	offset := 0

	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(line, "\r")
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		} else if !inFence {
			if m := headingPattern.FindStringSubmatch(trimmed); m != nil {
				headings = append(headings, Heading{
					Line:   i,
					Offset: offset,
					Level:  len(m[1]),
					Title:  strings.TrimSpace(m[2]),
				})
			}
		}
		offset += utf8.RuneCountInString(line) + 1
	}
	return headings
}

// splitChapters produces one segment per heading plus a non-empty preface.
// Oversized segments are re-split with the fixed strategy.
func splitChapters(text []rune, opts Options) []string {
	headings := Headings(string(text))

	bounds := make([]int, 0, len(headings)+2)
	bounds = append(bounds, 0)
	for _, h := range headings {
		if h.Offset > 0 {
			bounds = append(bounds, h.Offset)
		}
	}
	bounds = append(bounds, len(text))

	size := opts.ChunkSize
	if opts.ChapterMaxChars < size {
		size = opts.ChapterMaxChars
	}

	var chunks []string
	for i := 0; i+1 < len(bounds); i++ {
		section := text[bounds[i]:bounds[i+1]]
		if strings.TrimSpace(string(section)) == "" {
			continue
		}
		if len(section) > opts.ChapterMaxChars {
			chunks = append(chunks, splitFixed(section, size, opts.Overlap)...)
			continue
		}
		chunks = append(chunks, string(section))
	}
	return chunks
}
