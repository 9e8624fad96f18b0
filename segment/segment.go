package segment

import (
	"fmt"
	"strings"
)

// Strategy selects how a document is split.
type Strategy string

const (
	StrategyFixed    Strategy = "fixed"
	StrategyChapters Strategy = "chapters"
	StrategyAuto     Strategy = "auto"
)

// ParseStrategy converts a user-supplied name into a Strategy.
// Names are matched case-insensitively; anything unrecognized is rejected.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(name))); s {
	case StrategyFixed, StrategyChapters, StrategyAuto:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %w: %q", ErrSegmentation, ErrInvalidStrategy, name)
	}
}

// Options configures Segment.
type Options struct {
	// ChunkSize is the fixed-strategy window size in characters.
	ChunkSize int

	// Overlap is the number of characters repeated from the end of one
	// fixed chunk at the start of the next.
	Overlap int

	// Strategy selects fixed, chapters or auto.
	Strategy Strategy

	// ChapterMaxChars bounds a chapter segment; longer chapters are re-split
	// with the fixed strategy.
	ChapterMaxChars int

	// MinHeadings is the number of headings at which auto switches to the
	// chapters strategy.
	// Default: 2
	MinHeadings int
}

// DefaultOptions returns Options with the standard defaults.
func DefaultOptions() Options {
	return Options{
		ChunkSize:       8000,
		Overlap:         500,
		Strategy:        StrategyAuto,
		ChapterMaxChars: 20000,
		MinHeadings:     2,
	}
}

// Validate checks the options. A zero MinHeadings is replaced with the default.
func (o *Options) Validate() error {
	if o.ChunkSize <= 0 {
		return fmt.Errorf("%w: %w", ErrSegmentation, ErrInvalidChunkSize)
	}
	if o.Overlap < 0 {
		return fmt.Errorf("%w: %w", ErrSegmentation, ErrInvalidOverlap)
	}
	if o.ChapterMaxChars <= 0 {
		return fmt.Errorf("%w: %w", ErrSegmentation, ErrInvalidChapterMax)
	}
	if _, err := ParseStrategy(string(o.Strategy)); err != nil {
		return err
	}
	if o.MinHeadings <= 0 {
		o.MinHeadings = DefaultOptions().MinHeadings
	}
	return nil
}

// Segment splits text into ordered chunks according to opts.
// Whitespace-only text yields an empty slice and no error.
func Segment(text string, opts Options) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	strategy, _ := ParseStrategy(string(opts.Strategy))

	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	if strategy == StrategyAuto {
		strategy = Resolve(text, opts.MinHeadings)
	}

	if strategy == StrategyChapters {
		return splitChapters([]rune(text), opts), nil
	}
	return splitFixed([]rune(text), opts.ChunkSize, opts.Overlap), nil
}

// Resolve picks the concrete strategy auto would use for text.
func Resolve(text string, minHeadings int) Strategy {
	if minHeadings <= 0 {
		minHeadings = DefaultOptions().MinHeadings
	}
	if len(Headings(text)) >= minHeadings {
		return StrategyChapters
	}
	return StrategyFixed
}
