package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/poiesic/lorekeeper"
	"github.com/poiesic/lorekeeper/journal"
	"github.com/poiesic/lorekeeper/pipeline"
)

// Theme holds the colors used for run summaries.
type Theme struct {
	Header  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

var defaultTheme = Theme{
	Header:  lipgloss.Color("#5FAFD7"),
	Success: lipgloss.Color("#00D787"),
	Error:   lipgloss.Color("#FF005F"),
	Hint:    lipgloss.Color("#6C6C6C"),
}

func (t Theme) headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Header).Bold(true)
}

func (t Theme) successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) renderReport(w io.Writer, r lorekeeper.Report) {
	switch r.Status {
	case pipeline.StatusInputNotFound:
		fmt.Fprintln(w, t.errorStyle().Render("input not found: "+r.Input))
		return
	case pipeline.StatusPartialFailure:
		failures := r.Failures()
		fmt.Fprintln(w, t.errorStyle().Render(fmt.Sprintf("%d chunk(s) failed in %d file(s); rerun to retry them",
			len(failures), len(r.FailedFiles()))))
		for _, f := range failures {
			fmt.Fprintf(w, "  %s #%d after %d attempt(s): %s\n", f.Source, f.ChunkIndex, f.Attempts, f.Error)
		}
	}

	if len(r.Files) > 1 {
		for _, f := range r.Files {
			mark := t.successStyle().Render("ok")
			if !f.Succeeded() {
				mark = t.errorStyle().Render("failed")
			}
			fmt.Fprintf(w, "  %-6s %s (%s, %d chunks, %d entries)\n",
				mark, filepath.Base(f.Path), f.Strategy, f.Chunks, len(f.Entries))
		}
	}

	chunks, cached, attempted, failed := r.Totals()
	fmt.Fprintln(w, t.hintStyle().Render(fmt.Sprintf("%d chunks: %d cached, %d extracted, %d failed in %s",
		chunks, cached, attempted-failed, failed, r.Elapsed.Round(time.Millisecond))))

	if r.Status != pipeline.StatusOK {
		return
	}
	fmt.Fprintln(w, t.successStyle().Render(fmt.Sprintf("%d entries", len(r.Entries))))
	for _, out := range r.Outputs {
		fmt.Fprintln(w, "  wrote "+out)
	}
	if r.Imported > 0 {
		fmt.Fprintf(w, "  imported %d entries\n", r.Imported)
	}
}

func (t Theme) renderEstimate(w io.Writer, e *pipeline.Estimate) {
	fmt.Fprintln(w, t.headerStyle().Render("Estimate"))
	fmt.Fprintf(w, "  files:        %d\n", e.Files)
	fmt.Fprintf(w, "  chunks:       %d (%d cached)\n", e.Chunks, e.CachedChunks)
	fmt.Fprintf(w, "  model calls:  %d\n", e.Calls)
	fmt.Fprintf(w, "  input tokens: %d\n", e.InputTokens)
	fmt.Fprintln(w, t.hintStyle().Render("output tokens are not included"))
}

func (t Theme) renderJournal(w io.Writer, path string, idx *journal.Index) {
	s := idx.Stats()
	fmt.Fprintln(w, t.headerStyle().Render("Resume log "+path))
	fmt.Fprintf(w, "  lines:     %d (%d unreadable)\n", s.Lines, s.Skipped)
	fmt.Fprintf(w, "  chunks:    %d\n", s.Records)
	fmt.Fprintf(w, "  succeeded: %s\n", t.successStyle().Render(fmt.Sprint(s.Succeeded)))
	if s.Failed > 0 {
		fmt.Fprintf(w, "  failed:    %s\n", t.errorStyle().Render(fmt.Sprint(s.Failed)))
	} else {
		fmt.Fprintf(w, "  failed:    %d\n", s.Failed)
	}
	fmt.Fprintf(w, "  entries:   %d\n", s.Entries)
}
