// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/poiesic/lorekeeper/config"
	"github.com/poiesic/lorekeeper/export"
	"github.com/poiesic/lorekeeper/journal"
	"github.com/poiesic/lorekeeper/pipeline"
	"github.com/poiesic/lorekeeper/segment"
	"github.com/urfave/cli/v2"
)

const previewRunes = 60

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Check an output file against the entry schema",
		ArgsUsage: "<file.json|file.jsonl>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("verify: expected one file", 2)
			}
			path := c.Args().First()
			n, err := export.VerifyFile(path)
			if errors.Is(err, export.ErrSchemaViolation) {
				fmt.Fprintln(c.App.ErrWriter, defaultTheme.errorStyle().Render(err.Error()))
				return cli.Exit("", 1)
			}
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			fmt.Fprintln(c.App.Writer, defaultTheme.successStyle().Render(fmt.Sprintf("%s: %d valid entries", path, n)))
			return nil
		},
	}
}

func journalCommand() *cli.Command {
	return &cli.Command{
		Name:      "journal",
		Usage:     "Summarize a resume log and list chunks whose last attempt failed",
		ArgsUsage: "[resume-log]",
		Action: func(c *cli.Context) error {
			path := config.DefaultResumeLog
			if c.NArg() > 0 {
				path = c.Args().First()
			}
			idx, err := journal.LoadIndex(path)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}

			w := c.App.Writer
			defaultTheme.renderJournal(w, path, idx)
			for _, r := range idx.Failed() {
				fmt.Fprintf(w, "  %s #%d after %d attempt(s): %s\n", r.Source, r.ChunkIndex, r.Attempts, r.Error)
			}
			return nil
		},
	}
}

func segmentCommand() *cli.Command {
	return &cli.Command{
		Name:      "segment",
		Usage:     "Show how a file would be split into chunks",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "chunk-size", Usage: "Fixed chunk size in characters"},
			&cli.IntFlag{Name: "overlap", Usage: "Characters shared by consecutive fixed chunks"},
			&cli.StringFlag{Name: "strategy", Usage: "Segmentation strategy (fixed, chapters, auto)"},
			&cli.IntFlag{Name: "chapter-max", Usage: "Longest chapter kept whole, in characters"},
			&cli.IntFlag{Name: "min-headings", Usage: "Headings needed for auto to pick chapters"},
			&cli.BoolFlag{Name: "headings", Usage: "Also list the detected Markdown headings"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("segment: expected one file", 2)
			}

			opts := segment.DefaultOptions()
			if c.IsSet("chunk-size") {
				opts.ChunkSize = c.Int("chunk-size")
			}
			if c.IsSet("overlap") {
				opts.Overlap = c.Int("overlap")
			}
			if c.IsSet("strategy") {
				strategy, err := segment.ParseStrategy(c.String("strategy"))
				if err != nil {
					return cli.Exit(err.Error(), 2)
				}
				opts.Strategy = strategy
			}
			if c.IsSet("chapter-max") {
				opts.ChapterMaxChars = c.Int("chapter-max")
			}
			if c.IsSet("min-headings") {
				opts.MinHeadings = c.Int("min-headings")
			}

			doc, err := pipeline.LoadDocument(c.Args().First(), opts)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}

			w := c.App.Writer
			fmt.Fprintln(w, defaultTheme.headerStyle().Render(
				fmt.Sprintf("%s: %d chunks, %d characters, %s", doc.Path, len(doc.Chunks), doc.Runes, doc.Strategy)))
			for i, chunk := range doc.Chunks {
				fmt.Fprintf(w, "%4d %7d  %s\n", i, len([]rune(chunk)), preview(chunk))
			}

			if c.Bool("headings") {
				data, err := os.ReadFile(doc.Path)
				if err != nil {
					return cli.Exit(err.Error(), 2)
				}
				fmt.Fprintln(w, defaultTheme.hintStyle().Render("headings"))
				for _, h := range segment.Headings(string(data)) {
					fmt.Fprintf(w, "%6d  %s %s\n", h.Line+1, strings.Repeat("#", h.Level), h.Title)
				}
			}
			return nil
		},
	}
}

func preview(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= previewRunes {
		return flat
	}
	return string(runes[:previewRunes]) + "..."
}
