package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/poiesic/lorekeeper"
	"github.com/poiesic/lorekeeper/ai"
	"github.com/poiesic/lorekeeper/config"
	"github.com/poiesic/lorekeeper/export"
	"github.com/poiesic/lorekeeper/pipeline"
	"github.com/urfave/cli/v2"
)

func extractCommand(model ai.Model) *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "Extract lore entries from a file or a directory of .md/.markdown/.txt files",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
			&cli.IntFlag{Name: "chunk-size", Usage: "Fixed chunk size in characters"},
			&cli.IntFlag{Name: "overlap", Usage: "Characters shared by consecutive fixed chunks"},
			&cli.StringFlag{Name: "strategy", Usage: "Segmentation strategy (fixed, chapters, auto)"},
			&cli.IntFlag{Name: "chapter-max", Usage: "Longest chapter kept whole, in characters"},
			&cli.IntFlag{Name: "min-headings", Usage: "Headings needed for auto to pick chapters"},
			&cli.IntFlag{Name: "retry-max", Usage: "Extraction attempts per chunk"},
			&cli.DurationFlag{Name: "retry-delay", Usage: "Wait after the first failed attempt, doubling after each"},
			&cli.BoolFlag{Name: "gleaning", Usage: "Ask the model for missed entries after each chunk", Value: true},
			&cli.BoolFlag{Name: "no-gleaning", Usage: "Disable the gleaning pass"},
			&cli.BoolFlag{Name: "llm-merge", Usage: "Merge entries across chunks with one model call"},
			&cli.BoolFlag{Name: "preserve-order", Usage: "Keep extraction order instead of sorting by priority"},
			&cli.StringFlag{Name: "resume-log", Usage: "Journal of processed chunks", Value: config.DefaultResumeLog},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write entries to this file (.json, .jsonl or .xlsx)"},
			&cli.StringFlag{Name: "output-jsonl", Usage: "Also write entries as JSON Lines"},
			&cli.StringFlag{Name: "output-xlsx", Usage: "Also write entries as an XLSX workbook"},
			&cli.BoolFlag{Name: "recursive", Usage: "Descend into subdirectories", Value: true},
			&cli.StringFlag{Name: "provider", Usage: "Model provider (openai, ollama, anthropic, bedrock)"},
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "Model name"},
			&cli.StringFlag{Name: "host", Usage: "Model endpoint URL"},
			&cli.Float64Flag{Name: "temperature", Usage: "Sampling temperature"},
			&cli.IntFlag{Name: "max-tokens", Usage: "Maximum tokens per response"},
			&cli.StringFlag{Name: "prompts-dir", Usage: "Directory with system.txt, user.txt, gleaning.txt, merge.txt"},
			&cli.StringFlag{Name: "import", Usage: "Save entries to badger:<dir> or sqlite:<file> after a successful run"},
			&cli.StringSliceFlag{Name: "tag", Usage: "Extra tag for imported entries (repeatable)"},
			&cli.BoolFlag{Name: "stream", Usage: "Echo model output to stderr as it arrives"},
			&cli.BoolFlag{Name: "estimate", Usage: "Print a token estimate before running"},
			&cli.BoolFlag{Name: "estimate-only", Usage: "Print a token estimate and exit without calling the model"},
		},
		Action: func(c *cli.Context) error {
			return extractAction(c, model)
		},
	}
}

func extractAction(c *cli.Context, model ai.Model) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	applyFlags(c, &cfg)
	if c.NArg() > 0 {
		cfg.Input = c.Args().First()
	}
	if cfg.Input == "" {
		return cli.Exit("extract: missing <path>", 2)
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err.Error(), 2)
	}

	// Logging set in the config file applies unless given on the command line
	if !c.IsSet("log-level") && !c.IsSet("log-file") && (cfg.LogLevel != "info" || cfg.LogFile != "") {
		cleanup, err := setupLogger(c.App.ErrWriter, cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return err
		}
		defer cleanup()
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stderr := c.App.ErrWriter
	opts := lorekeeper.Options{Config: cfg, Model: model, Progress: stderr}
	if cfg.Stream {
		opts.Stream = func(_ context.Context, chunk string) error {
			_, err := io.WriteString(stderr, chunk)
			return err
		}
	}

	theme := defaultTheme
	fmt.Fprintln(stderr, theme.headerStyle().Render("lorekeeper "+cfg.Input))
	fmt.Fprintln(stderr, theme.hintStyle().Render(fmt.Sprintf("provider %s, model %s, strategy %s, resume log %s",
		cfg.Provider, cfg.Model, cfg.ChunkStrategy, cfg.ResumeLog)))

	report, err := lorekeeper.Run(ctx, opts)
	if err != nil {
		if report.Report != nil {
			theme.renderReport(stderr, report)
		}
		return cli.Exit(fmt.Sprintf("extract failed: %v", err), 2)
	}

	if report.Estimate != nil {
		theme.renderEstimate(stderr, report.Estimate)
	}
	if cfg.EstimateOnly {
		if report.Status != pipeline.StatusOK {
			theme.renderReport(stderr, report)
			return cli.Exit("", report.Status.ExitCode())
		}
		return nil
	}

	theme.renderReport(stderr, report)
	if report.Status != pipeline.StatusOK {
		return cli.Exit("", report.Status.ExitCode())
	}

	if cfg.Output == "" {
		if err := export.WriteJSON(c.App.Writer, report.Entries); err != nil {
			return cli.Exit(err.Error(), 2)
		}
	}
	slog.Debug("extract finished", "entries", len(report.Entries), "imported", report.Imported)
	return nil
}

// applyFlags copies explicitly set flags over file values.
func applyFlags(c *cli.Context, cfg *config.Config) {
	setInt := func(name string, dst *int) {
		if c.IsSet(name) {
			*dst = c.Int(name)
		}
	}
	setString := func(name string, dst *string) {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	setBool := func(name string, dst *bool) {
		if c.IsSet(name) {
			*dst = c.Bool(name)
		}
	}

	setInt("chunk-size", &cfg.ChunkSize)
	setInt("overlap", &cfg.Overlap)
	setString("strategy", &cfg.ChunkStrategy)
	setInt("chapter-max", &cfg.ChapterMax)
	setInt("min-headings", &cfg.MinHeadings)
	setInt("retry-max", &cfg.RetryMax)
	if c.IsSet("retry-delay") {
		cfg.RetryDelay = c.Duration("retry-delay")
	}
	setBool("gleaning", &cfg.Gleaning)
	if c.Bool("no-gleaning") {
		cfg.Gleaning = false
	}
	setBool("llm-merge", &cfg.LLMMerge)
	setBool("preserve-order", &cfg.PreserveOrder)
	setString("resume-log", &cfg.ResumeLog)
	setString("output", &cfg.Output)
	setString("output-jsonl", &cfg.OutputJSONL)
	setString("output-xlsx", &cfg.OutputXLSX)
	setBool("recursive", &cfg.Recursive)
	setString("provider", &cfg.Provider)
	setString("model", &cfg.Model)
	setString("host", &cfg.Host)
	if c.IsSet("temperature") {
		cfg.Temperature = c.Float64("temperature")
	}
	setInt("max-tokens", &cfg.MaxTokens)
	setString("prompts-dir", &cfg.PromptsDir)
	setString("import", &cfg.Import)
	if c.IsSet("tag") {
		cfg.Tags = append(cfg.Tags, c.StringSlice("tag")...)
	}
	setBool("stream", &cfg.Stream)
	setBool("estimate", &cfg.EstimateTokens)
	setBool("estimate-only", &cfg.EstimateOnly)
	setString("log-level", &cfg.LogLevel)
	setString("log-file", &cfg.LogFile)
}
