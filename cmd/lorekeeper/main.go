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
	"io"
	"log/slog"
	"os"

	"github.com/poiesic/lorekeeper/ai"
	"github.com/poiesic/lorekeeper/config"
	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp(os.Stdout, os.Stderr, nil)
	if err := app.Run(os.Args); err != nil {
		code := 2
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}
}

// newApp builds the command tree. A non-nil model replaces the configured
// provider.
func newApp(stdout, stderr io.Writer, model ai.Model) *cli.App {
	var closeLog func() error

	return &cli.App{
		Name:      "lorekeeper",
		Usage:     "Extract lore entries from long-form text with a language model",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Also write JSON logs to this file",
			},
		},
		Before: func(c *cli.Context) error {
			cleanup, err := setupLogger(stderr, c.String("log-level"), c.String("log-file"))
			closeLog = cleanup
			return err
		},
		After: func(c *cli.Context) error {
			if closeLog != nil {
				return closeLog()
			}
			return nil
		},
		// Exit codes are resolved in main so tests can inspect them
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			extractCommand(model),
			verifyCommand(),
			journalCommand(),
			segmentCommand(),
		},
	}
}

func setupLogger(stderr io.Writer, levelStr, logFile string) (func() error, error) {
	level, err := config.ParseLevel(levelStr)
	if err != nil {
		return nil, cli.Exit(err.Error(), 2)
	}

	logger, cleanup := config.SetupLogger(stderr, level, logFile)
	slog.SetDefault(logger)
	return cleanup, nil
}
