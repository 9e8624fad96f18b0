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


package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/poiesic/lorekeeper/ai"
	"github.com/poiesic/lorekeeper/segment"
	"gopkg.in/yaml.v3"
)

// Config holds every setting of an extraction run. Values come from a YAML
// file, optionally nested under a top-level extraction key, and are then
// overridden by command line flags.
type Config struct {
	// Segmentation
	ChunkSize     int
	Overlap       int
	ChunkStrategy string
	ChapterMax    int
	MinHeadings   int

	// Extraction
	PromptsDir    string
	Gleaning      bool
	LLMMerge      bool
	PreserveOrder bool
	RetryMax      int
	RetryDelay    time.Duration
	Stream        bool

	// Input and output
	Input       string
	Recursive   bool
	ResumeLog   string
	Output      string
	OutputJSONL string
	OutputXLSX  string
	Import      string
	Tags        []string

	// Estimation
	EstimateTokens bool
	EstimateOnly   bool

	// Model
	Provider    string
	Model       string
	Host        string
	Temperature float64
	MaxTokens   int

	// Logging
	LogLevel string
	LogFile  string
}

// Default returns the default configuration.
func Default() Config {
	seg := segment.DefaultOptions()
	model := ai.DefaultConfig()
	return Config{
		ChunkSize:     seg.ChunkSize,
		Overlap:       seg.Overlap,
		ChunkStrategy: string(seg.Strategy),
		ChapterMax:    seg.ChapterMaxChars,
		MinHeadings:   seg.MinHeadings,
		Gleaning:      true,
		RetryMax:      3,
		Recursive:     true,
		ResumeLog:     DefaultResumeLog,
		Provider:      string(model.Provider),
		Model:         model.Model,
		Temperature:   model.Temperature,
		MaxTokens:     model.MaxTokens,
		LogLevel:      "info",
	}
}

// DefaultResumeLog is the journal path used when none is configured.
const DefaultResumeLog = ".lorekeeper/resume.jsonl"

// Load reads the YAML file at path on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults. Values of the wrong type fall
// back to their default rather than failing.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	payload := doc
	if section, ok := doc["extraction"].(map[string]any); ok {
		payload = section
	}

	v := values(payload)
	cfg.ChunkSize = v.int("chunk_size", cfg.ChunkSize)
	cfg.Overlap = v.int("overlap", cfg.Overlap)
	cfg.ChunkStrategy = v.string("chunk_strategy", cfg.ChunkStrategy)
	cfg.ChapterMax = v.int("chapter_max", cfg.ChapterMax)
	cfg.MinHeadings = v.int("min_headings", cfg.MinHeadings)

	cfg.PromptsDir = v.string("prompts_dir", cfg.PromptsDir)
	cfg.Gleaning = v.bool("gleaning", cfg.Gleaning)
	cfg.LLMMerge = v.bool("llm_merge", cfg.LLMMerge)
	cfg.PreserveOrder = v.bool("preserve_order", cfg.PreserveOrder)
	cfg.RetryMax = v.int("retry_max", cfg.RetryMax)
	cfg.RetryDelay = v.duration("retry_delay", cfg.RetryDelay)
	cfg.Stream = v.bool("stream", cfg.Stream)

	cfg.Input = v.string("input", cfg.Input)
	if dir := v.string("input_dir", ""); dir != "" && cfg.Input == "" {
		cfg.Input = dir
	}
	cfg.Recursive = v.bool("recursive", cfg.Recursive)
	cfg.ResumeLog = v.string("resume_log", cfg.ResumeLog)
	cfg.Output = v.string("output", cfg.Output)
	cfg.OutputJSONL = v.string("output_jsonl", cfg.OutputJSONL)
	cfg.OutputXLSX = v.string("output_xlsx", cfg.OutputXLSX)
	cfg.Import = v.string("import", cfg.Import)
	cfg.Tags = v.strings("tags", cfg.Tags)

	cfg.EstimateTokens = v.bool("estimate_tokens", cfg.EstimateTokens)
	cfg.EstimateOnly = v.bool("estimate_only", cfg.EstimateOnly)

	cfg.Provider = v.string("provider", cfg.Provider)
	cfg.Model = v.string("model", cfg.Model)
	cfg.Host = v.string("host", cfg.Host)
	cfg.Temperature = v.float("temperature", cfg.Temperature)
	cfg.MaxTokens = v.int("max_tokens", cfg.MaxTokens)

	cfg.LogLevel = v.string("log_level", cfg.LogLevel)
	cfg.LogFile = v.string("log_file", cfg.LogFile)
	return cfg, nil
}

// Validate normalizes names and checks ranges.
func (c *Config) Validate() error {
	c.ChunkStrategy = strings.ToLower(strings.TrimSpace(c.ChunkStrategy))
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	seg := c.SegmentOptions()
	if err := seg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.RetryMax < 1 {
		return fmt.Errorf("%w: retry_max must be at least 1, got %d", ErrInvalidConfig, c.RetryMax)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry_delay must not be negative", ErrInvalidConfig)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.EstimateOnly {
		c.EstimateTokens = true
	}
	model := c.ModelConfig()
	if err := model.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// SegmentOptions returns the segmentation settings.
func (c *Config) SegmentOptions() segment.Options {
	return segment.Options{
		ChunkSize:       c.ChunkSize,
		Overlap:         c.Overlap,
		Strategy:        segment.Strategy(c.ChunkStrategy),
		ChapterMaxChars: c.ChapterMax,
		MinHeadings:     c.MinHeadings,
	}
}

// ModelConfig returns the model settings with environment fallbacks applied.
func (c *Config) ModelConfig() *ai.Config {
	cfg := ai.NewConfig(
		ai.WithProvider(ai.Provider(c.Provider)),
		ai.WithModel(c.Model),
		ai.WithHost(c.Host),
		ai.WithDefaultTemperature(c.Temperature),
		ai.WithDefaultMaxTokens(c.MaxTokens),
	)
	cfg.Normalize()
	return cfg
}
