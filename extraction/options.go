package extraction

import (
	"github.com/poiesic/lorekeeper/ai"
)

// Options configures an Extractor and a Merger.
type Options struct {
	// Gleaning enables the follow-up call that asks the model for omissions.
	// Default: true
	Gleaning bool

	// LLMMerge enables the model-assisted cross-chunk merge.
	// Default: false
	LLMMerge bool

	// PreserveOrder keeps entries in extraction order instead of sorting by
	// priority. Always on when LLMMerge is enabled.
	PreserveOrder bool

	// Prompts holds the instruction templates.
	Prompts Prompts

	// Stream receives model output as it is generated. Optional.
	Stream ai.StreamFunc
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// WithGleaning enables or disables the gleaning pass.
func WithGleaning(enabled bool) Option {
	return func(o *Options) {
		o.Gleaning = enabled
	}
}

// WithLLMMerge enables or disables the model-assisted merge.
func WithLLMMerge(enabled bool) Option {
	return func(o *Options) {
		o.LLMMerge = enabled
	}
}

// WithPreserveOrder keeps extraction order in the output.
func WithPreserveOrder(enabled bool) Option {
	return func(o *Options) {
		o.PreserveOrder = enabled
	}
}

// WithPrompts replaces the prompt templates.
func WithPrompts(p Prompts) Option {
	return func(o *Options) {
		o.Prompts = p
	}
}

// WithStream routes model output to fn while it is generated.
func WithStream(fn ai.StreamFunc) Option {
	return func(o *Options) {
		o.Stream = fn
	}
}

// DefaultOptions returns the default extraction options.
func DefaultOptions() Options {
	return Options{
		Gleaning: true,
		Prompts:  DefaultPrompts(),
	}
}

// NewOptions applies opts to the defaults and resolves implied settings.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.normalize()
	return o
}

func (o *Options) normalize() {
	defaults := DefaultPrompts()
	if o.Prompts.System == "" {
		o.Prompts.System = defaults.System
	}
	if o.Prompts.User == "" {
		o.Prompts.User = defaults.User
	}
	if o.Prompts.Gleaning == "" {
		o.Prompts.Gleaning = defaults.Gleaning
	}
	if o.Prompts.Merge == "" {
		o.Prompts.Merge = defaults.Merge
	}
	// merged output is read as a timeline, so extraction order must survive
	if o.LLMMerge {
		o.PreserveOrder = true
	}
}

func (o *Options) invokeOptions() []ai.InvokeOption {
	if o.Stream == nil {
		return nil
	}
	return []ai.InvokeOption{ai.WithStream(o.Stream)}
}
