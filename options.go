package litorm

import (
	"io"
	"log/slog"

	"github.com/tordrt/litorm/schema"
)

type options struct {
	logger   *slog.Logger
	registry *schema.Registry
}

// Option configures a Connection or Repository.
type Option func(*options)

// WithLogger sets the logger. Statements are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRegistry sets the model registry a Connection resolves model names
// against. By default each connection has its own registry and falls back
// to schema.DefaultRegistry.
func WithRegistry(r *schema.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
