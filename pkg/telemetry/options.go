package telemetry

import (
	"time"
)

const (
	DefaultEndpoint = "localhost:4317"
	DefaultTimeout  = 15 * time.Second
)

type Option func(opts *Options)

type Options struct {
	enabled  bool
	endpoint string
	insecure bool
	timeout  time.Duration
}

func NewOptions(opts ...Option) *Options {
	options := &Options{
		enabled:  true,
		endpoint: DefaultEndpoint,
		timeout:  DefaultTimeout,
	}

	for _, opt := range opts {
		opt(options)
	}

	return options
}

func WithEnabled(enabled bool) Option {
	return func(opts *Options) {
		opts.enabled = enabled
	}
}

func WithEndpoint(endpoint string) Option {
	return func(opts *Options) {
		if endpoint != "" {
			opts.endpoint = endpoint
		}
	}
}

func WithInsecure() Option {
	return func(opts *Options) {
		opts.insecure = true
	}
}

// WithTimeout bounds the cleanup done when Observe fails halfway.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		if timeout > 0 {
			opts.timeout = timeout
		}
	}
}
