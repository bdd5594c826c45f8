package strandshub

import "log/slog"

// Option configures an App.
type Option func(*resolvedOptions)

// resolvedOptions holds all extension points after applying defaults.
// Unexported — callers use the With* functions.
type resolvedOptions struct {
	bucket    string
	transport string
	httpAddr  string
	logger    *slog.Logger
	version   string
	store     Store
}

// WithBucket overrides the S3 bucket from config (HUB_S3_BUCKET env var).
func WithBucket(name string) Option {
	return func(o *resolvedOptions) { o.bucket = name }
}

// WithTransport overrides the serving transport from config (HUB_TRANSPORT
// env var): "stdio" or "http".
func WithTransport(t string) Option {
	return func(o *resolvedOptions) { o.transport = t }
}

// WithHTTPAddr overrides the HTTP listen address from config (HTTP_ADDR
// env var). Only meaningful on the http transport.
func WithHTTPAddr(addr string) Option {
	return func(o *resolvedOptions) { o.httpAddr = addr }
}

// WithLogger sets the structured logger for the App.
// If not set, the default slog logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *resolvedOptions) { o.logger = logger }
}

// WithVersion sets the version string reported by hub_status, the health
// endpoint, and logs.
func WithVersion(version string) Option {
	return func(o *resolvedOptions) { o.version = version }
}

// WithStore replaces the built-in S3 gateway with a caller-supplied object
// store. When set, HUB_S3_BUCKET and the other HUB_S3_* variables are not
// consulted.
func WithStore(s Store) Option {
	return func(o *resolvedOptions) { o.store = s }
}
