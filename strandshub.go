// Package strandshub is the public API for embedding the hub server.
//
// Most deployments run the shipped binary (cmd/strands-hub-mcp), which
// serves MCP on stdio or as a StreamableHTTP endpoint. Agent runtimes that
// want the hub in-process construct an App instead:
//
//	app, err := strandshub.New(
//		strandshub.WithLogger(logger),
//		strandshub.WithVersion(buildVersion),
//	)
//	if err != nil {
//		return err
//	}
//	return app.Run(ctx)
//
// Configuration comes from the environment; the With* options override
// individual values, and WithStore replaces the S3 gateway with any Store
// implementation, which also makes the HUB_S3_* variables unnecessary.
package strandshub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/labeveryday/strands-hub-mcp/internal/config"
	"github.com/labeveryday/strands-hub-mcp/internal/keys"
	"github.com/labeveryday/strands-hub-mcp/internal/mcp"
	"github.com/labeveryday/strands-hub-mcp/internal/metrics"
	"github.com/labeveryday/strands-hub-mcp/internal/objstore"
	"github.com/labeveryday/strands-hub-mcp/internal/promptcache"
	"github.com/labeveryday/strands-hub-mcp/internal/prompts"
	"github.com/labeveryday/strands-hub-mcp/internal/registry"
	"github.com/labeveryday/strands-hub-mcp/internal/server"
	"github.com/labeveryday/strands-hub-mcp/internal/sessions"
	"github.com/labeveryday/strands-hub-mcp/internal/telemetry"
)

// App is the hub server lifecycle. Construct with New(), run with Run().
// App has no public fields — use New() options to configure it.
type App struct {
	cfg          config.Config
	store        objstore.Gateway
	scheme       keys.Scheme
	hub          *mcp.Server
	srv          *server.Server     // nil on the stdio transport
	cache        *promptcache.Cache // nil when the prompt cache is disabled
	otelShutdown func(context.Context) error
	logger       *slog.Logger
	version      string
}

// New initialises the hub. It loads configuration, connects the object
// store gateway, and wires the resource managers into an MCP server.
// It does NOT start any goroutines or accept connections — call Run().
func New(opts ...Option) (*App, error) {
	// Apply options.
	o := resolvedOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	// Load configuration (env vars), then apply option overrides.
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.bucket != "" {
		cfg.Bucket = o.bucket
	}
	if o.transport != "" {
		cfg.Transport = o.transport
	}
	if o.httpAddr != "" {
		cfg.HTTPAddr = o.httpAddr
	}
	// Load validated the environment; revalidate with overrides applied.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	version := o.version
	if version == "" {
		version = "dev"
	}

	logger.Info("strands-hub starting",
		"version", version,
		"transport", cfg.Transport,
		"bucket", cfg.Bucket,
	)

	// Initialize OpenTelemetry.
	otelShutdown, err := telemetry.Init(context.Background(), cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	// Connect the object store gateway, unless the caller brought one.
	var store objstore.Gateway
	if o.store != nil {
		store = &storeAdapter{s: o.store}
	} else {
		if cfg.Bucket == "" {
			_ = otelShutdown(context.Background())
			return nil, errors.New("config: HUB_S3_BUCKET is required (or inject a store with WithStore)")
		}
		s3, err := objstore.NewS3(context.Background(), objstore.S3Options{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.UsePathStyle,
		}, logger)
		if err != nil {
			_ = otelShutdown(context.Background())
			return nil, fmt.Errorf("objstore: %w", err)
		}
		store = s3
	}

	scheme := keys.New(cfg.SessionsPrefix, cfg.MetricsPrefix, cfg.PromptsPrefix, cfg.RegistryKey)

	// Prompt content reads go through the local cache when one is configured.
	var cache *promptcache.Cache
	var reader prompts.ContentReader = promptcache.Direct{Store: store}
	if cfg.CachePath != "" {
		cache, err = promptcache.Open(cfg.CachePath, cfg.CacheTTL, logger)
		if err != nil {
			_ = otelShutdown(context.Background())
			return nil, fmt.Errorf("promptcache: %w", err)
		}
		reader = promptcache.NewReadThrough(store, cache, logger)
		logger.Info("prompt cache: enabled", "path", cfg.CachePath, "ttl", cfg.CacheTTL)
	} else {
		logger.Info("prompt cache: disabled (no HUB_CACHE_PATH)")
	}

	hub := mcp.New(
		registry.New(store, scheme, logger),
		prompts.New(store, reader, scheme, logger),
		sessions.NewReader(store, scheme, logger),
		metrics.NewReader(store, scheme, logger),
		mcp.StatusInfo{
			Version:        version,
			Bucket:         cfg.Bucket,
			Region:         cfg.Region,
			Endpoint:       cfg.Endpoint,
			SessionsPrefix: cfg.SessionsPrefix,
			MetricsPrefix:  cfg.MetricsPrefix,
			PromptsPrefix:  cfg.PromptsPrefix,
			RegistryKey:    cfg.RegistryKey,
			CacheEnabled:   cfg.CachePath != "",
			Transport:      cfg.Transport,
		},
		logger,
	)

	a := &App{
		cfg:          cfg,
		store:        store,
		scheme:       scheme,
		hub:          hub,
		cache:        cache,
		otelShutdown: otelShutdown,
		logger:       logger,
		version:      version,
	}

	if cfg.Transport == "http" {
		a.srv = server.New(server.ServerConfig{
			MCPServer:           hub.MCPServer(),
			Store:               store,
			Scheme:              scheme,
			Logger:              logger,
			Addr:                cfg.HTTPAddr,
			ReadTimeout:         cfg.ReadTimeout,
			WriteTimeout:        cfg.WriteTimeout,
			MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
			Version:             version,
		})
	}

	return a, nil
}

// Run serves MCP on the configured transport until ctx is cancelled or the
// transport fails, then shuts the App down. On stdio it speaks the protocol
// on stdin/stdout; on http it listens on the configured address with the
// health endpoint mounted alongside /mcp.
func (a *App) Run(ctx context.Context) error {
	if a.srv == nil {
		stdio := mcpserver.NewStdioServer(a.hub.MCPServer())
		stdio.SetErrorLogger(slog.NewLogLogger(a.logger.Handler(), slog.LevelError))

		a.logger.Info("mcp server ready on stdio")
		if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio serve: %w", err)
		}
		return a.Shutdown(context.Background())
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Block until signal or server error.
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	return a.Shutdown(context.Background())
}

// Shutdown drains the HTTP server when one is running, closes the prompt
// cache, and flushes the OTEL providers. Run calls it on its way out; call
// it directly only when bypassing Run.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("strands-hub shutting down")

	if a.srv != nil {
		httpCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := a.srv.Shutdown(httpCtx); err != nil {
			a.logger.Error("http shutdown error", "error", err)
		}
		cancel()
	}

	if a.cache != nil {
		_ = a.cache.Close()
	}
	_ = a.otelShutdown(context.Background())

	a.logger.Info("strands-hub stopped")
	return nil
}

// MCPServer exposes the underlying MCP server, for mounting the hub inside
// an existing transport instead of calling Run.
func (a *App) MCPServer() *mcpserver.MCPServer {
	return a.hub.MCPServer()
}

// Handler returns the HTTP handler (the /mcp mount plus /healthz) when the
// transport is http, and nil on stdio.
func (a *App) Handler() http.Handler {
	if a.srv == nil {
		return nil
	}
	return a.srv.Handler()
}

// storeAdapter bridges a caller-supplied Store to the gateway interface the
// resource managers consume.
type storeAdapter struct {
	s Store
}

func (a *storeAdapter) Get(ctx context.Context, key string) (objstore.Object, error) {
	o, err := a.s.Get(ctx, key)
	if err != nil {
		return objstore.Object{}, err
	}
	return objstore.Object{Key: o.Key, Body: o.Body, ETag: o.ETag}, nil
}

func (a *storeAdapter) Put(ctx context.Context, key string, body []byte, cond *objstore.Condition) error {
	var c *Condition
	if cond != nil {
		c = &Condition{IfMatch: cond.IfMatch, IfNoneMatch: cond.IfNoneMatch}
	}
	return a.s.Put(ctx, key, body, c)
}

func (a *storeAdapter) List(ctx context.Context, prefix, delimiter string, page objstore.Page) (objstore.Listing, error) {
	l, err := a.s.List(ctx, prefix, delimiter, Page{Limit: page.Limit, Token: page.Token})
	if err != nil {
		return objstore.Listing{}, err
	}
	return objstore.Listing{
		Keys:           l.Keys,
		CommonPrefixes: l.CommonPrefixes,
		NextToken:      l.NextToken,
		Truncated:      l.Truncated,
	}, nil
}

func (a *storeAdapter) Exists(ctx context.Context, key string) (bool, error) {
	return a.s.Exists(ctx, key)
}
