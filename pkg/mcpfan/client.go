package mcpfan

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolLister is the one operation the façade consumes from the multi-server
// client it builds. Session lifecycle, process launching, and protocol
// mechanics all live behind it.
type ToolLister interface {
	GetTools(ctx context.Context, serverIDs ...string) ([]*mcp.Tool, error)
}

// DelegateFactory builds a multi-server client for a registry snapshot. The
// façade calls it from Init and again when the retry heuristic rewrites the
// integration endpoint; the previous delegate is discarded, not reused.
type DelegateFactory func(Registry) ToolLister

type options struct {
	includeBase        bool
	includeIntegration bool
	override           *ServerSpec
	settings           *Settings
	extra              Registry
	logger             *slog.Logger
	timeout            time.Duration
	factory            DelegateFactory
}

// Option customizes New.
type Option func(*options)

// WithoutBaseServers omits the fixed local tool servers.
func WithoutBaseServers() Option {
	return func(o *options) { o.includeBase = false }
}

// WithoutIntegrationServer omits the Revit integration server even when its
// environment variables are set.
func WithoutIntegrationServer() Option {
	return func(o *options) { o.includeIntegration = false }
}

// WithIntegrationOverride supplies the integration server spec directly,
// taking priority over environment-derived settings.
func WithIntegrationOverride(spec ServerSpec) Option {
	return func(o *options) { o.override = &spec }
}

// WithSettings replaces the environment snapshot used to derive the
// integration server spec. Tests use this to stay independent of the
// process environment.
func WithSettings(s Settings) Option {
	return func(o *options) { o.settings = &s }
}

// WithServer registers an additional server under the given name. The spec's
// transport is normalized the same way as every other entry.
func WithServer(name string, spec ServerSpec) Option {
	return func(o *options) {
		if o.extra == nil {
			o.extra = Registry{}
		}
		o.extra[name] = spec
	}
}

// WithLogger routes diagnostics to the given logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTimeout bounds each delegate operation per server.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithDelegateFactory replaces the production multi-server client, mainly
// for tests.
func WithDelegateFactory(f DelegateFactory) Option {
	return func(o *options) { o.factory = f }
}

// Client fans a single tool-listing call out to every configured MCP server.
// It owns the server registry and a delegate multi-server client built from
// it; everything protocol-shaped is the delegate's problem.
//
// Client is not safe for concurrent use: Init and GetTools are expected to
// run from a single call path, matching the chatbot backend it serves.
type Client struct {
	registry Registry
	logger   *slog.Logger
	factory  DelegateFactory
	delegate ToolLister
}

// New assembles the server registry. Configuration errors, such as a launch
// spec with no way to synthesize arguments, surface here and are never
// retried.
func New(opts ...Option) (*Client, error) {
	o := options{
		includeBase:        true,
		includeIntegration: true,
		logger:             slog.Default(),
		timeout:            30 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	registry := Registry{}
	if o.includeBase {
		for name, spec := range baseRegistry() {
			registry[name] = spec
		}
	}
	for name, spec := range o.extra {
		registry[name] = normalizeSpec(spec)
	}
	if o.includeIntegration {
		spec, err := resolveIntegrationSpec(o)
		if err != nil {
			return nil, err
		}
		if spec != nil {
			registry[IntegrationServerName] = *spec
		}
	}

	factory := o.factory
	if factory == nil {
		logger, timeout := o.logger, o.timeout
		factory = func(reg Registry) ToolLister {
			return buildDelegate(reg, logger, timeout)
		}
	}

	return &Client{registry: registry, logger: o.logger, factory: factory}, nil
}

func resolveIntegrationSpec(o options) (*ServerSpec, error) {
	if o.override != nil {
		spec := normalizeSpec(*o.override)
		return &spec, nil
	}
	settings := SettingsFromEnv()
	if o.settings != nil {
		settings = *o.settings
	}
	return SpecFromSettings(settings)
}

// Registry returns a copy of the resolved server registry.
func (c *Client) Registry() Registry { return c.registry.clone() }

// Init builds the delegate multi-server client from the current registry and
// returns the client for chaining. Calling it again rebuilds the delegate
// from scratch; the old one is dropped and tears itself down.
func (c *Client) Init() *Client {
	c.delegate = c.factory(c.registry.clone())
	return c
}

// GetTools lists the tools advertised across all configured servers and
// returns them exactly as the delegate produced them.
//
// On failure it attempts exactly one recovery: when the integration server
// has an HTTP endpoint whose path ends in the protocol sub-path, the
// trailing slash is toggled, the delegate rebuilt, and the listing retried
// once. Deployments differ on whether they accept /mcp or /mcp/ and nothing
// else; this is deliberately not a general retry policy. The first error
// stays authoritative either way.
func (c *Client) GetTools(ctx context.Context) ([]*mcp.Tool, error) {
	if c.delegate == nil {
		return nil, ErrNotInitialized
	}

	tools, err := c.delegate.GetTools(ctx)
	if err == nil {
		return tools, nil
	}

	toggled, ok := c.toggledIntegrationSpec()
	if !ok {
		c.logger.Error("listing MCP tools failed; is the server running and the configured path correct?",
			"error", err)
		return nil, errors.Wrap(err, "listing tools")
	}

	c.logger.Warn("listing MCP tools failed; retrying once with the integration endpoint slash toggled",
		"endpoint", toggled.URL, "error", err)

	registry := c.registry.clone()
	registry[IntegrationServerName] = toggled
	c.registry = registry
	c.delegate = c.factory(registry.clone())

	tools, retryErr := c.delegate.GetTools(ctx)
	if retryErr != nil {
		c.logger.Error("retry with toggled endpoint also failed; surfacing the original error",
			"retry_error", retryErr)
		return nil, errors.Wrap(err, "listing tools (slash-toggle retry also failed)")
	}
	return tools, nil
}

// toggledIntegrationSpec computes a fresh integration spec with the trailing
// slash of the endpoint path flipped. It reports false when the heuristic
// does not apply: no integration server, not a network spec, or a path that
// does not end in the protocol sub-path.
func (c *Client) toggledIntegrationSpec() (ServerSpec, bool) {
	spec, ok := c.registry[IntegrationServerName]
	if !ok || !spec.IsNetwork() {
		return ServerSpec{}, false
	}
	u, err := url.Parse(spec.URL)
	if err != nil {
		return ServerSpec{}, false
	}
	switch {
	case strings.HasSuffix(u.Path, defaultEndpointPath):
		u.Path += "/"
	case strings.HasSuffix(u.Path, defaultEndpointPath+"/"):
		u.Path = strings.TrimSuffix(u.Path, "/")
	default:
		return ServerSpec{}, false
	}
	spec.URL = u.String()
	return spec, true
}
