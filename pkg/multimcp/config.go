package multimcp

import (
	"log/slog"
	"net/http"
	"time"
)

// BaseConfig captures settings shared by every transport type.
type BaseConfig struct {
	// Timeout bounds connection establishment and each request issued to the
	// server. Zero falls back to Options.DefaultTimeout.
	Timeout time.Duration
	// Version overrides the client version advertised during initialization.
	Version string
	// OnError is invoked when a previously established session terminates
	// with an error.
	OnError func(error)
	// LogRPC enables JSON-RPC traffic logging for this server.
	LogRPC bool
}

// StdioConfig describes an MCP server launched as a child process speaking
// the protocol over its standard streams.
type StdioConfig struct {
	BaseConfig
	Command string
	Args    []string
	Env     map[string]string
}

func (c *StdioConfig) base() *BaseConfig { return &c.BaseConfig }

// HTTPConfig describes an MCP server reached over Streamable HTTP or SSE.
type HTTPConfig struct {
	BaseConfig
	Endpoint   string
	HTTPClient *http.Client
	// Headers are added to every outbound request.
	Headers http.Header
	// MaxRetries configures the Streamable transport's reconnect attempts.
	MaxRetries int
	// PreferSSE forces the legacy SSE transport. When nil, endpoints whose
	// path ends in /sse get SSE and everything else tries Streamable HTTP
	// first with an SSE fallback.
	PreferSSE *bool
}

func (c *HTTPConfig) base() *BaseConfig { return &c.BaseConfig }

// ServerConfig is implemented by all transport-specific configurations.
type ServerConfig interface {
	base() *BaseConfig
}

// Options configures a Client instance.
type Options struct {
	// ClientName is the implementation name advertised to servers. When
	// empty, the server ID is used.
	ClientName string
	// ClientVersion is the version advertised to servers. Defaults to 1.0.0.
	ClientVersion string
	// DefaultTimeout applies whenever a server configuration omits one.
	DefaultTimeout time.Duration
	// Logger receives structured diagnostics and, when LogRPC is enabled,
	// JSON-RPC traffic. Defaults to slog.Default.
	Logger *slog.Logger
	// LogRPC enables JSON-RPC traffic logging for all servers unless a
	// configuration overrides it.
	LogRPC bool
}

func (o *Options) normalized() Options {
	if o == nil {
		return Options{}
	}
	return *o
}
