package multimcp

// Helpers for narrowing ServerConfig values without a type switch at every
// call site.

// TransportKind identifies the transport family of a ServerConfig.
type TransportKind string

const (
	KindStdio TransportKind = "stdio"
	KindHTTP  TransportKind = "http"
)

// KindOf returns the transport kind for a ServerConfig, or an empty string
// for nil or unknown implementations.
func KindOf(cfg ServerConfig) TransportKind {
	switch cfg.(type) {
	case *StdioConfig:
		return KindStdio
	case *HTTPConfig:
		return KindHTTP
	default:
		return ""
	}
}

// AsStdio narrows cfg to *StdioConfig.
func AsStdio(cfg ServerConfig) (*StdioConfig, bool) {
	c, ok := cfg.(*StdioConfig)
	return c, ok
}

// AsHTTP narrows cfg to *HTTPConfig.
func AsHTTP(cfg ServerConfig) (*HTTPConfig, bool) {
	c, ok := cfg.(*HTTPConfig)
	return c, ok
}
