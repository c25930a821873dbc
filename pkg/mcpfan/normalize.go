package mcpfan

import (
	"net/url"
	"strings"
)

const (
	// legacySSEPort is the well-known port older SSE-only bridge deployments
	// listen on. A generic "http" transport hint on this port means SSE.
	legacySSEPort = "8010"

	// defaultEndpointPath is the sub-path MCP servers conventionally serve
	// the Streamable HTTP and SSE transports on.
	defaultEndpointPath = "/mcp"
)

func canonicalTransport(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ReplaceAll(s, " ", "_")
}

// NormalizeTransport maps a raw transport name to its canonical tag. Empty
// input yields def. Unrecognized names are passed through in canonical form
// so new transports do not require a release of this package.
func NormalizeTransport(raw string, def Transport) Transport {
	c := canonicalTransport(raw)
	if c == "" {
		return def
	}
	switch c {
	case "streamable_http", "streamable":
		return TransportStreamableHTTP
	case "http", "sse":
		return TransportSSE
	case "stdio":
		return TransportStdio
	default:
		return Transport(c)
	}
}

// resolveHTTPTransport resolves the transport for a network spec, where URL
// conventions alone cannot distinguish Streamable HTTP from SSE. A generic
// "http" hint is disambiguated by the endpoint port; with no hint at all the
// same port check applies before falling back to def.
func resolveHTTPTransport(rawURL, raw string, def Transport) Transport {
	if c := canonicalTransport(raw); c != "" {
		if c == "http" {
			if urlPort(rawURL) == legacySSEPort {
				return TransportSSE
			}
			return TransportStreamableHTTP
		}
		return NormalizeTransport(raw, def)
	}
	if urlPort(rawURL) == legacySSEPort {
		return TransportSSE
	}
	return def
}

func urlPort(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Port()
}

// normalizeEndpoint rewrites an empty or root URL path to the conventional
// protocol sub-path. Non-root paths are left untouched. Applied once at
// registry build time, never per request.
func normalizeEndpoint(spec ServerSpec) ServerSpec {
	if !spec.IsNetwork() {
		return spec
	}
	if spec.Transport != TransportStreamableHTTP && spec.Transport != TransportSSE {
		return spec
	}
	u, err := url.Parse(spec.URL)
	if err != nil {
		return spec
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = defaultEndpointPath
		spec.URL = u.String()
	}
	return spec
}

// normalizeSpec resolves a spec's transport tag, defaulting by shape:
// streamable_http for network specs, stdio for launch specs.
func normalizeSpec(spec ServerSpec) ServerSpec {
	if spec.IsNetwork() {
		spec.Transport = NormalizeTransport(string(spec.Transport), TransportStreamableHTTP)
		return normalizeEndpoint(spec)
	}
	spec.Transport = NormalizeTransport(string(spec.Transport), TransportStdio)
	return spec
}
