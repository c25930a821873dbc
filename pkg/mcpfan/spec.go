package mcpfan

// Transport identifies how the client reaches an MCP server.
type Transport string

const (
	// TransportStdio launches the server as a child process and speaks MCP
	// over its standard streams.
	TransportStdio Transport = "stdio"
	// TransportStreamableHTTP reaches the server over the Streamable HTTP
	// transport.
	TransportStreamableHTTP Transport = "streamable_http"
	// TransportSSE reaches the server over the legacy SSE transport.
	TransportSSE Transport = "sse"
)

// ServerSpec describes one configured MCP server. A spec has exactly one
// shape: a launch spec (Command plus Args) for servers started locally, or a
// network spec (URL) for servers reached over HTTP. Transport is always
// resolved to a concrete tag before a spec enters a Registry.
type ServerSpec struct {
	Command   string
	Args      []string
	URL       string
	Transport Transport
}

// IsLaunch reports whether the spec launches a local child process.
func (s ServerSpec) IsLaunch() bool { return s.Command != "" }

// IsNetwork reports whether the spec points at an HTTP endpoint.
func (s ServerSpec) IsNetwork() bool { return s.URL != "" }

// Registry maps server names to their connection specs.
type Registry map[string]ServerSpec

func (r Registry) clone() Registry {
	out := make(Registry, len(r))
	for name, spec := range r {
		out[name] = spec
	}
	return out
}
