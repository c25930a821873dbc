package mcpfan

// IntegrationServerName is the registry key of the Revit integration server.
const IntegrationServerName = "revit-mcp-server"

// baseRegistry returns the fixed local tool servers of the chatbot backend,
// each launched from the working tree over stdio.
func baseRegistry() Registry {
	return Registry{
		"image-understanding-server": {
			Command:   "python",
			Args:      []string{"tools/mcp_servers/image_understanding.py"},
			Transport: TransportStdio,
		},
		"code-generation-server": {
			Command:   "python",
			Args:      []string{"tools/mcp_servers/code_generation.py"},
			Transport: TransportStdio,
		},
		"rag-server": {
			Command:   "python",
			Args:      []string{"tools/mcp_servers/rag.py"},
			Transport: TransportStdio,
		},
		"weather-server": {
			Command:   "python",
			Args:      []string{"tools/mcp_servers/weather_test.py"},
			Transport: TransportStdio,
		},
	}
}
