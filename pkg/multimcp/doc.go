// Package multimcp keeps MCP client sessions to multiple servers behind one
// Client. It handles transport setup (stdio child processes or Streamable
// HTTP with SSE fallback), lazy single-flight dialing, session lifecycle,
// and tool-list aggregation on top of the modelcontextprotocol/go-sdk
// client. Protocol mechanics stay in the SDK; this package only decides
// which transport to build and keeps the resulting sessions alive.
package multimcp
