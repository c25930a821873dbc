// Package mcpfan configures a fan-out client over multiple Model Context
// Protocol (MCP) servers and exposes a single aggregated tool-listing call.
// It assembles a registry of server name to connection spec, normalizes
// transport names and endpoint URLs, and delegates all connection handling
// to a multi-server client built on the official MCP SDK.
//
// # Core entry points
//
//   - New builds a Client from the fixed base servers, an optional Revit
//     integration server (explicit override, or REVIT_MCP_* environment
//     variables snapshotted via SettingsFromEnv), and any extra servers
//     registered with WithServer.
//   - Client.Init constructs the underlying multi-server client; call it
//     before Client.GetTools.
//   - Client.GetTools aggregates tools across every configured server, with
//     one bounded retry that toggles a trailing slash on the integration
//     server's endpoint path.
//
// Transport names are forgiving: "streamable-http", "Streamable HTTP", and
// "streamable" all resolve to streamable_http, while a bare "http" on a
// network endpoint is disambiguated by the well-known legacy SSE port.
package mcpfan
