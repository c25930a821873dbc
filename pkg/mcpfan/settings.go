package mcpfan

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/shlex"
)

// Environment variables configuring the Revit integration server. These are
// the only variables this package knows about, and only SettingsFromEnv
// reads them.
const (
	EnvRevitURL       = "REVIT_MCP_URL"
	EnvRevitTransport = "REVIT_MCP_TRANSPORT"
	EnvRevitMain      = "REVIT_MCP_MAIN"
	EnvRevitCommand   = "REVIT_MCP_COMMAND"
	EnvRevitArgs      = "REVIT_MCP_ARGS"
)

const defaultLaunchCommand = "uv"

// Settings carries the environment-driven configuration for the Revit
// integration server. Build it once at startup, either from SettingsFromEnv
// or explicitly in tests, and pass it to New via WithSettings; normalization
// never reads the process environment itself.
type Settings struct {
	// URL selects a network spec when set. Transport acts as a hint and may
	// be a loose name such as "http" or "streamable-http".
	URL       string
	Transport string
	// MainScript, Command, and Args select a launch spec. Args is a single
	// shell-lexical string split with quoting rules intact.
	MainScript string
	Command    string
	Args       string
}

// SettingsFromEnv snapshots the REVIT_MCP_* environment variables.
func SettingsFromEnv() Settings {
	return Settings{
		URL:        os.Getenv(EnvRevitURL),
		Transport:  os.Getenv(EnvRevitTransport),
		MainScript: os.Getenv(EnvRevitMain),
		Command:    os.Getenv(EnvRevitCommand),
		Args:       os.Getenv(EnvRevitArgs),
	}
}

// SpecFromSettings resolves Settings into a server spec.
//
// Resolution order: a URL wins and yields a network spec; otherwise any of
// main script, command, or argument string yields a launch spec; otherwise
// there is no integration server and (nil, nil) is returned.
func SpecFromSettings(s Settings) (*ServerSpec, error) {
	if s.URL != "" {
		spec := normalizeEndpoint(ServerSpec{
			URL:       s.URL,
			Transport: resolveHTTPTransport(s.URL, s.Transport, TransportStreamableHTTP),
		})
		return &spec, nil
	}

	if s.MainScript == "" && s.Command == "" && s.Args == "" {
		return nil, nil
	}

	command := s.Command
	if command == "" {
		command = defaultLaunchCommand
	}

	var args []string
	if s.Args != "" {
		split, err := shlex.Split(s.Args)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", EnvRevitArgs)
		}
		args = split
	} else {
		if s.MainScript == "" {
			return nil, errors.Wrapf(ErrMissingMain, "%s is required when %s is not set", EnvRevitMain, EnvRevitArgs)
		}
		args = []string{"run", "--with", "mcp[cli]", "mcp", "run", s.MainScript}
	}

	return &ServerSpec{
		Command:   command,
		Args:      args,
		Transport: NormalizeTransport(s.Transport, TransportStdio),
	}, nil
}
