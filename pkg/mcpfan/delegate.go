package mcpfan

import (
	"log/slog"
	"time"

	"github.com/chatstack/mcp-fanout-go/pkg/multimcp"
)

// buildDelegate converts a registry into multimcp configurations and
// constructs the production multi-server client.
func buildDelegate(reg Registry, logger *slog.Logger, timeout time.Duration) ToolLister {
	cfgs := make(map[string]multimcp.ServerConfig, len(reg))
	for name, spec := range reg {
		if spec.IsNetwork() {
			preferSSE := spec.Transport == TransportSSE
			cfgs[name] = &multimcp.HTTPConfig{
				BaseConfig: multimcp.BaseConfig{Timeout: timeout},
				Endpoint:   spec.URL,
				PreferSSE:  &preferSSE,
			}
			continue
		}
		cfgs[name] = &multimcp.StdioConfig{
			BaseConfig: multimcp.BaseConfig{Timeout: timeout},
			Command:    spec.Command,
			Args:       spec.Args,
		}
	}
	return multimcp.New(cfgs, &multimcp.Options{
		ClientName:     "mcp-fanout",
		DefaultTimeout: timeout,
		Logger:         logger,
	})
}
