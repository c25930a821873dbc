package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/chatstack/mcp-fanout-go/internal/config"
	"github.com/chatstack/mcp-fanout-go/internal/logging"
	"github.com/chatstack/mcp-fanout-go/pkg/mcpfan"
)

var (
	cfgFile        string
	noBase         bool
	noRevit        bool
	revitURL       string
	revitTransport string
	timeout        time.Duration

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fanout",
	Short: "Aggregate tools across configured MCP servers",
	Long: `fanout builds a registry of MCP servers (the fixed chatbot tool servers,
an optional Revit integration server from REVIT_MCP_* variables, and any
servers declared in the config file) and fans tool discovery out across
all of them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("timeout") {
			timeout = cfg.Timeout
		}
		logger = logging.New(logging.Config{Level: cfg.Level(), Format: cfg.Format()})
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./fanout.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noBase, "no-base", false, "omit the fixed local tool servers")
	rootCmd.PersistentFlags().BoolVar(&noRevit, "no-revit", false, "omit the Revit integration server")
	rootCmd.PersistentFlags().StringVar(&revitURL, "revit-url", "", "Revit server URL (overrides REVIT_MCP_* variables)")
	rootCmd.PersistentFlags().StringVar(&revitTransport, "revit-transport", "", "transport hint for --revit-url")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "per-server operation timeout")

	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(serversCmd)
}

// buildClient assembles the façade from config file and flags.
func buildClient() (*mcpfan.Client, error) {
	opts := []mcpfan.Option{
		mcpfan.WithLogger(logger),
		mcpfan.WithTimeout(timeout),
	}
	if noBase || !cfg.IncludeBase {
		opts = append(opts, mcpfan.WithoutBaseServers())
	}
	if noRevit || !cfg.IncludeRevit {
		opts = append(opts, mcpfan.WithoutIntegrationServer())
	}
	if revitURL != "" {
		opts = append(opts, mcpfan.WithIntegrationOverride(mcpfan.ServerSpec{
			URL:       revitURL,
			Transport: mcpfan.Transport(revitTransport),
		}))
	}
	for name, srv := range cfg.Servers {
		opts = append(opts, mcpfan.WithServer(name, mcpfan.ServerSpec{
			Command:   srv.Command,
			Args:      srv.Args,
			URL:       srv.URL,
			Transport: mcpfan.Transport(srv.Transport),
		}))
	}
	return mcpfan.New(opts...)
}
