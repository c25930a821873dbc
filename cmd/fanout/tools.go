package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List tools advertised by all configured servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := buildClient()
		if err != nil {
			return err
		}
		tools, err := client.Init().GetTools(cmd.Context())
		if err != nil {
			return err
		}
		for _, tool := range tools {
			fmt.Printf("%s\t%s\n", tool.Name, tool.Description)
		}
		logger.Info("tools listed", "count", len(tools))
		return nil
	},
}
