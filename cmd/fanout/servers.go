package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Print the resolved server registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := buildClient()
		if err != nil {
			return err
		}
		registry := client.Registry()
		names := make([]string, 0, len(registry))
		for name := range registry {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			spec := registry[name]
			target := spec.URL
			if spec.IsLaunch() {
				target = spec.Command + " " + strings.Join(spec.Args, " ")
			}
			fmt.Printf("%s\t%s\t%s\n", name, spec.Transport, target)
		}
		return nil
	},
}
