package main

import (
	"fmt"

	"github.com/deepnoodle-ai/classgen"
	"github.com/deepnoodle-ai/classgen/classfile"
	"github.com/spf13/cobra"
)

func (a *app) versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			if format == "json" {
				return writeJSON(a.stdout, map[string]any{
					"version":        version,
					"library":        classgen.Version,
					"commit":         commit,
					"date":           date,
					"default_target": classfile.DefaultTarget,
				})
			}
			fmt.Fprintln(a.stdout, version)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "text", "output format: text or json")
	return cmd
}
