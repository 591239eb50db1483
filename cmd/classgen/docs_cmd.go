package main

import (
	"encoding/json"
	"fmt"

	"github.com/deepnoodle-ai/classgen"
	"github.com/spf13/cobra"
)

func (a *app) docsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "docs [topic]",
		Aliases: []string{"doc"},
		Short:   "Show the declaration syntax, class layout and error codes",
		Example: "  classgen docs\n  classgen docs --category layout\n  classgen docs E2012",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []classgen.DocsOption
			switch {
			case len(args) == 1:
				opts = append(opts, classgen.DocsTopic(args[0]))
			case a.v.GetString("category") != "":
				opts = append(opts, classgen.DocsCategory(a.v.GetString("category")))
			case a.v.GetBool("all"):
				opts = append(opts, classgen.DocsAll())
			}
			return a.printDocs(classgen.Docs(opts...))
		},
	}
	flags := cmd.Flags()
	flags.String("category", "", "syntax, layout, errors or targets")
	flags.Bool("all", false, "show the complete documentation")
	return cmd
}

func (a *app) printDocs(docs *classgen.Documentation) error {
	// Round trip through JSON so that highlighting sees plain maps.
	var data any
	if err := json.Unmarshal([]byte(docs.JSON()), &data); err != nil {
		return err
	}
	if m, ok := data.(map[string]any); ok {
		if msg, ok := m["error"].(string); ok && len(m) == 1 {
			return fmt.Errorf("%s", msg)
		}
	}
	return writeJSON(a.stdout, data)
}
