package main

import (
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/buildline/internal/datasource"
)

func newSourcesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List candidate timeline documents, best first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			sources, err := datasource.DiscoverSources(datasource.DiscoveryOptions{
				Path:                   a.cfg.Input,
				ProjectDir:             dir,
				ValidateAfterDiscovery: true,
				IncludeInvalid:         true,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sources)
			}
			if len(sources) == 0 {
				printf(out, "No compilation timeline documents found.\n")
				return nil
			}
			for _, s := range sources {
				printf(out, "%s\n", s)
			}
			return nil
		},
	}
	cmd.Flags().String("dir", "", "project directory to search (default: cwd)")
	cmd.Flags().Bool("json", false, "print JSON")
	return cmd
}
