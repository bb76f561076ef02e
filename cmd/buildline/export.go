package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/buildline/pkg/export"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export html|svg|png|sqlite|markdown|all",
		Short: "Write the timeline to a file",
		Long: `Write the timeline in one format, or in every format with "all".
The HTML export is a self-contained page with the same click-to-select
behaviour as the TUI. Snapshots (svg, png) can be rendered with a unit
selected.`,
		Args: cobra.ExactArgs(1),
		ValidArgs: []string{
			"html", "svg", "png", "sqlite", "markdown", "all",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(args[0])
			if err != nil {
				return err
			}
			opts := export.Options{Dir: a.cfg.Export.Dir, FitWidth: a.cfg.Export.PNGFitWidth}
			if cmd.Flags().Changed("out") {
				opts.Dir, _ = cmd.Flags().GetString("out")
			}
			if cmd.Flags().Changed("fit-width") {
				opts.FitWidth, _ = cmd.Flags().GetInt("fit-width")
			}
			opts.Select, _ = cmd.Flags().GetString("select")
			opts.Title, _ = cmd.Flags().GetString("title")

			b, _, err := a.bundle(cmd)
			if err != nil {
				return err
			}
			paths, err := export.WriteAll(cmd.Context(), b, formats, opts)
			if err != nil {
				return err
			}
			for _, p := range paths {
				printf(cmd.OutOrStdout(), "wrote %s\n", p)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringP("out", "o", ".", "output directory (default export.dir)")
	f.String("select", "", "render snapshots with this unit selected")
	f.Int("fit-width", 0, "scale PNG/SVG bars to this image width (default export.png_fit_width)")
	f.String("title", "", "page and report title")
	return cmd
}

func parseFormats(arg string) ([]export.Format, error) {
	if strings.EqualFold(arg, "all") {
		return export.AllFormats, nil
	}
	var formats []export.Format
	for _, part := range strings.Split(arg, ",") {
		f, err := export.ParseFormat(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

func newWizardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "wizard",
		Short: "Pick export formats and options interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, _, err := a.bundle(cmd)
			if err != nil {
				return err
			}
			if b.Timeline.Len() == 0 {
				return fmt.Errorf("nothing to export: the document has no entries")
			}
			_, err = export.NewWizard(b, a.cfg, a.configPath).Run(cmd.Context())
			if errors.Is(err, export.ErrWizardCancelled) {
				printf(cmd.OutOrStdout(), "Export cancelled\n")
				return nil
			}
			return err
		},
	}
}
