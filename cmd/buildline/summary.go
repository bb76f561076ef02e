package main

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/buildline/pkg/export"
	"github.com/vanderheijden86/buildline/pkg/metrics"
	"github.com/vanderheijden86/buildline/pkg/timeline"
)

func newSummaryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the compilation statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, _, err := a.bundle(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			asMarkdown, _ := cmd.Flags().GetBool("markdown")
			if asMarkdown {
				if err := writeReport(out, b); err != nil {
					return err
				}
			} else {
				writeSummary(out, b.Timeline)
			}

			if timings, _ := cmd.Flags().GetBool("timings"); timings {
				return writeTimings(out, metrics.AllStats())
			}
			return nil
		},
	}
	cmd.Flags().Bool("markdown", false, "print the full markdown report (styled on a terminal)")
	cmd.Flags().Bool("timings", false, "print internal timing metrics as JSON")
	return cmd
}

func writeSummary(w io.Writer, tl *timeline.Timeline) {
	s := tl.Summary()
	printf(w, "%s\n", s)
	if note := s.Note(); note != "" {
		printf(w, "(%s)\n", note)
	}
}

// writeReport styles the report with glamour on a terminal and prints the
// markdown as-is otherwise.
func writeReport(w io.Writer, b *export.Bundle) error {
	md := export.GenerateMarkdown(b, timeline.SummaryTitle)
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		_, err := io.WriteString(w, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func writeTimings(w io.Writer, stats []metrics.TimingStats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
