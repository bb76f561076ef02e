package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/buildline/pkg/timeline"
)

// selectedRow is one visible row of a selection, as printed by select --json.
type selectedRow struct {
	Name     string  `json:"name"`
	State    string  `json:"state"`
	Duration float64 `json:"duration_seconds"`
	BarWidth int     `json:"bar_width"`
}

func newSelectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select NAME",
		Short: "Select a unit and print how every visible row relates to it",
		Long: `Select a unit the way a click in the timeline does and print each row
that stays visible with its state: selected, dependency, directDependant or
indirectDependant. NAME is the raw unit name or its display name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, _, err := a.load(cmd)
			if err != nil {
				return err
			}
			tl := timeline.Build(ds)
			ctl := timeline.NewController(tl)
			if !ctl.Activate(args[0]) {
				return fmt.Errorf("no unit named %q", args[0])
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			return writeSelection(cmd.OutOrStdout(), tl.VisibleRows(), asJSON)
		},
	}
	cmd.Flags().Bool("json", false, "print JSON instead of a table")
	return cmd
}

func writeSelection(w io.Writer, rows []*timeline.Row, asJSON bool) error {
	if asJSON {
		out := make([]selectedRow, len(rows))
		for i, r := range rows {
			out[i] = selectedRow{
				Name:     r.Name(),
				State:    r.State().String(),
				Duration: r.Entry.DurationSeconds,
				BarWidth: r.BarWidth,
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for _, r := range rows {
		printf(w, "%-18s %s\n", r.State(), r.Label)
	}
	return nil
}
