// Command buildline views compilation timelines: an interactive TUI, a
// summary printer, dependency-aware selection and static exports.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vanderheijden86/buildline/internal/datasource"
	"github.com/vanderheijden86/buildline/pkg/config"
	"github.com/vanderheijden86/buildline/pkg/debug"
	"github.com/vanderheijden86/buildline/pkg/export"
	"github.com/vanderheijden86/buildline/pkg/model"
	"github.com/vanderheijden86/buildline/pkg/version"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the state shared by every subcommand of one invocation.
type app struct {
	v          *viper.Viper
	cfg        config.Config
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "buildline",
		Short: "Compilation timeline viewer",
		Long: `buildline shows how long each compilation unit took and how the units
depend on each other. Without a subcommand it opens the interactive timeline.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ~/.config/buildline/config.yaml)")
	pf.StringP("input", "i", "", "timeline document (default: discover Logs/compilation_timeline.{json,js}; - reads stdin)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newTUICmd(a),
		newSummaryCmd(a),
		newSelectCmd(a),
		newExportCmd(a),
		newWizardCmd(a),
		newSourcesCmd(a),
		newVersionCmd(),
	)
	return root
}

// init layers config: defaults, config file, BUILDLINE_* env, then flags.
func (a *app) init(cmd *cobra.Command, _ []string) error {
	if a.verbose {
		debug.SetEnabled(true)
	}
	v, err := config.NewViper(a.configPath)
	if err != nil {
		return err
	}
	if err := v.BindPFlag("input", cmd.Flags().Lookup("input")); err != nil {
		return err
	}
	a.v = v
	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	debug.Log("config: input=%q theme=%s watch=%v", cfg.Input, cfg.UI.Theme, cfg.Watch.Enabled)
	return nil
}

// load resolves the input document and parses it.
func (a *app) load(cmd *cobra.Command) (*model.Dataset, datasource.DataSource, error) {
	stderr := cmd.ErrOrStderr()
	ds, src, err := datasource.Load(datasource.DiscoveryOptions{
		Path:    a.cfg.Input,
		Verbose: a.verbose,
		Logger:  func(msg string) { fmt.Fprintln(stderr, msg) },
	})
	if err != nil {
		return nil, src, err
	}
	debug.Log("loaded %d entries from %s", ds.Len(), src.Path)
	return ds, src, nil
}

func (a *app) bundle(cmd *cobra.Command) (*export.Bundle, datasource.DataSource, error) {
	ds, src, err := a.load(cmd)
	if err != nil {
		return nil, src, err
	}
	return export.NewBundle(ds), src, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "buildline %s\n", version.Version)
			return err
		},
	}
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
