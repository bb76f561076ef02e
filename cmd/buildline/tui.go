package main

import (
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/buildline/pkg/debug"
	"github.com/vanderheijden86/buildline/pkg/loader"
	"github.com/vanderheijden86/buildline/pkg/model"
	"github.com/vanderheijden86/buildline/pkg/ui"
	"github.com/vanderheijden86/buildline/pkg/watcher"
)

func newTUICmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive timeline",
		Long: `Open the interactive timeline. Rows are ordered longest first; enter
selects a unit and hides everything outside its dependency neighbourhood.
The document is reloaded when it changes on disk unless watch.enabled is off.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd)
		},
	}
	cmd.Flags().Bool("no-watch", false, "do not reload the document when it changes")
	return cmd
}

func (a *app) runTUI(cmd *cobra.Command) error {
	ds, src, err := a.load(cmd)
	if err != nil {
		return err
	}

	m := ui.NewModel(ds, a.cfg).WithSource(src.Path)
	if src.Path != loader.StdinPath {
		path := src.Path
		m = m.WithReload(func() (*model.Dataset, error) { return loader.Load(path) })
	}

	noWatch, _ := cmd.Flags().GetBool("no-watch")
	if a.cfg.Watch.Enabled && !noWatch && src.Path != loader.StdinPath {
		dw, err := watcher.WatchDocument(cmd.Context(), src.Path, watcher.OptionsFromConfig(a.cfg.Watch)...)
		if err != nil {
			// Non-fatal: the timeline still works without live reload.
			debug.Log("tui: watch %s: %v", src.Path, err)
		} else {
			defer dw.Stop()
			m = m.WithWatcher(dw)
		}
	}

	return runTUIProgram(m)
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set BUILDLINE_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("BUILDLINE_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
