package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/buildline/pkg/config"
)

// ErrWizardCancelled is returned when the user declines the final confirm.
var ErrWizardCancelled = errors.New("export cancelled")

// WizardChoices is what the wizard collects.
type WizardChoices struct {
	Formats  []string
	Dir      string
	Select   string // raw row name; empty renders without a selection
	FitWidth string // kept as text for the input field
	Remember bool   // write formats and dir back to the config file
}

// Wizard walks the user through an export of one timeline.
type Wizard struct {
	bundle     *Bundle
	cfg        config.Config
	configPath string
	out        io.Writer
	choices    WizardChoices
}

// NewWizard seeds the choices from cfg. configPath is where Remember saves;
// empty uses the XDG config path.
func NewWizard(b *Bundle, cfg config.Config, configPath string) *Wizard {
	return &Wizard{
		bundle:     b,
		cfg:        cfg,
		configPath: configPath,
		out:        os.Stdout,
		choices:    choicesFromConfig(cfg),
	}
}

func choicesFromConfig(cfg config.Config) WizardChoices {
	c := WizardChoices{Dir: cfg.Export.Dir}
	for _, name := range cfg.Export.Formats {
		if f, err := ParseFormat(name); err == nil {
			c.Formats = append(c.Formats, string(f))
		}
	}
	if cfg.Export.PNGFitWidth > 0 {
		c.FitWidth = strconv.Itoa(cfg.Export.PNGFitWidth)
	}
	return c
}

// Choices returns the current choices.
func (w *Wizard) Choices() WizardChoices {
	return w.choices
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm falls back to accessible mode without a TTY.
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeCharm())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

func (w *Wizard) form() *huh.Form {
	formatOpts := make([]huh.Option[string], 0, len(AllFormats))
	for _, f := range AllFormats {
		formatOpts = append(formatOpts, huh.NewOption(strings.ToUpper(string(f)), string(f)))
	}

	selectOpts := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, r := range w.bundle.Timeline.Rows {
		selectOpts = append(selectOpts, huh.NewOption(r.Label, r.Name()))
	}

	confirmed := true
	return newForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Formats").
				Options(formatOpts...).
				Value(&w.choices.Formats).
				Validate(func(v []string) error {
					if len(v) == 0 {
						return errors.New("pick at least one format")
					}
					return nil
				}),
			huh.NewInput().
				Title("Output directory").
				Value(&w.choices.Dir).
				Placeholder("."),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Render snapshots with a unit selected?").
				Options(selectOpts...).
				Height(12).
				Value(&w.choices.Select),
			huh.NewInput().
				Title("PNG width (empty keeps 750 px per second)").
				Value(&w.choices.FitWidth).
				Validate(validateWidth),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Remember formats and directory?").
				Value(&w.choices.Remember),
			huh.NewConfirm().
				Title("Export now?").
				Value(&confirmed).
				Validate(func(ok bool) error {
					if !ok {
						return ErrWizardCancelled
					}
					return nil
				}),
		),
	)
}

func validateWidth(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("width must be a positive number")
	}
	return nil
}

// Run shows the form and performs the export.
func (w *Wizard) Run(ctx context.Context) ([]string, error) {
	if err := w.form().RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrWizardCancelled
		}
		return nil, err
	}
	return w.Apply(ctx)
}

// Apply exports with the current choices and, when asked, saves them.
func (w *Wizard) Apply(ctx context.Context) ([]string, error) {
	formats, opts, err := w.plan()
	if err != nil {
		return nil, err
	}
	paths, err := WriteAll(ctx, w.bundle, formats, opts)
	if err != nil {
		return nil, err
	}
	if w.choices.Remember {
		if err := w.remember(); err != nil {
			return paths, fmt.Errorf("save config: %w", err)
		}
	}
	for _, p := range paths {
		fmt.Fprintf(w.out, "  wrote %s\n", p)
	}
	return paths, nil
}

func (w *Wizard) plan() ([]Format, Options, error) {
	var formats []Format
	for _, name := range w.choices.Formats {
		f, err := ParseFormat(name)
		if err != nil {
			return nil, Options{}, err
		}
		formats = append(formats, f)
	}
	if len(formats) == 0 {
		return nil, Options{}, errors.New("no export formats selected")
	}
	if err := validateWidth(w.choices.FitWidth); err != nil {
		return nil, Options{}, err
	}
	fit, _ := strconv.Atoi(strings.TrimSpace(w.choices.FitWidth))
	return formats, Options{
		Dir:      w.choices.Dir,
		Select:   w.choices.Select,
		FitWidth: fit,
	}, nil
}

func (w *Wizard) remember() error {
	cfg := w.cfg
	cfg.Export.Formats = append([]string(nil), w.choices.Formats...)
	cfg.Export.Dir = w.choices.Dir
	if fit, err := strconv.Atoi(strings.TrimSpace(w.choices.FitWidth)); err == nil {
		cfg.Export.PNGFitWidth = fit
	}
	if w.configPath != "" {
		return config.SaveTo(cfg, w.configPath)
	}
	return config.Save(cfg)
}
