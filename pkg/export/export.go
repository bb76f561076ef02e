// Package export writes a compilation timeline to files: a self-contained
// interactive HTML page, SVG/PNG snapshots, a SQLite database and a markdown
// report.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/buildline/pkg/analysis"
	"github.com/vanderheijden86/buildline/pkg/debug"
	"github.com/vanderheijden86/buildline/pkg/metrics"
	"github.com/vanderheijden86/buildline/pkg/model"
	"github.com/vanderheijden86/buildline/pkg/timeline"
)

// Format is one export target.
type Format string

const (
	FormatHTML     Format = "html"
	FormatSVG      Format = "svg"
	FormatPNG      Format = "png"
	FormatSQLite   Format = "sqlite"
	FormatMarkdown Format = "markdown"
)

// AllFormats lists every format in the order `export all` reports them.
var AllFormats = []Format{FormatHTML, FormatSVG, FormatPNG, FormatSQLite, FormatMarkdown}

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "html", "htm":
		return FormatHTML, nil
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	case "sqlite", "sqlite3", "db":
		return FormatSQLite, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// FileName is the default output file name for the format.
func (f Format) FileName() string {
	switch f {
	case FormatHTML:
		return "compilation_timeline.html"
	case FormatSVG:
		return "compilation_timeline.svg"
	case FormatPNG:
		return "compilation_timeline.png"
	case FormatSQLite:
		return "compilation_timeline.sqlite3"
	case FormatMarkdown:
		return "compilation_timeline.md"
	default:
		return "compilation_timeline." + string(f)
	}
}

// Options apply to every format; fields that do not apply are ignored.
type Options struct {
	Dir      string // output directory, created if missing
	Title    string
	Select   string // snapshot only: render with this row selected
	FitWidth int    // snapshot only: scale bars so the image is this wide; 0 keeps 750 px/s
}

func (o Options) title() string {
	if strings.TrimSpace(o.Title) == "" {
		return timeline.SummaryTitle
	}
	return o.Title
}

// Bundle is everything an exporter reads. It is built once and shared
// read-only between concurrent writers.
type Bundle struct {
	Dataset  *model.Dataset
	Timeline *timeline.Timeline
	Coupling analysis.CouplingReport
	Edges    []analysis.Edge
}

// NewBundle lays out ds and runs the coupling analysis.
func NewBundle(ds *model.Dataset) *Bundle {
	if ds == nil {
		ds = &model.Dataset{}
	}
	a := analysis.NewAnalyzer(ds.Entries)
	return &Bundle{
		Dataset:  ds,
		Timeline: timeline.Build(ds),
		Coupling: a.Analyze(),
		Edges:    a.Edges(),
	}
}

// Write renders one format into opts.Dir and returns the written path.
func Write(ctx context.Context, b *Bundle, f Format, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	defer metrics.Timer(metrics.Export)()

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, f.FileName())

	var err error
	switch f {
	case FormatHTML:
		err = SaveHTML(b, path, opts.title())
	case FormatSVG, FormatPNG:
		err = SaveSnapshot(SnapshotOptions{
			Path:     path,
			Format:   string(f),
			Title:    opts.title(),
			Timeline: b.Timeline,
			Select:   opts.Select,
			FitWidth: opts.FitWidth,
		})
	case FormatSQLite:
		err = NewSQLiteExporter(b).Export(path)
	case FormatMarkdown:
		err = SaveMarkdown(b, path, opts.title())
	default:
		err = fmt.Errorf("unsupported export format %q", f)
	}
	if err != nil {
		return "", fmt.Errorf("export %s: %w", f, err)
	}
	debug.Log("export: wrote %s", path)
	return path, nil
}

// WriteAll renders formats concurrently. Paths come back in the order of
// formats; the first failure cancels the rest.
func WriteAll(ctx context.Context, b *Bundle, formats []Format, opts Options) ([]string, error) {
	paths := make([]string, len(formats))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		g.Go(func() error {
			p, err := Write(ctx, b, f, opts)
			if err != nil {
				return err
			}
			paths[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
