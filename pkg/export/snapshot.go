package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/buildline/pkg/analysis"
	"github.com/vanderheijden86/buildline/pkg/timeline"
)

// SnapshotOptions controls SVG/PNG snapshot export.
type SnapshotOptions struct {
	Path     string // format inferred from the extension when Format is empty
	Format   string // "svg" or "png"
	Title    string
	Timeline *timeline.Timeline
	Select   string // optional: draw only the rows this selection keeps visible
	FitWidth int    // 0 keeps PixelsPerSecond; otherwise bars scale to fit
}

// SaveSnapshot renders the timeline rows as a static image.
func SaveSnapshot(opts SnapshotOptions) error {
	if opts.Timeline == nil {
		return fmt.Errorf("timeline is required for snapshot export")
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		format = strings.ToLower(strings.TrimPrefix(filepath.Ext(opts.Path), "."))
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}

	layout, err := buildSnapshotLayout(opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	if format == "png" {
		return renderSnapshotPNG(opts.Path, layout)
	}
	f, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return renderSnapshotSVG(f, layout)
}

// --- layout ------------------------------------------------------------------

const (
	snapPadding   = 24.0
	snapHeader    = 96.0
	snapRowHeight = 34.0
	snapBarHeight = 10.0
	snapCharWidth = 7.0 // basicfont.Face7x13
	snapMinWidth  = 480
)

type snapshotRow struct {
	Label string
	Y     float64
	BarW  float64
	Fill  color.RGBA
	Band  color.RGBA // row background; zero alpha means none
}

type snapshotLayout struct {
	Width, Height int
	Title         string
	Lines         []string
	Rows          []snapshotRow
}

func buildSnapshotLayout(opts SnapshotOptions) (snapshotLayout, error) {
	tl := opts.Timeline

	var (
		plan    timeline.SelectionPlan
		haveSel bool
	)
	if opts.Select != "" {
		p, ok := tl.Plan(opts.Select)
		if !ok {
			return snapshotLayout{}, fmt.Errorf("no unit named %q", opts.Select)
		}
		plan, haveSel = p, true
	}

	summary := tl.Summary()
	title := opts.Title
	if title == "" {
		title = summary.Title
	}
	lines := summary.Lines()
	if haveSel {
		lines = append(lines, fmt.Sprintf("Selected: %s", timeline.DisplayName(plan.Selected)))
	}

	var visible []*timeline.Row
	maxBar, maxLabel := 0, len(title)
	for _, r := range tl.Rows {
		if haveSel && !plan.Visible(r.Name()) {
			continue
		}
		visible = append(visible, r)
		maxBar = max(maxBar, r.BarWidth)
		maxLabel = max(maxLabel, len(r.Label))
	}
	for _, l := range lines {
		maxLabel = max(maxLabel, len(l))
	}

	scale := 1.0
	if opts.FitWidth > 0 && maxBar > 0 {
		avail := float64(opts.FitWidth) - 2*snapPadding
		scale = avail / float64(maxBar)
	}

	textW := float64(maxLabel)*snapCharWidth + 2*snapPadding
	barsW := float64(maxBar)*scale + 2*snapPadding
	width := int(math.Ceil(math.Max(textW, barsW)))
	if opts.FitWidth > 0 {
		width = opts.FitWidth
	}
	width = max(width, snapMinWidth)

	layout := snapshotLayout{
		Width:  width,
		Height: int(snapHeader + float64(len(visible))*snapRowHeight + snapPadding),
		Title:  title,
		Lines:  lines,
	}
	for i, r := range visible {
		row := snapshotRow{
			Label: r.Label,
			Y:     snapHeader + float64(i)*snapRowHeight,
			BarW:  float64(r.BarWidth) * scale,
			Fill:  speedColor(r.Speed),
		}
		if haveSel {
			row.Band = stateColor(plan.State(r.Name()))
		}
		layout.Rows = append(layout.Rows, row)
	}
	return layout, nil
}

// --- colors ------------------------------------------------------------------

var (
	colorBackdrop  = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG  = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorText      = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle    = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorFast      = color.RGBA{0x4c, 0xaf, 0x50, 0xff}
	colorMedium    = color.RGBA{0xff, 0xc1, 0x07, 0xff}
	colorSlow      = color.RGBA{0xf4, 0x43, 0x36, 0xff}
	colorSelected  = color.RGBA{0xbb, 0xde, 0xfb, 0xff}
	colorDep       = color.RGBA{0xe1, 0xd5, 0xf7, 0xff}
	colorDirect    = color.RGBA{0xff, 0xe0, 0xb2, 0xff}
	colorIndirect  = color.RGBA{0xff, 0xf5, 0xc4, 0xff}
	colorNoBandRow = color.RGBA{}
)

func speedColor(s analysis.Speed) color.RGBA {
	switch s {
	case analysis.SpeedFast:
		return colorFast
	case analysis.SpeedMedium:
		return colorMedium
	default:
		return colorSlow
	}
}

func stateColor(s timeline.RowState) color.RGBA {
	switch s {
	case timeline.StateSelected:
		return colorSelected
	case timeline.StateDependency:
		return colorDep
	case timeline.StateDirectDependant:
		return colorDirect
	case timeline.StateIndirectDependant:
		return colorIndirect
	default:
		return colorNoBandRow
	}
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// --- rendering ---------------------------------------------------------------

func renderSnapshotPNG(path string, layout snapshotLayout) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(12, 12, float64(layout.Width)-24, snapHeader-24, 8)
	dc.Fill()

	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Title, snapPadding, 28, 0, 0.5)
	dc.SetColor(colorSubtle)
	for i, l := range layout.Lines {
		dc.DrawStringAnchored(l, snapPadding, 46+float64(i)*16, 0, 0.5)
	}

	for _, r := range layout.Rows {
		if r.Band.A != 0 {
			dc.SetColor(r.Band)
			dc.DrawRectangle(0, r.Y, float64(layout.Width), snapRowHeight)
			dc.Fill()
		}
		dc.SetColor(colorText)
		dc.DrawStringAnchored(r.Label, snapPadding, r.Y+10, 0, 0.5)
		if r.BarW > 0 {
			dc.SetColor(r.Fill)
			dc.DrawRoundedRectangle(snapPadding, r.Y+18, r.BarW, snapBarHeight, 2)
			dc.Fill()
		}
	}
	return dc.SavePNG(path)
}

func renderSnapshotSVG(w io.Writer, layout snapshotLayout) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, "fill:"+css(colorBackdrop))
	canvas.Roundrect(12, 12, layout.Width-24, int(snapHeader-24), 8, 8, "fill:"+css(colorHeaderBG))

	canvas.Text(int(snapPadding), 32, layout.Title,
		fmt.Sprintf("fill:%s;font-size:15px;font-family:monospace;font-weight:bold", css(colorText)))
	for i, l := range layout.Lines {
		canvas.Text(int(snapPadding), 50+i*16, l,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	}

	for _, r := range layout.Rows {
		y := int(r.Y)
		if r.Band.A != 0 {
			canvas.Rect(0, y, layout.Width, int(snapRowHeight), "fill:"+css(r.Band))
		}
		canvas.Text(int(snapPadding), y+14, r.Label,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorText)))
		if w := int(math.Round(r.BarW)); w > 0 {
			canvas.Roundrect(int(snapPadding), y+18, w, int(snapBarHeight), 2, 2, "fill:"+css(r.Fill))
		}
	}

	canvas.End()
	return nil
}
