package export

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/buildline/pkg/timeline"
)

//go:embed templates/timeline.html.tmpl
var timelineHTML string

var htmlTemplate = template.Must(template.New("timeline").Parse(timelineHTML))

type htmlRow struct {
	Name  string
	Label string
	Width int
	Speed string
}

type htmlPage struct {
	Title   string
	Summary []string
	Note    string
	Rows    []htmlRow
	Plans   template.JS
}

// selectionPlans precomputes, for every row i, the class of each row that
// stays visible when row i is activated. Rows missing from a plan are hidden.
func selectionPlans(tl *timeline.Timeline) []map[string]string {
	pos := make(map[string]int, len(tl.Rows))
	for i, r := range tl.Rows {
		pos[r.Name()] = i
	}

	plans := make([]map[string]string, len(tl.Rows))
	for i, r := range tl.Rows {
		plan, _ := tl.Plan(r.Name())
		classes := make(map[string]string, len(plan.Roles))
		for name := range plan.Roles {
			classes[strconv.Itoa(pos[name])] = plan.State(name).String()
		}
		plans[i] = classes
	}
	return plans
}

// RenderHTML writes a self-contained interactive page. Clicking a row
// applies its precomputed selection; clicking it again, or the clear
// button, restores every row.
func RenderHTML(w io.Writer, b *Bundle, title string) error {
	tl := b.Timeline
	summary := tl.Summary()

	plansJSON, err := json.Marshal(selectionPlans(tl))
	if err != nil {
		return fmt.Errorf("encode selection plans: %w", err)
	}

	page := htmlPage{
		Title:   title,
		Summary: summary.Lines(),
		Note:    summary.Note(),
		Plans:   template.JS(plansJSON),
	}
	for _, r := range tl.Rows {
		page.Rows = append(page.Rows, htmlRow{
			Name:  r.Name(),
			Label: r.Label,
			Width: r.BarWidth,
			Speed: r.Speed.String(),
		})
	}
	return htmlTemplate.Execute(w, page)
}

// SaveHTML renders the page to path.
func SaveHTML(b *Bundle, path, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := RenderHTML(f, b, title); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
