// Package plotpage renders plots and assembles them into the HTML report.
//
// Bar plots go through a Selector that picks an interactive renderer for
// small plots and a static PNG renderer once a plot has more samples than
// the flat threshold. Pages are built from sections, one per module.
package plotpage

import (
	"fmt"
	"html/template"
	"io"
	"slices"
)

// Plot is one rendered plot inside a section.
type Plot struct {
	Title       string
	Description string
	Content     template.HTML
}

// Section is the block one module contributes to the page.
type Section struct {
	Anchor string
	Title  string
	Intro  template.HTML
	Plots  []Plot
}

// Page represents a complete report page.
type Page struct {
	Title       string
	Description string
	ProjectName string
	Generated   string
	Theme       Theme
	Assets      []string
	Sections    []Section
}

// NewPage creates a new report page.
func NewPage(title, description string) *Page {
	return &Page{
		Title:       title,
		Description: description,
		ProjectName: "qcreport",
		Theme:       ThemeLight,
	}
}

// WithTheme sets the theme for the page.
func (p *Page) WithTheme(theme Theme) *Page {
	p.Theme = theme

	return p
}

// AddAssets registers scripts the page must load, once each.
func (p *Page) AddAssets(assets ...string) {
	for _, asset := range assets {
		if !slices.Contains(p.Assets, asset) {
			p.Assets = append(p.Assets, asset)
		}
	}
}

// Add appends sections to the page.
func (p *Page) Add(sections ...Section) {
	p.Sections = append(p.Sections, sections...)
}

// Render writes the page as HTML.
func (p *Page) Render(w io.Writer) error {
	return HTMLRenderer{}.Render(w, p)
}

// HTMLRenderer renders pages as HTML.
type HTMLRenderer struct {
	ExtraCSS string
}

// Render writes the page as HTML to the writer.
func (r HTMLRenderer) Render(w io.Writer, page *Page) error {
	var content template.HTML

	nav := make([]navItem, 0, len(page.Sections))

	for _, section := range page.Sections {
		sectionHTML, err := renderTemplate("section.html", sectionData{
			Anchor: section.Anchor,
			Title:  section.Title,
			Intro:  section.Intro,
			Plots:  plotsData(section.Plots),
		})
		if err != nil {
			return fmt.Errorf("render section %s: %w", section.Anchor, err)
		}

		content += sectionHTML

		nav = append(nav, navItem{Anchor: section.Anchor, Title: section.Title})
	}

	darkClass := ""
	if page.Theme == ThemeDark {
		darkClass = "dark"
	}

	html, err := renderTemplate("page.html", pageData{
		Title:       page.Title,
		Description: page.Description,
		ProjectName: page.ProjectName,
		Generated:   page.Generated,
		DarkClass:   darkClass,
		Theme:       GetThemeConfig(page.Theme),
		ExtraCSS:    template.CSS(r.ExtraCSS), //nolint:gosec // CSS supplied by the caller.
		Assets:      page.Assets,
		Nav:         nav,
		Content:     content,
	})
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	_, err = io.WriteString(w, string(html))
	if err != nil {
		return fmt.Errorf("writing page: %w", err)
	}

	return nil
}

func plotsData(plots []Plot) []plotData {
	out := make([]plotData, len(plots))
	for i, p := range plots {
		out[i] = plotData(p)
	}

	return out
}

// TableHeader is one column of an HTML table. ID, Scale, Min and Max are
// emitted as data attributes for the colour scale of the column when set.
type TableHeader struct {
	Title       string
	Description string
	ID          string
	Scale       string
	Min         string
	Max         string
}

// RenderTable renders a plain table, e.g. the general statistics table.
func RenderTable(headers []TableHeader, rows [][]string) (template.HTML, error) {
	return renderTemplate("table.html", tableData{Headers: headers, Rows: rows})
}
