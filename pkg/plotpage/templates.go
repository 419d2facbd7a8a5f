package plotpage

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	templates     *template.Template
	templatesOnce sync.Once
	errTemplates  error
)

// getTemplates returns the parsed templates, loading them once.
func getTemplates() (*template.Template, error) {
	templatesOnce.Do(func() {
		var parseErr error

		templates, parseErr = template.New("").ParseFS(templateFS, "templates/*.html")
		if parseErr != nil {
			errTemplates = fmt.Errorf("parsing templates: %w", parseErr)
		}
	})

	return templates, errTemplates
}

// renderTemplate renders a named template with the given data.
func renderTemplate(name string, data any) (template.HTML, error) {
	tmpl, err := getTemplates()
	if err != nil {
		return "", fmt.Errorf("loading templates: %w", err)
	}

	var buf bytes.Buffer

	err = tmpl.ExecuteTemplate(&buf, name, data)
	if err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}

	return template.HTML(buf.String()), nil //nolint:gosec // output of html/template.
}

// pageData holds data for the page template.
type pageData struct {
	Title       string
	Description string
	ProjectName string
	Generated   string
	DarkClass   string
	Theme       ThemeConfig
	ExtraCSS    template.CSS
	Assets      []string
	Nav         []navItem
	Content     template.HTML
}

type navItem struct {
	Anchor string
	Title  string
}

// sectionData holds data for the section template.
type sectionData struct {
	Anchor string
	Title  string
	Intro  template.HTML
	Plots  []plotData
}

type plotData struct {
	Title       string
	Description string
	Content     template.HTML
}

// switchButton is one button of a plot control group.
type switchButton struct {
	Label   string
	Action  string
	Target  string
	Active  bool
	HasData bool
	NewData int
	YLab    string
	YMax    string
}

// payloadData holds data for the interactive payload template.
type payloadData struct {
	ID       string
	Class    string
	Switches [][]switchButton
	Payload  template.JS
}

// echartsData holds data for the ECharts plot group template.
type echartsData struct {
	ID       string
	Mode     string
	Switches [][]switchButton
	Views    []echartsView
}

type echartsView struct {
	Dataset int
	Mode    string
	Visible bool
	Chart   template.HTML
}

// staticData holds data for the static image template.
type staticData struct {
	Image template.URL
}

// tableData holds data for the table template.
type tableData struct {
	Headers []TableHeader
	Rows    [][]string
}
