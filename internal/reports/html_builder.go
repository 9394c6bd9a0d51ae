package reports

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"datahub/internal/charts"
)

// HTMLBuilder handles HTML generation with goldmark
type HTMLBuilder struct {
	templateLoader *TemplateLoader
	goldmark       goldmark.Markdown
}

// NewHTMLBuilder creates an HTML builder
func NewHTMLBuilder() *HTMLBuilder {
	// raw HTML stays escaped: narratives come from a model
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)

	return &HTMLBuilder{
		templateLoader: NewTemplateLoader(),
		goldmark:       md,
	}
}

// Image is a static chart shown on the snapshot page
type Image struct {
	Title string
	Src   string
}

// TemplateData represents the data structure for the HTML template
type TemplateData struct {
	ID               string
	Title            string
	GeneratedAt      string
	Version          string
	CSSFilePath      string
	EChartsScriptURL string
	Content          template.HTML
	Charts           []charts.ChartSnippet
	Images           []Image
	Degraded         bool
	MockResources    []string
}

// ConvertMarkdownToHTML converts markdown to HTML using goldmark
func (h *HTMLBuilder) ConvertMarkdownToHTML(markdownContent string) (string, error) {
	var buf bytes.Buffer
	if err := h.goldmark.Convert([]byte(markdownContent), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// GenerateStaticCSS returns the stylesheet saved next to every snapshot
func (h *HTMLBuilder) GenerateStaticCSS() (string, error) {
	css, err := h.templateLoader.LoadCSSStyles()
	if err != nil {
		return "", fmt.Errorf("failed to load CSS: %w", err)
	}
	return css, nil
}

// BuildCompleteHTML renders the snapshot page
func (h *HTMLBuilder) BuildCompleteHTML(data TemplateData) (string, error) {
	htmlTemplate, err := h.templateLoader.LoadHTMLTemplate()
	if err != nil {
		return "", err
	}

	tmpl, err := template.New("snapshot").Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	if data.CSSFilePath == "" {
		data.CSSFilePath = "styles.css"
	}
	if data.EChartsScriptURL == "" {
		data.EChartsScriptURL = charts.EChartsScriptURL
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// templateHTML marks goldmark output as safe; raw HTML in the markdown is
// not rendered by the configured goldmark instance.
func templateHTML(s string) template.HTML {
	return template.HTML(s)
}
