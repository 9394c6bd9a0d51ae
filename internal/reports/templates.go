package reports

import (
	"embed"
	"fmt"
)

//go:embed templates/snapshot.html templates/styles.css
var templateFS embed.FS

// TemplateLoader handles loading HTML templates and CSS styles
type TemplateLoader struct{}

// NewTemplateLoader creates a new template loader
func NewTemplateLoader() *TemplateLoader {
	return &TemplateLoader{}
}

// LoadHTMLTemplate loads the snapshot page template
func (t *TemplateLoader) LoadHTMLTemplate() (string, error) {
	content, err := templateFS.ReadFile("templates/snapshot.html")
	if err != nil {
		return "", fmt.Errorf("failed to read snapshot template: %w", err)
	}
	return string(content), nil
}

// LoadCSSStyles loads the snapshot stylesheet
func (t *TemplateLoader) LoadCSSStyles() (string, error) {
	content, err := templateFS.ReadFile("templates/styles.css")
	if err != nil {
		return "", fmt.Errorf("failed to read snapshot styles: %w", err)
	}
	return string(content), nil
}
