package template

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
)

// Renderer handles template rendering
type Renderer struct{}

// NewRenderer creates a new template renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render renders a template file with the provided data
func (r *Renderer) Render(templatePath string, data interface{}) (string, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}

	return r.RenderString(string(content), data)
}

// RenderString renders a template string with the provided data
func (r *Renderer) RenderString(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("template").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// GetDefaultPreviewTemplate returns the template of the deploy preview section.
// It expects a value with a Links field of {Name, URL} items.
func (r *Renderer) GetDefaultPreviewTemplate() string {
	return `### Netlify Deploy Previews

{{if .Links}}{{range $i, $link := .Links}}{{if $i}}
{{end}}- {{$link.Name}}: {{$link.URL}}{{end}}{{else}}Netlify deploy previews are not available yet.{{end}}`
}
