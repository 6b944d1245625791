package sections

import (
	"fmt"
	"sort"

	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/models"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/template"
)

const (
	NETLIFY_SECTION_KEY = "netlify-previews"
	NETLIFY_APP_SLUG    = "netlify"
	NETLIFY_APP_NAME    = "Netlify"
)

// PreviewLink is one deploy preview shown in the PR body
type PreviewLink struct {
	Name string
	URL  string
}

type previewData struct {
	Links []PreviewLink
}

// IsNetlifyApp reports whether a check run app is Netlify
func IsNetlifyApp(slug, name string) bool {
	return slug == NETLIFY_APP_SLUG || name == NETLIFY_APP_NAME
}

// CollectPreviewLinks extracts the preview links from the Netlify check runs.
// The first run of each name wins; runs without a URL are skipped. Links are
// sorted by name.
func CollectPreviewLinks(runs []models.CheckRun) []PreviewLink {
	seen := make(map[string]bool)
	links := make([]PreviewLink, 0)

	for _, run := range runs {
		if !IsNetlifyApp(run.AppSlug, run.AppName) {
			continue
		}
		url := run.DetailsURL
		if url == "" {
			url = run.HTMLURL
		}
		if url == "" || seen[run.Name] {
			continue
		}
		seen[run.Name] = true
		links = append(links, PreviewLink{Name: run.Name, URL: url})
	}

	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Name < links[j].Name
	})
	return links
}

// PreviewSection renders the content of the deploy preview section
type PreviewSection struct {
	renderer     *template.Renderer
	templatePath string
}

// NewPreviewSection creates a preview section renderer. An empty templatePath
// uses the embedded default template.
func NewPreviewSection(renderer *template.Renderer, templatePath string) *PreviewSection {
	return &PreviewSection{renderer: renderer, templatePath: templatePath}
}

// Content renders the section content for links; no links renders a placeholder
func (p *PreviewSection) Content(links []PreviewLink) (string, error) {
	data := previewData{Links: links}

	var content string
	var err error
	if p.templatePath != "" {
		content, err = p.renderer.Render(p.templatePath, data)
	} else {
		content, err = p.renderer.RenderString(p.renderer.GetDefaultPreviewTemplate(), data)
	}
	if err != nil {
		return "", fmt.Errorf("failed to render preview section: %w", err)
	}
	return content, nil
}

// Upsert writes the preview section for links into body
func (p *PreviewSection) Upsert(body string, links []PreviewLink) (string, error) {
	content, err := p.Content(links)
	if err != nil {
		return "", err
	}
	return Upsert(body, NETLIFY_SECTION_KEY, content, DefaultOptions()), nil
}

// EnsurePlaceholder adds the placeholder section unless the body has one already
func (p *PreviewSection) EnsurePlaceholder(body string) (string, error) {
	if Has(body, NETLIFY_SECTION_KEY) {
		return body, nil
	}
	return p.Upsert(body, nil)
}
