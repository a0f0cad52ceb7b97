package render

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"
	"text/template"

	"github.com/microcosm-cc/bluemonday"
)

const sectionMarkdown = `# {{.Title}}

{{- if .Description}}

{{.Description}}
{{- end}}

**Proyecto:** {{.ProjectName}}
**Región:** {{.Region}}

## Antecedentes
{{- if .Inputs}}
{{range .Inputs}}
- **{{.Label}}:** {{.Value}}
{{- end}}
{{- else}}

Esta sección no requiere antecedentes adicionales.
{{- end}}
`

// MarkdownRenderer composes section content as Markdown plus a sanitized
// HTML fragment for preview.
type MarkdownRenderer struct {
	tmpl     *template.Template
	sanitize *bluemonday.Policy
}

// NewMarkdownRenderer constructs the default renderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		tmpl:     template.Must(template.New("section").Parse(sectionMarkdown)),
		sanitize: bluemonday.UGCPolicy(),
	}
}

// RenderSection fills the section template with the request data.
func (r *MarkdownRenderer) RenderSection(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return Result{}, fmt.Errorf("render %s: title is required", req.SectionKey)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, req); err != nil {
		return Result{}, fmt.Errorf("render %s: %w", req.SectionKey, err)
	}

	return Result{
		Content: buf.String(),
		HTML:    r.sanitize.Sanitize(htmlFragment(req)),
	}, nil
}

func htmlFragment(req Request) string {
	var b strings.Builder
	b.WriteString("<section>")
	b.WriteString("<h1>" + html.EscapeString(req.Title) + "</h1>")
	if req.Description != "" {
		b.WriteString("<p>" + html.EscapeString(req.Description) + "</p>")
	}
	b.WriteString("<p><strong>Proyecto:</strong> " + html.EscapeString(req.ProjectName) + "</p>")
	b.WriteString("<p><strong>Región:</strong> " + html.EscapeString(req.Region) + "</p>")
	b.WriteString("<h2>Antecedentes</h2>")
	if len(req.Inputs) == 0 {
		b.WriteString("<p>Esta sección no requiere antecedentes adicionales.</p>")
	} else {
		b.WriteString("<ul>")
		for _, in := range req.Inputs {
			b.WriteString("<li><strong>" + html.EscapeString(in.Label) + ":</strong> " + html.EscapeString(in.Value) + "</li>")
		}
		b.WriteString("</ul>")
	}
	b.WriteString("</section>")
	return b.String()
}

var _ Renderer = (*MarkdownRenderer)(nil)
