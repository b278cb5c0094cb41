package api

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/parcel-portal/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "layout.html"

// TemplateRenderer renders one page template inside the shared layout.
type TemplateRenderer struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"missing": func(fields []domain.DraftField, name string) bool {
		for _, f := range fields {
			if string(f) == name {
				return true
			}
		}
		return false
	},
}

// NewTemplateRenderer parses every page under templates/ together with the
// layout. Pages are addressed by file name without extension.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		base := path.Base(file)
		if base == layoutFile {
			continue
		}
		tmpl, err := template.New(base).Funcs(templateFuncs).ParseFS(templateFS, "templates/"+layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", base, err)
		}
		pages[base[:len(base)-len(path.Ext(base))]] = tmpl
	}
	return &TemplateRenderer{pages: pages}, nil
}

// Render satisfies echo.Renderer.
func (r *TemplateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}
