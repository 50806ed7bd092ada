package response

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin/render"
)

const (
	layoutEntry    = "layout"
	contentEntry   = "content"
	fragmentMarker = "#"
)

// Fragment names the content-only rendering of a page.
func Fragment(page string) string {
	return page + fragmentMarker + contentEntry
}

// Templates is a gin HTMLRender holding one template set per page. Every set
// carries the shared layout and partials, so each page defines its own
// "content".
type Templates struct {
	pages map[string]*template.Template
}

// LoadTemplates parses layouts/*.html and partials/*.html once and clones them
// for every file below pages/. A page is addressed by its path without the
// extension, e.g. "internships/list". Partials are also addressable on their
// own as "partials/<name>".
func LoadTemplates(fsys fs.FS, funcs template.FuncMap) (*Templates, error) {
	shared := template.New("").Funcs(funcs)
	for _, pattern := range []string{"layouts/*.html", "partials/*.html"} {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			continue
		}
		if shared, err = shared.ParseFS(fsys, matches...); err != nil {
			return nil, fmt.Errorf("parse %s: %w", pattern, err)
		}
	}

	out := &Templates{pages: map[string]*template.Template{}}
	err := fs.WalkDir(fsys, "pages", func(file string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(file) != ".html" {
			return err
		}
		clone, err := shared.Clone()
		if err != nil {
			return err
		}
		if _, err := clone.ParseFS(fsys, file); err != nil {
			return fmt.Errorf("parse %s: %w", file, err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(file, "pages/"), ".html")
		out.pages[name] = clone
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.pages["partials"] = shared
	return out, nil
}

// Has reports whether a page was loaded.
func (t *Templates) Has(page string) bool {
	_, ok := t.pages[page]
	return ok
}

// Instance implements render.HTMLRender.
//   - "internships/list"          layout with the page content
//   - "internships/list#content"  the content block only
//   - "partials/sector-select"    a shared partial
func (t *Templates) Instance(name string, data interface{}) render.Render {
	page, entry := name, layoutEntry
	if i := strings.Index(name, fragmentMarker); i >= 0 {
		page, entry = name[:i], name[i+1:]
	}
	if strings.HasPrefix(page, "partials/") {
		page, entry = "partials", strings.TrimPrefix(page, "partials/")
	}
	tmpl, ok := t.pages[page]
	if !ok || tmpl.Lookup(entry) == nil {
		return missingTemplate{name: name}
	}
	return render.HTML{Template: tmpl, Name: entry, Data: data}
}

type missingTemplate struct {
	name string
}

func (m missingTemplate) Render(w http.ResponseWriter) error {
	m.WriteContentType(w)
	return fmt.Errorf("template %q is not defined", m.name)
}

func (m missingTemplate) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if len(header["Content-Type"]) == 0 {
		header["Content-Type"] = []string{"text/html; charset=utf-8"}
	}
}
