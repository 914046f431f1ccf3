// Package web holds the HTML templates, embedded into the binary.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"inkwell/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

//go:embed templates
var files embed.FS

const layout = "layouts/base.html"

// FuncMap returns the helpers available to every template. mediaURL resolves storage keys.
func FuncMap(siteName string, mediaURL func(key string) string) template.FuncMap {
	return template.FuncMap{
		"siteName": func() string { return siteName },
		"media":    mediaURL,
		"markdown": utils.RenderMarkdown,
		"plain":    utils.RenderPlain,
		"excerpt":  utils.Excerpt,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("January 2, 2006, 15:04")
		},
		"fieldError": func(errs map[string]string, field string) string {
			return errs[field]
		},
		"add": func(a, b int) int {
			return a + b
		},
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
	}
}

// LoadTemplates builds one template set per page under views/, each wrapped in the base layout.
// Pages are registered by their path below views/, e.g. "post/list.html".
func LoadTemplates(funcs template.FuncMap) (multitemplate.Renderer, error) {
	fsys, err := fs.Sub(files, "templates")
	if err != nil {
		return nil, err
	}
	views, err := viewNames(fsys)
	if err != nil {
		return nil, err
	}

	r := multitemplate.NewRenderer()
	for _, name := range views {
		tmpl, err := template.New(path.Base(layout)).Funcs(funcs).
			ParseFS(fsys, layout, "includes/*.html", "views/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.Add(name, tmpl)
	}
	return r, nil
}

// LoadFragments parses the partials that are rendered into JSON responses rather than pages.
func LoadFragments(funcs template.FuncMap) (*template.Template, error) {
	fsys, err := fs.Sub(files, "templates")
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("fragments").Funcs(funcs).ParseFS(fsys, "includes/*.html", "fragments/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse fragments: %w", err)
	}
	return tmpl, nil
}

func viewNames(fsys fs.FS) ([]string, error) {
	var names []string
	err := fs.WalkDir(fsys, "views", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".html") {
			names = append(names, strings.TrimPrefix(p, "views/"))
		}
		return nil
	})
	return names, err
}
