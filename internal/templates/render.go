// Package templates renders the page shell and the map fragments.
package templates

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"strconv"
	"sync"
)

// ErrUnknownTemplate is returned when no template has the requested name.
var ErrUnknownTemplate = errors.New("unknown template")

var funcMap = template.FuncMap{
	// dict builds a map from key/value pairs for nested templates
	"dict": func(values ...any) map[string]any {
		if len(values)%2 != 0 {
			return nil
		}
		m := make(map[string]any, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			if key, ok := values[i].(string); ok {
				m[key] = values[i+1]
			}
		}
		return m
	},
	// num prints a float without trailing zeros
	"num": func(f float64) string {
		return strconv.FormatFloat(f, 'f', -1, 64)
	},
	"half": func(n int) float64 {
		return float64(n) / 2
	},
	"neg": func(f float64) float64 {
		return -f
	},
}

// Renderer executes named templates parsed from an fs.FS. The FS is either
// the embedded web assets or os.DirFS over a web directory being edited.
type Renderer struct {
	fsys     fs.FS
	patterns []string

	mu   sync.RWMutex
	tmpl *template.Template
}

// NewFS parses every file in fsys matching patterns.
func NewFS(fsys fs.FS, patterns ...string) (*Renderer, error) {
	r := &Renderer{fsys: fsys, patterns: patterns}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-parses the templates. On failure the previous set stays live.
func (r *Renderer) Reload() error {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(r.fsys, r.patterns...)
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	r.mu.Lock()
	r.tmpl = tmpl
	r.mu.Unlock()
	return nil
}

// Render executes template name into a string.
func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToBuffer(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToBuffer executes template name into buf.
func (r *Renderer) RenderToBuffer(buf *bytes.Buffer, name string, data any) error {
	r.mu.RLock()
	t := r.tmpl.Lookup(name)
	r.mu.RUnlock()
	if t == nil {
		return fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	return t.Execute(buf, data)
}
