package web

import (
	"embed"
	"html/template"
	"io"
	"sync"
	"time"

	"github.com/matst80/logrelay/internal/obs"
)

//go:embed templates/*.html
var tmplFS embed.FS

var (
	once sync.Once
	tmpl *template.Template
)

func load() {
	tmpl = template.Must(template.New("root").ParseFS(tmplFS, "templates/*.html"))
}

// Render writes the named template (which can rely on base) to w with data enriched by Now.
func Render(w io.Writer, name string, data map[string]any) error {
	once.Do(load)
	if data == nil {
		data = map[string]any{}
	}
	data["Now"] = time.Now().Format(time.RFC822)
	if tmpl.Lookup(name) == nil {
		obs.Error("web.template", obs.Fields{"name": name, "err": "not defined"})
		return tmpl.ExecuteTemplate(w, "base", data)
	}
	return tmpl.ExecuteTemplate(w, name, data)
}
