// Package template renders the embedded browser UI.
package template

import (
	"html/template"
	"net/http"

	"hackaigc-api/internal/config"
	"hackaigc-api/web"
)

// PageData is what the index page template sees.
type PageData struct {
	APIKey  string
	BaseURL string
}

type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(web.TemplateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

// RenderIndex renders the chat cockpit page. The page embeds the master key
// and the request origin so its script can call straight back into this API.
func (r *Renderer) RenderIndex(w http.ResponseWriter, req *http.Request, cfg *config.Config) error {
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	data := &PageData{
		APIKey:  cfg.APIMasterKey,
		BaseURL: scheme + "://" + req.Host + "/v1",
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return r.templates.ExecuteTemplate(w, "index.html", data)
}
