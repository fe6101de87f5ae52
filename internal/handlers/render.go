package handlers

import (
	"bytes"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/HammerMeetNail/combohub/internal/logging"
	"github.com/HammerMeetNail/combohub/internal/views"
)

// Renderer executes the page and fragment templates. Output is buffered so a
// template error never leaves a half-written page behind.
type Renderer struct {
	templates *template.Template
	logger    *logging.Logger
}

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	},
	"deleteFragment":   deleteFragment,
	"commentsFragment": commentsFragment,
}

func deleteFragment(d views.ComboDetail) DeleteFragment {
	frag := DeleteFragment{
		InFlight:   views.PresentDelete(true),
		FormAction: views.DeleteComboPath(d.Combo.ID),
	}
	if d.Delete != nil {
		frag.Control = *d.Delete
	}
	return frag
}

func commentsFragment(d views.ComboDetail) CommentsFragment {
	return CommentsFragment{ComboID: d.Combo.ID, SignedIn: d.SignedIn, List: d.Comments}
}

func NewRenderer(templatesDir string, logger *logging.Logger) (*Renderer, error) {
	templates, err := template.New("").Funcs(templateFuncs).ParseGlob(filepath.Join(templatesDir, "*.html"))
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Default
	}
	return &Renderer{templates: templates, logger: logger}, nil
}

type PageData struct {
	Title  string
	Viewer *ViewerSummary
	Error  string
	Data   interface{}
}

// ViewerSummary is the part of the viewer the layout shows.
type ViewerSummary struct {
	Name  string
	Image string
}

func newPageData(r *http.Request, title string, data interface{}) PageData {
	page := PageData{Title: title, Data: data, Error: r.URL.Query().Get("error")}
	if viewer := GetViewerFromContext(r.Context()); viewer != nil {
		page.Viewer = &ViewerSummary{Name: viewer.Name, Image: viewer.Image}
	}
	return page
}

func (rd *Renderer) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := rd.templates.ExecuteTemplate(&buf, name, data); err != nil {
		rd.logger.Error("Template render failed", map[string]interface{}{
			"template": name,
			"error":    err.Error(),
		})
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (rd *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, name, title string, data interface{}) {
	rd.render(w, status, name, newPageData(r, title, data))
}

func (rd *Renderer) Fragment(w http.ResponseWriter, status int, name string, data interface{}) {
	rd.render(w, status, name, data)
}

func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	if isFragmentRequest(r) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	rd.Page(w, r, http.StatusNotFound, "404.html", "Not Found", nil)
}

func (rd *Renderer) InternalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	rd.logger.Error(msg, map[string]interface{}{
		"error":  err.Error(),
		"method": r.Method,
		"path":   r.URL.Path,
	})
	if isFragmentRequest(r) {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	rd.Page(w, r, http.StatusInternalServerError, "500.html", "Something went wrong", nil)
}
