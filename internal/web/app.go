// Package web は sigloc serve の画面（HTML テンプレートと静的アセット）を埋め込みで配信します。
package web

import (
	_ "embed"
	"html/template"
	"net/http"
	"strings"
	"sync"
)

const (
	stylesPath = "/assets/styles.css"
	scriptPath = "/assets/ui.js"
)

var (
	//go:embed templates/index.html
	indexHTML string
	indexOnce sync.Once
	indexTmpl *template.Template

	//go:embed assets/styles.css
	stylesCSS string

	//go:embed assets/ui.js
	scriptJS string
)

type indexData struct {
	Title      string
	StylesPath string
	ScriptPath string
}

// Register attaches handlers for the web UI assets to the provided mux.
func Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", indexHandler)
	mux.HandleFunc("GET "+stylesPath, stylesHandler)
	mux.HandleFunc("GET "+scriptPath, scriptHandler)
}

// Script は埋め込まれた ui.js を返します（テストで JS を評価するため）。
func Script() string { return scriptJS }

// IndexHTML renders the page with default asset paths.
func IndexHTML() (string, error) {
	var b strings.Builder
	if err := loadTemplate().Execute(&b, defaultIndexData()); err != nil {
		return "", err
	}
	return b.String(), nil
}

func defaultIndexData() indexData {
	return indexData{Title: "sigloc", StylesPath: stylesPath, ScriptPath: scriptPath}
}

func indexHandler(w http.ResponseWriter, r *http.Request) {
	tmpl := loadTemplate()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'self'; script-src 'self'; img-src 'self'; connect-src 'self'; form-action 'self'; base-uri 'none'")
	if err := tmpl.Execute(w, defaultIndexData()); err != nil {
		http.Error(w, "template rendering failed", http.StatusInternalServerError)
	}
}

func stylesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(stylesCSS))
}

func scriptHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(scriptJS))
}

func loadTemplate() *template.Template {
	indexOnce.Do(func() {
		indexTmpl = template.Must(template.New("index").Parse(indexHTML))
	})
	return indexTmpl
}
