package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIndexHandlerSetsSecurityHeaders(t *testing.T) {
	mux := http.NewServeMux()
	Register(mux)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if csp := rr.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "script-src 'self'") {
		t.Fatalf("CSP missing script-src: %q", csp)
	}
	body := rr.Body.String()
	for _, want := range []string{`<script src="/assets/ui.js">`, `id="classify-form"`, `id="scan-form"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("index is missing %q", want)
		}
	}
}

func TestAssetsAreServed(t *testing.T) {
	mux := http.NewServeMux()
	Register(mux)
	cases := map[string]string{
		stylesPath: "text/css",
		scriptPath: "application/javascript",
	}
	for path, ct := range cases {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Header().Get("Content-Type"), ct) {
			t.Fatalf("%s: status=%d content-type=%q", path, rr.Code, rr.Header().Get("Content-Type"))
		}
		if rr.Body.Len() == 0 {
			t.Fatalf("%s: empty body", path)
		}
	}
}

func TestUnknownPathIsNotFound(t *testing.T) {
	mux := http.NewServeMux()
	Register(mux)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestIndexHTML(t *testing.T) {
	html, err := IndexHTML()
	if err != nil {
		t.Fatalf("IndexHTML: %v", err)
	}
	if !strings.Contains(html, "<title>sigloc</title>") {
		t.Fatalf("unexpected title: %s", html)
	}
}
