package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phyten/sigloc/internal/engine"
	engineopts "github.com/phyten/sigloc/internal/engine/opts"
	applog "github.com/phyten/sigloc/internal/log"
	"github.com/phyten/sigloc/internal/model"
)

func newTestServer(t *testing.T, repo string) (*Server, http.Handler) {
	t.Helper()
	def := engineopts.Defaults(repo)
	def.NoGit = true
	s := New(Config{Defaults: def})
	return s, s.Handler()
}

func postClassify(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/classify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestClassify(t *testing.T) {
	_, h := newTestServer(t, t.TempDir())
	rr := postClassify(t, h, `{"lang":"C","source":"\n int xyz() {\n   auto x = 10;\n }\n  \n"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res ClassifyResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, "c", res.Lang)
	assert.Equal(t, "code", res.Policy)
	assert.Equal(t, []int{1, 2, 3}, res.Indices)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, 5, res.Counts.Lines)
	require.Len(t, res.Lines, 5)
	assert.Equal(t, model.LineCode, res.Lines[1].Kind)
	assert.NotEmpty(t, rr.Header().Get(HeaderRequestID))
}

func TestClassifyStrictPolicy(t *testing.T) {
	_, h := newTestServer(t, t.TempDir())
	rr := postClassify(t, h, `{"lang":"go","policy":"strict","source":"func f() {\n\treturn\n}\n"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var res ClassifyResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, []int{0, 1}, res.Indices, "a lone closing brace is structural under strict")
}

func TestClassifyEmptySource(t *testing.T) {
	_, h := newTestServer(t, t.TempDir())
	rr := postClassify(t, h, `{"lang":"python","source":""}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"indices":[]`)
	assert.Contains(t, rr.Body.String(), `"lines":[]`)
}

func TestClassifyErrors(t *testing.T) {
	_, h := newTestServer(t, t.TempDir())
	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"unsupported language", `{"lang":"cobol","source":"x"}`, http.StatusBadRequest, "unsupported_language"},
		{"bad policy", `{"lang":"c","source":"x","policy":"loose"}`, http.StatusBadRequest, "invalid_policy"},
		{"malformed json", `{"lang":`, http.StatusBadRequest, "bad_request"},
		{"unknown field", `{"lang":"c","src":"x"}`, http.StatusBadRequest, "bad_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := postClassify(t, h, tc.body)
			require.Equal(t, tc.status, rr.Code, rr.Body.String())
			var body errorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestClassifyBodyLimit(t *testing.T) {
	s := New(Config{MaxBodyBytes: 32})
	rr := postClassify(t, s.Handler(), `{"lang":"c","source":"`+strings.Repeat("x", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestClassifyMethodNotAllowed(t *testing.T) {
	_, h := newTestServer(t, t.TempDir())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/classify", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestLanguages(t *testing.T) {
	_, h := newTestServer(t, t.TempDir())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/languages", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Languages []languageInfo `json:"languages"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	names := make([]string, 0, len(body.Languages))
	for _, l := range body.Languages {
		names = append(names, l.Name)
		if l.Name == "c" {
			assert.Contains(t, l.BlockComments, "/* */")
		}
	}
	assert.Contains(t, names, "python")
	assert.Contains(t, names, "rust")
}

func writeRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"main.go":     "package main\n\n// <script>alert(1)</script>\nfunc main() {}\n",
		"lib/util.py": "# only a comment\n",
		"README":      "text\n",
	}
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return root
}

func TestScan(t *testing.T) {
	_, h := newTestServer(t, writeRepo(t))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/scan?with_indices=1&detect_langs=go", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res engine.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Len(t, res.Files, 1)
	assert.Equal(t, "main.go", res.Files[0].File)
	assert.Equal(t, []int{0, 3}, res.Files[0].Indices)
	assert.True(t, res.HasIndices)
}

func TestScanIgnoresRepoQuery(t *testing.T) {
	_, h := newTestServer(t, writeRepo(t))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/scan?repo=/etc", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var res engine.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, 2, res.FileCount)
}

func TestScanBadQuery(t *testing.T) {
	_, h := newTestServer(t, writeRepo(t))
	for _, q := range []string{"jobs=0", "policy=loose", "lang=cobol", "path_regex=("} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/scan?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
}

func TestScanStreamEmitsProgressAndResult(t *testing.T) {
	_, h := newTestServer(t, writeRepo(t))
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/scan/stream", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream"))

	var events []string
	var result engine.Result
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	current := ""
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current = strings.TrimPrefix(line, "event: ")
			events = append(events, current)
		case strings.HasPrefix(line, "data: ") && current == "result":
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &result))
		}
	}
	require.NotEmpty(t, events)
	assert.Equal(t, "progress", events[0])
	assert.Equal(t, "result", events[len(events)-1])
	assert.Equal(t, 2, result.FileCount)
}

func TestMetrics(t *testing.T) {
	_, h := newTestServer(t, t.TempDir())
	postClassify(t, h, `{"lang":"c","source":"int a;\n// c\n"}`)
	postClassify(t, h, `{"lang":"cobol","source":"x"}`)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `sigloc_classify_requests_total{lang="c",status="ok"} 1`)
	assert.Contains(t, body, `sigloc_classify_requests_total{lang="unsupported",status="unsupported_language"} 1`)
	assert.Contains(t, body, `sigloc_classified_lines_total{kind="code"} 1`)
	assert.Contains(t, body, `sigloc_classified_lines_total{kind="comment"} 1`)
	assert.Contains(t, body, "sigloc_classify_duration_seconds_count 1")
}

func TestRequestIDPropagation(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(&applog.Config{Level: "debug", Format: applog.FormatJSON, Output: &buf})
	s := New(Config{Logger: logger})
	h := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/languages", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "req-123", rr.Header().Get(HeaderRequestID))
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)

	req = httptest.NewRequest(http.MethodGet, "/api/languages", nil)
	req.Header.Set(HeaderRequestID, "bad id with spaces")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Len(t, rr.Header().Get(HeaderRequestID), 36, "invalid ids are replaced by a UUID")
}

func TestListenAndServeShutsDown(t *testing.T) {
	s := New(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0", ready) }()

	addr := <-ready
	resp, err := http.Get("http://" + addr + "/api/languages")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
