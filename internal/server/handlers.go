package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/phyten/sigloc"
	"github.com/phyten/sigloc/internal/engine"
	engineopts "github.com/phyten/sigloc/internal/engine/opts"
	"github.com/phyten/sigloc/internal/lang"
	applog "github.com/phyten/sigloc/internal/log"
	"github.com/phyten/sigloc/internal/model"
	"github.com/phyten/sigloc/internal/progress"
	"github.com/phyten/sigloc/internal/scan"
)

type ClassifyRequest struct {
	Lang   string `json:"lang"`
	Source string `json:"source"`
	Policy string `json:"policy,omitempty"`
}

type ClassifyResponse struct {
	Lang    string             `json:"lang"`
	Policy  string             `json:"policy"`
	Indices []int              `json:"indices"`
	Count   int                `json:"count"`
	Counts  model.Counts       `json:"counts"`
	Lines   []model.LineRecord `json:"lines"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type languageInfo struct {
	Name          string   `json:"name"`
	LineComments  []string `json:"line_comments,omitempty"`
	BlockComments []string `json:"block_comments,omitempty"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := applog.FromContext(r.Context(), s.log)

	var req ClassifyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.metrics.recordRequest("", "too_large")
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", "request body exceeds limit")
			return
		}
		s.metrics.recordRequest("", "bad_request")
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid request body: %v", err))
		return
	}

	l := lang.Parse(req.Lang)
	if !s.registry.Supports(l) {
		s.metrics.recordRequest("unsupported", "unsupported_language")
		err := &lang.UnsupportedLanguageError{Name: req.Lang}
		writeError(w, http.StatusBadRequest, "unsupported_language", err.Error())
		return
	}
	policy, err := scan.ParsePolicy(req.Policy)
	if err != nil {
		s.metrics.recordRequest(string(l), "invalid_policy")
		writeError(w, http.StatusBadRequest, "invalid_policy", err.Error())
		return
	}

	records, err := sigloc.Classify(l, req.Source, sigloc.WithPolicy(policy), sigloc.WithRegistry(s.registry))
	if err != nil {
		s.metrics.recordRequest(string(l), "error")
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	indices := scan.Indices(records)
	counts := model.CountRecords(records)
	s.metrics.duration.Observe(time.Since(start).Seconds())
	s.metrics.recordCounts(counts)
	s.metrics.recordRequest(string(l), "ok")
	logger.Debug("classified", applog.LangKey, l, "lines", counts.Lines, "code", counts.Code)

	if records == nil {
		records = []model.LineRecord{}
	}
	writeJSON(w, http.StatusOK, ClassifyResponse{
		Lang:    string(l),
		Policy:  string(policy),
		Indices: indices,
		Count:   len(indices),
		Counts:  counts,
		Lines:   records,
	})
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	langs := s.registry.Languages()
	out := make([]languageInfo, 0, len(langs))
	for _, l := range langs {
		rule, err := s.registry.RulesFor(l)
		if err != nil {
			continue
		}
		info := languageInfo{Name: string(l), LineComments: rule.LineComments}
		for _, bc := range rule.BlockComments {
			info.BlockComments = append(info.BlockComments, bc.Start+" "+bc.End)
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, map[string]any{"languages": out})
}

// scanOptions はクエリを既定値に重ね、検証済みのオプションを返します。
func (s *Server) scanOptions(r *http.Request) (engine.Options, error) {
	opts, err := engineopts.ApplyWebQueryToOptions(s.defaults, r.URL.Query())
	if err != nil {
		return opts, err
	}
	if err := engineopts.NormalizeAndValidate(&opts); err != nil {
		return opts, err
	}
	opts.Logger = applog.FromContext(r.Context(), s.log)
	opts.Progress = false
	return opts, nil
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	opts, err := s.scanOptions(r)
	if err != nil {
		s.metrics.scans.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	res, err := engine.Run(r.Context(), opts)
	if err != nil {
		s.metrics.scans.WithLabelValues("error").Inc()
		writeError(w, http.StatusInternalServerError, "scan_failed", err.Error())
		return
	}
	s.metrics.scans.WithLabelValues("ok").Inc()
	s.metrics.recordCounts(res.Totals)
	writeJSON(w, http.StatusOK, res)
}

// handleScanStream は進捗を Server-Sent Events で流し、最後に result イベントで Result を送ります。
func (s *Server) handleScanStream(w http.ResponseWriter, r *http.Request) {
	opts, err := s.scanOptions(r)
	if err != nil {
		s.metrics.scans.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	var mu sync.Mutex
	send := func(event string, payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
	}
	opts.ProgressObserver = progress.ObserverFunc(func(snap progress.Snapshot) {
		send("progress", snap)
	})

	res, err := engine.Run(r.Context(), opts)
	if err != nil {
		s.metrics.scans.WithLabelValues("error").Inc()
		send("error", errorResponse{Error: err.Error(), Code: "scan_failed"})
		return
	}
	s.metrics.scans.WithLabelValues("ok").Inc()
	s.metrics.recordCounts(res.Totals)
	send("result", res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: strings.TrimSpace(msg), Code: code})
}
