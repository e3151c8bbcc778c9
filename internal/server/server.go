// Package server は分類 API・ディレクトリ走査 API・Web UI・Prometheus メトリクスを提供します。
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phyten/sigloc/internal/engine"
	"github.com/phyten/sigloc/internal/lang"
	applog "github.com/phyten/sigloc/internal/log"
	"github.com/phyten/sigloc/internal/web"
)

// DefaultMaxBodyBytes は /api/classify が受け付けるリクエスト本文の上限です。
const DefaultMaxBodyBytes = 4 << 20

type Config struct {
	// Defaults は /api/scan の既定オプションです。RepoDir はクエリで変更できません。
	Defaults     engine.Options
	Registry     *lang.Registry
	Logger       *slog.Logger
	MaxBodyBytes int64
	// Metrics が nil なら専用の prometheus.Registry を作ります。
	Metrics *prometheus.Registry
}

type Server struct {
	defaults engine.Options
	registry *lang.Registry
	log      *slog.Logger
	maxBody  int64
	promReg  *prometheus.Registry
	metrics  *metrics
}

func New(cfg Config) *Server {
	s := &Server{
		defaults: cfg.Defaults,
		registry: cfg.Registry,
		log:      cfg.Logger,
		maxBody:  cfg.MaxBodyBytes,
		promReg:  cfg.Metrics,
	}
	if s.registry == nil {
		s.registry = lang.Default()
	}
	if s.defaults.Registry == nil {
		s.defaults.Registry = s.registry
	}
	if s.log == nil {
		s.log = applog.Discard()
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if s.promReg == nil {
		s.promReg = prometheus.NewRegistry()
	}
	s.metrics = newMetrics(s.promReg)
	return s
}

// Handler は全ルートを登録した http.Handler を返します。
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/classify", s.handleClassify)
	mux.HandleFunc("GET /api/languages", s.handleLanguages)
	mux.HandleFunc("GET /api/scan", s.handleScan)
	mux.HandleFunc("GET /api/scan/stream", s.handleScanStream)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.promReg, promhttp.HandlerOpts{}))
	web.Register(mux)
	return s.withRequestID(mux)
}

// ListenAndServe は ctx がキャンセルされるまで addr で待ち受け、終了時は 5 秒の猶予で停止します。
// ready が非 nil なら実際の待ち受けアドレス（":0" 指定時に便利）を一度だけ送ります。
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready chan<- string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.log.Info("listening", "addr", ln.Addr().String(), "repo", s.defaults.RepoDir)
	if ready != nil {
		ready <- ln.Addr().String()
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
