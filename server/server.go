package server

import (
	"bufio"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"swagger_interface_helper/config"
	"swagger_interface_helper/generator"
	"swagger_interface_helper/store"
)

//go:embed web/*
var embeddedStatic embed.FS

// HelperScriptPath 注入到上游页面中的脚本地址。
const HelperScriptPath = "/_helper/helper.js"

type Server struct {
	agent     *generator.Agent
	templates *store.Store
	cfg       config.Config
	sessions  *sessionStore
	client    *http.Client
	staticFS  http.Handler
	proxy     http.Handler
}

func New(agent *generator.Agent, templates *store.Store, cfg config.Config) (*Server, error) {
	if agent == nil {
		return nil, errors.New("generator agent required")
	}
	if templates == nil {
		return nil, errors.New("template store required")
	}

	sub, err := fs.Sub(embeddedStatic, "web")
	if err != nil {
		return nil, err
	}

	s := &Server{
		agent:     agent,
		templates: templates,
		cfg:       cfg,
		sessions:  newSessionStore(),
		client:    &http.Client{Timeout: 30 * time.Second},
		staticFS:  http.StripPrefix("/_helper/", http.FileServer(http.FS(sub))),
	}
	if cfg.Upstream != "" {
		target, err := url.Parse(cfg.Upstream)
		if err != nil {
			return nil, err
		}
		s.proxy = newInjectingProxy(target, HelperScriptPath)
	}
	return s, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/operations", s.handleOperations)
	mux.HandleFunc("GET /api/template", s.handleTemplateGet)
	mux.HandleFunc("PUT /api/template", s.handleTemplatePut)
	mux.HandleFunc("DELETE /api/template", s.handleTemplateDelete)

	mux.HandleFunc("POST /api/sessions", s.handleSessionCreate)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleSessionGet)
	mux.HandleFunc("PUT /api/sessions/{id}", s.handleSessionUpdate)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleSessionDelete)
	mux.HandleFunc("GET /api/sessions/{id}/panel", s.handleSessionPanel)
	mux.HandleFunc("POST /api/sessions/{id}/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/sessions/{id}/stream", s.handleStream)

	mux.Handle("GET /_helper/", s.staticFS)
	mux.HandleFunc("/", s.handleUpstream)
	return logMiddleware(cors(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Str("upstream", s.cfg.Upstream).Msg("helper server online")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.sessions.closeAll()
		return srv.Shutdown(shutCtx)
	})
	return g.Wait()
}

func (s *Server) handleUpstream(w http.ResponseWriter, r *http.Request) {
	if s.proxy == nil {
		jsonErr(w, "upstream not configured", http.StatusNotFound)
		return
	}
	s.proxy.ServeHTTP(w, r)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, v any) {
	jsonOK(w, v, http.StatusOK)
}

func jsonOK(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonErr(w http.ResponseWriter, msg string, code int) {
	jsonOK(w, map[string]string{"error": msg}, code)
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack keeps websocket upgrades working behind the middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		path := r.URL.Path
		if path == "" {
			path = "/"
		}
		log.Debug().
			Str("method", r.Method).
			Str("path", path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("http")
	})
}
