package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/Kush-Singh-26/shutter/builder/config"
	"github.com/Kush-Singh-26/shutter/builder/run"
	"github.com/Kush-Singh-26/shutter/internal/watch"
)

// Options are the serve-only flags.
type Options struct {
	Host string
	Port string
	// BaseURLSet reports an explicit -baseurl; otherwise pages link to the
	// preview address.
	BaseURLSet bool
}

// builderFlags are passed through to config.Load.
var builderFlags = map[string]bool{
	"baseurl":  true,
	"compress": true,
	"drafts":   true,
	"verbose":  true,
	"config":   true,
}

// ParseFlags splits serve args into server options and the arguments the
// site config understands.
func ParseFlags(args []string) (Options, []string, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	host := fs.String("host", "localhost", "The host/IP to bind to")
	port := fs.String("port", "2604", "The port to listen on")

	// Builder flags, forwarded to config.Load
	_ = fs.String("baseurl", "", "Base URL override")
	_ = fs.Bool("compress", false, "Minify HTML, CSS and JS")
	_ = fs.Bool("drafts", false, "Render draft pages")
	_ = fs.Bool("verbose", false, "Debug logging")
	_ = fs.String("config", config.DefaultConfigFile, "Path to site config")

	if err := fs.Parse(args); err != nil {
		return Options{}, nil, err
	}

	opts := Options{Host: *host, Port: *port}
	var rest []string
	fs.Visit(func(f *flag.Flag) {
		if !builderFlags[f.Name] {
			return
		}
		if f.Name == "baseurl" {
			opts.BaseURLSet = true
		}
		rest = append(rest, "-"+f.Name+"="+f.Value.String())
	})
	return opts, rest, nil
}

// Server serves the built site from disk and pushes reload events.
type Server struct {
	dir    string
	hub    *Hub
	logger *slog.Logger
}

func New(dir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{dir: dir, hub: NewHub(), logger: logger}
}

// Hub returns the reload hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler routes /events to the hub and everything else to the output dir.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/events", s.hub)
	mux.HandleFunc("/", gzipHandler(s.serveFile))
	return mux
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	reqPath := normalizeRequestPath(r.URL.Path)

	fullPath, err := validatePath(s.dir, reqPath)
	if err != nil {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("403 - Forbidden: Invalid path"))
		return
	}

	info, err := os.Stat(fullPath)
	if err == nil && info.IsDir() {
		if !strings.HasSuffix(r.URL.Path, "/") {
			http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
			return
		}
		fullPath = filepath.Join(fullPath, "index.html")
		_, err = os.Stat(fullPath)
	}
	if err != nil {
		if os.IsNotExist(err) {
			s.notFound(w)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("500 - Internal Server Error"))
		return
	}

	w.Header().Set("Cache-Control", cacheControl(reqPath))
	if strings.HasSuffix(fullPath, ".html") {
		page, err := os.ReadFile(fullPath)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(injectReload(page))
		return
	}
	http.ServeFile(w, r, fullPath)
}

func (s *Server) notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if page, err := os.ReadFile(filepath.Join(s.dir, "404.html")); err == nil {
		_, _ = w.Write(injectReload(page))
		return
	}
	_, _ = w.Write([]byte("404 - Page Not Found"))
}

// gzipResponseWriter wraps the underlying ResponseWriter to enable Gzip compression
type gzipResponseWriter struct {
	io.Writer
	http.ResponseWriter
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w *gzipResponseWriter) WriteHeader(code int) {
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(code)
}

func gzipHandler(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next(w, r)
			return
		}
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		gz := gzip.NewWriter(w)
		defer func() { _ = gz.Close() }()
		next(&gzipResponseWriter{Writer: gz, ResponseWriter: w}, r)
	}
}

// Run builds the site, serves it and rebuilds on source changes until ctx
// is cancelled.
func Run(ctx context.Context, cfg *config.Config, opts Options, logger *slog.Logger) error {
	addr := net.JoinHostPort(opts.Host, opts.Port)
	config.SetDevMode(cfg, true)
	if !opts.BaseURLSet {
		cfg.BaseURL = "http://" + addr
	}

	b := run.NewBuilder(cfg, logger)
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("Failed to close build cache", "error", err)
		}
	}()
	if _, err := b.Build(ctx); err != nil {
		logger.Error("Initial build failed", "error", err)
	}

	srv := New(cfg.OutputDir, logger)

	dirs := []string{cfg.ContentDir, cfg.IncludesDir}
	for src := range cfg.Passthrough {
		dirs = append(dirs, src)
	}
	w, err := watch.New(dirs, func(ev watch.Event) {
		fmt.Printf("\n⚡ Change detected in %s. Rebuilding...\n", ev.Name)
		cfg.BuildVersion = time.Now().Unix()
		if _, err := b.Build(ctx); err != nil {
			logger.Error("Rebuild failed", "error", err)
			return
		}
		srv.hub.Broadcast()
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.Debounce = cfg.Build.DebounceDuration
	w.Ignore = []string{cfg.OutputDir, cfg.CacheDir}
	go w.Start(ctx)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		fmt.Println("\n🛑 Shutting down server...")
		srv.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Build.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP server shutdown error", "error", err)
		}
	}()

	fmt.Printf("🌍 Serving on http://%s\n", addr)
	if opts.Host == "0.0.0.0" {
		fmt.Println("   (Accessible on your local network)")
	}
	fmt.Println("   (Auto-reload enabled via /events)")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	fmt.Println("✅ Server stopped.")
	return nil
}
