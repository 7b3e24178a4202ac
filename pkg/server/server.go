package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pressxtohonk/pressxtohonk-bot/pkg/config"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = 8080
)

// Server hosts the webhook dispatcher plus a health probe. The dispatcher
// owns everything under "/" so platform callbacks can hit any path the
// endpoint URL was registered with.
type Server struct {
	addr    string
	handler http.Handler
	log     *slog.Logger
}

// New wires the dispatcher into an HTTP mux bound per server config.
func New(cfg config.ServerConfig, dispatcher http.Handler, log *slog.Logger) (*Server, error) {
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if log == nil {
		log = slog.Default()
	}

	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = defaultHost
	}

	port := cfg.Port
	if port <= 0 {
		port = defaultPort
	}

	srvLog := log.With("component", "server")

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
			srvLog.Error("Failed to write health response", "error", err)
		}
	})
	mux.Handle("/", dispatcher)

	return &Server{
		addr:    host + ":" + strconv.Itoa(port),
		handler: mux,
		log:     srvLog,
	}, nil
}

// Handler exposes the mux for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log.Info("Webhook server started", "address", s.addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start webhook server: %w", err)
	}

	return nil
}
