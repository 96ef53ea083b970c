package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/setgame/pkg/api/handlers"
	"github.com/cbodonnell/setgame/pkg/api/middleware"
	"github.com/cbodonnell/setgame/pkg/log"
	"github.com/cbodonnell/setgame/pkg/state"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port         int
	TLS          *TLSConfig
	AllowOrigin  string
	Game         handlers.Game
	StateManager state.StateManager
	Logger       *log.Logger
}

// NewAPIServer creates a new http.Server for controlling a running game
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: NewRouter(opts),
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

func NewRouter(opts NewAPIServerOptions) *mux.Router {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	allowOrigin := opts.AllowOrigin
	if allowOrigin == "" {
		allowOrigin = "*"
	}

	r := mux.NewRouter()
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewCORSMiddleware(allowOrigin))

	r.HandleFunc("/healthz", handlers.HandleHealthz()).Methods(http.MethodGet)
	r.HandleFunc("/game", handlers.HandleGetGame(opts.Game, opts.StateManager)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/game/terminate", handlers.HandleTerminate(opts.Game)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/players/{playerID:[0-9]+}/slots/{slot:[0-9]+}", handlers.HandleToggle(opts.Game)).Methods(http.MethodPost, http.MethodOptions)
	return r
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
