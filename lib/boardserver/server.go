// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package boardserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/bureau-foundation/qaboard/lib/clock"
	"github.com/bureau-foundation/qaboard/lib/questionevent"
)

// Config configures a Server.
type Config struct {
	// TokenSecret signs access tokens. Required.
	TokenSecret string

	// TokenTTL is the access token lifetime. Zero means 30 minutes.
	TokenTTL time.Duration

	// AdminUsers are usernames that become admins on registration.
	AdminUsers []string

	// FrameFormat selects JSON text or CBOR binary push frames.
	FrameFormat questionevent.Format

	// AllowedOrigins lists CORS and WebSocket origins. Empty allows
	// any origin.
	AllowedOrigins []string

	// PasswordCost is the bcrypt cost. Zero means bcrypt.DefaultCost.
	PasswordCost int

	// Clock stamps questions and tokens. Nil uses the real clock.
	Clock clock.Clock

	// Logger is used for request and push logging. Nil uses
	// slog.Default().
	Logger *slog.Logger
}

// Server serves the Q&A API and push channel from memory.
type Server struct {
	board        *board
	hub          *hub
	tokens       tokenIssuer
	metrics      *metrics
	validate     *validator.Validate
	admins       map[string]bool
	passwordCost int
	clock        clock.Clock
	logger       *slog.Logger
	router       http.Handler
}

// New validates config and builds the router.
func New(config Config) (*Server, error) {
	if config.TokenSecret == "" {
		return nil, errors.New("boardserver: TokenSecret is required")
	}
	if config.TokenTTL == 0 {
		config.TokenTTL = 30 * time.Minute
	}
	if config.PasswordCost == 0 {
		config.PasswordCost = bcrypt.DefaultCost
	}
	if config.PasswordCost < bcrypt.MinCost || config.PasswordCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("boardserver: bcrypt cost %d out of range", config.PasswordCost)
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	origins := config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	collector := newMetrics()
	pushHub := newHub(config.FrameFormat, origins, collector, config.Logger)
	server := &Server{
		board:        newBoard(pushHub.broadcast),
		hub:          pushHub,
		tokens:       tokenIssuer{secret: []byte(config.TokenSecret), ttl: config.TokenTTL, clock: config.Clock},
		metrics:      collector,
		validate:     newValidator(),
		admins:       make(map[string]bool, len(config.AdminUsers)),
		passwordCost: config.PasswordCost,
		clock:        config.Clock,
		logger:       config.Logger,
	}
	for _, username := range config.AdminUsers {
		server.admins[username] = true
	}
	server.router = server.routes(origins)
	return server, nil
}

func (server *Server) routes(origins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(server.metrics.instrument)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/", server.handleRoot)
	router.Get("/health", server.handleHealth)
	router.Method(http.MethodGet, "/metrics", server.metrics.handler())
	router.Get("/ws", server.hub.serve)

	router.Route("/auth", func(router chi.Router) {
		router.Post("/register", server.handleRegister)
		router.Post("/login", server.handleLogin)
		router.Get("/me", server.handleMe)
	})

	router.Route("/questions", func(router chi.Router) {
		router.Use(compress)
		router.Get("/", server.handleListQuestions)
		router.Post("/", server.handleCreateQuestion)
		router.Route("/{id}", func(router chi.Router) {
			router.Post("/answer", server.handleAnswer)
			router.With(server.requireAdmin).Patch("/status", server.handleSetStatus)
			router.With(server.requireAdmin).Delete("/", server.handleDelete)
		})
	})

	router.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		writeError(writer, http.StatusNotFound, "Not Found")
	})
	router.MethodNotAllowed(func(writer http.ResponseWriter, request *http.Request) {
		writeError(writer, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return middleware.StripSlashes(router)
}

// Handler returns the HTTP handler for every route.
func (server *Server) Handler() http.Handler {
	return server.router
}

// PushClients returns the number of connected push clients.
func (server *Server) PushClients() int {
	return server.hub.clientCount()
}

// DisconnectPushClients closes every push connection while the server
// keeps accepting new ones. Clients see an abrupt close and reconnect.
func (server *Server) DisconnectPushClients() {
	server.hub.mutex.Lock()
	clients := make([]*pushClient, 0, len(server.hub.clients))
	for _, client := range server.hub.clients {
		clients = append(clients, client)
	}
	server.hub.mutex.Unlock()

	for _, client := range clients {
		server.hub.unregister(client)
	}
}

// Close disconnects every push client and refuses new ones. HTTP
// handlers keep working; use Serve's context to stop listening.
func (server *Server) Close() {
	server.hub.close()
}

// Serve accepts connections on listener until ctx is cancelled, then
// closes push clients and shuts the HTTP server down gracefully.
func (server *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           server.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()
	server.logger.Info("serving", "address", listener.Addr().String())

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("boardserver: %w", err)
	case <-ctx.Done():
	}

	server.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("boardserver: shutdown: %w", err)
	}
	return nil
}
