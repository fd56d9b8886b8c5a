package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/magolabs/aimaster/internal/actuar"
	"github.com/magolabs/aimaster/internal/auth"
	"github.com/magolabs/aimaster/internal/handler"
	"github.com/magolabs/aimaster/internal/middleware"
	"github.com/magolabs/aimaster/internal/store"
	ws "github.com/magolabs/aimaster/internal/websocket"
)

// Config carries the server-level settings wired in from main.
type Config struct {
	StaticDir string
	BaseURL   string
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	authH       *handler.AuthHandler
	deckH       *handler.DeckHandler
	routineH    *handler.RoutineHandler
	actuarH     *handler.ActuarHandler
	tokens      auth.TokenStore
	userStore   *store.UserStore
	rateLimiter *middleware.RateLimiter
	staticDir   string
	logger      *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	tokens := auth.NewMemoryTokenStore()

	userStore := store.NewUserStore(db)
	deckStore := store.NewDeckStore(db)
	routineStore := store.NewRoutineStore(db)
	actuarStore := store.NewActuarStore(db)

	publisher := actuar.NewPublisher(cfg.StaticDir, cfg.BaseURL+"/static")

	return &Server{
		db:          db,
		hub:         hub,
		authH:       handler.NewAuthHandler(userStore, routineStore, tokens, logger.With("component", "auth")),
		deckH:       handler.NewDeckHandler(deckStore, hub, logger.With("component", "deck")),
		routineH:    handler.NewRoutineHandler(routineStore, deckStore, hub, logger.With("component", "routine")),
		actuarH:     handler.NewActuarHandler(actuarStore, publisher, hub, logger.With("component", "actuar")),
		tokens:      tokens,
		userStore:   userStore,
		rateLimiter: middleware.NewRateLimiter(),
		staticDir:   cfg.StaticDir,
		logger:      logger,
	}
}

// Tokens returns the token store, used by tests to mint sessions directly.
func (s *Server) Tokens() auth.TokenStore {
	return s.tokens
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /api/config", handler.AppConfig)
	outerMux.HandleFunc("GET /api/actuar/{username}", s.actuarH.Get)
	outerMux.HandleFunc("GET /api/health", s.healthHandler)
	outerMux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir))))

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.tokens, s.userStore)
	outerMux.Handle("/api/", authMiddleware(protectedMux))

	// Apply request logging middleware
	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Account routes
	mux.HandleFunc("GET /api/user", s.authH.User)
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/user/credits", s.authH.GetCredits)
	mux.HandleFunc("POST /api/user/credits", s.authH.AddCredits)

	// Deck routes
	mux.HandleFunc("GET /api/decks", s.deckH.List)
	mux.HandleFunc("POST /api/decks", s.deckH.Create)
	mux.HandleFunc("GET /api/decks/{id}", s.deckH.Get)
	mux.HandleFunc("PUT /api/decks/{id}", s.deckH.Update)
	mux.HandleFunc("DELETE /api/decks/{id}", s.deckH.Delete)

	// Routine routes
	mux.HandleFunc("GET /api/routines", s.routineH.List)
	mux.HandleFunc("POST /api/routines", s.routineH.Create)
	mux.HandleFunc("GET /api/routines/{id}", s.routineH.Get)
	mux.HandleFunc("PUT /api/routines/{id}", s.routineH.Update)
	mux.HandleFunc("DELETE /api/routines/{id}", s.routineH.Delete)

	// Broadcast text
	mux.HandleFunc("POST /api/actuar", s.actuarH.Post)

	// Live sync
	mux.HandleFunc("GET /api/ws", ws.Handle(s.hub, s.logger.With("component", "websocket")))
}
