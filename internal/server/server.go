package server

import (
	"context"
	"net/http"

	"classbuzz/internal/config"
	"classbuzz/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

type Server struct {
	cfg        config.Config
	log        zerolog.Logger
	clock      clockwork.Clock
	ws         *wsHub
	dispatcher *session.Dispatcher
	api        *gin.Engine
}

func New(cfg config.Config, logger zerolog.Logger, clock clockwork.Clock) *Server {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	hub := newWSHub(logger)
	s := &Server{
		cfg:        cfg,
		log:        logger,
		clock:      clock,
		ws:         hub,
		dispatcher: session.NewDispatcher(session.New(), hub, cfg.InboxSize, logger),
	}
	s.api = s.apiRoutes()
	return s
}

// Run processes session events until ctx is cancelled. Handler only accepts
// work while Run is active.
func (s *Server) Run(ctx context.Context) {
	s.dispatcher.Run(ctx)
	s.ws.CloseAll()
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleStudentView)
	mux.HandleFunc("GET /host", s.handleHostView)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	mux.HandleFunc("GET /qr", s.handleQR)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /api/", s.api)
	mux.Handle("GET /", http.FileServer(http.Dir(s.cfg.StaticDir)))
	return cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}).Handler(mux)
}

func (s *Server) originAllowed(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
