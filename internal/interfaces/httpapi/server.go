package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"cryptofeed/internal/application/service"
)

type RouterDeps struct {
	Snapshots *service.SnapshotService
	// Stream serves GET /ws/crypto when set.
	Stream      http.Handler
	CORSOrigins []string
}

// NewRouter builds the public HTTP surface.
func NewRouter(deps RouterDeps) http.Handler {
	h := NewCryptoHandler(deps.Snapshots)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/crypto", h.List)
	mux.HandleFunc("GET /healthz", h.Health)
	if deps.Stream != nil {
		mux.Handle("GET /ws/crypto", deps.Stream)
	}

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	})

	return withAccessLog(c.Handler(mux))
}

type Server struct {
	srv *http.Server
}

func NewServer(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start blocks serving requests until Shutdown.
func (s *Server) Start() error {
	log.Info().Str("addr", s.srv.Addr).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
