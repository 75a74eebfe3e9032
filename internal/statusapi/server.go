// Package statusapi exposes the client over a local HTTP API: a state
// snapshot, game history and endpoints that enqueue user intents.
package statusapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/levanminh04/Network-Programming/internal/actor"
	"github.com/levanminh04/Network-Programming/internal/session"
	"github.com/levanminh04/Network-Programming/internal/storage"
	"github.com/levanminh04/Network-Programming/pkg/logger"
)

// Backend is the client the API drives. *session.Manager implements it.
type Backend interface {
	Snapshot() session.Snapshot
	Connection() string
	Dispatch(in actor.Input) error
	NowMs() int64
	RecentGames(ctx context.Context, limit int) ([]storage.GameRecord, error)
}

var _ Backend = (*session.Manager)(nil)

// Options configures the API.
type Options struct {
	// Local enables gin debug mode.
	Local bool
	// AllowedOrigins for CORS. Empty allows localhost only.
	AllowedOrigins []string
}

// Server is the HTTP front of a Backend.
type Server struct {
	backend Backend
	engine  *gin.Engine
	log     *logger.Logger
}

// New builds the router.
func New(backend Backend, opts Options) *Server {
	if opts.Local {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost", "http://localhost:*", "http://127.0.0.1", "http://127.0.0.1:*"}
	}

	s := &Server{backend: backend, engine: gin.New(), log: logger.Named("statusapi")}
	s.engine.Use(gin.Recovery())
	s.engine.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowWildcard:    true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           time.Hour,
	}))
	s.engine.Use(s.logging())
	s.routes()
	return s
}

// Handler returns the http.Handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
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

func (s *Server) logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}
		c.Next()
		s.log.Debugf("[%s] %s - %d (%v)", c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
