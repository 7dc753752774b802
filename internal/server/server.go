package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gigscope/gigscope/internal/metrics"
	"github.com/gigscope/gigscope/internal/utils"
	"github.com/gigscope/gigscope/pkg/browse"
	"github.com/gigscope/gigscope/pkg/cart"
	"github.com/gigscope/gigscope/pkg/notify"
	"github.com/gigscope/gigscope/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
)

// CartFactory returns the cart collaborator acting for one request's session.
type CartFactory func(sess session.Provider) cart.Cart

type Server struct {
	Catalog  *browse.Catalog
	Cart     CartFactory
	Notifier notify.Notifier
	Metrics  *metrics.Metrics

	// Username and Password guard POST /api/refresh when set.
	Username string
	Password string

	CORSOrigins []string
	Now         func() time.Time
}

func New(c *browse.Catalog, crt CartFactory, n notify.Notifier, m *metrics.Metrics) *Server {
	if n == nil {
		n = notify.Discard
	}
	return &Server{
		Catalog:  c,
		Cart:     crt,
		Notifier: n,
		Metrics:  m,
		Now:      time.Now,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	origins := s.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := corslib.New(corslib.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	})
	r.Use(c.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/items", s.handleItems)
		r.Get("/items/{kind}/{id}", s.handleItem)
		r.Get("/categories", s.handleCategories)
		r.Get("/cities", s.handleCities)
		r.Post("/cart", s.handleCart)
		r.Post("/refresh", s.basicAuth(s.handleRefresh))
	})

	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}
	return r
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Log.Infof("Starting server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
