// Package httpserver exposes the Foodgram REST API over chi.
package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/and161185/foodgram/internal/convert"
	"github.com/and161185/foodgram/internal/service"
)

// Services bundles the application services the handlers call.
type Services struct {
	Auth     service.AuthService
	Users    service.UserService
	Catalog  service.CatalogService
	Recipes  service.RecipeService
	Marks    service.MarkService
	Shopping service.ShoppingService
}

// Options tune the HTTP surface.
type Options struct {
	CORSOrigins []string
	RateLimit   int // requests per minute per client, 0 disables
	PageSize    int
	MaxPageSize int
	ImageURL    convert.URLFunc
	// MediaDir is served under MediaPath when both are set (local image storage).
	MediaDir  string
	MediaPath string
}

// Server wires services into HTTP handlers.
type Server struct {
	svc    Services
	opts   Options
	log    *zap.Logger
	router chi.Router
}

// New constructs the server and its routes.
func New(svc Services, opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 6
	}
	if opts.MaxPageSize < opts.PageSize {
		opts.MaxPageSize = opts.PageSize
	}
	if opts.ImageURL == nil {
		opts.ImageURL = func(key string) string { return key }
	}
	s := &Server{svc: svc, opts: opts, log: log}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.logging)
	r.Use(s.recoverer)
	r.Use(instrument)
	r.Use(s.cors())
	r.Use(chimiddleware.StripSlashes)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	if s.opts.MediaDir != "" && strings.HasPrefix(s.opts.MediaPath, "/") {
		prefix := "/" + strings.Trim(s.opts.MediaPath, "/") + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(s.opts.MediaDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimit())
		r.Use(s.authenticate)

		r.Route("/auth/token", func(r chi.Router) {
			r.Post("/login", s.login)
			r.With(s.requireAuth).Post("/logout", s.logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.listUsers)
			r.Post("/", s.register)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Get("/me", s.me)
				r.Post("/set_password", s.setPassword)
				r.Get("/subscriptions", s.subscriptions)
				r.Get("/{id}", s.getUser)
				r.Post("/{id}/subscribe", s.subscribe)
				r.Delete("/{id}/subscribe", s.unsubscribe)
			})
		})

		r.Get("/tags", s.listTags)
		r.Get("/tags/{id}", s.getTag)
		r.Get("/ingredients", s.listIngredients)
		r.Get("/ingredients/{id}", s.getIngredient)

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", s.listRecipes)
			r.Get("/{id}", s.getRecipe)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/", s.createRecipe)
				r.Get("/download_shopping_cart", s.downloadShoppingCart)
				r.Put("/{id}", s.updateRecipe)
				r.Patch("/{id}", s.updateRecipe)
				r.Delete("/{id}", s.deleteRecipe)
				r.Post("/{id}/favorite", s.addFavorite)
				r.Delete("/{id}/favorite", s.removeFavorite)
				r.Post("/{id}/shopping_cart", s.addToCart)
				r.Delete("/{id}/shopping_cart", s.removeFromCart)
			})
		})
	})
	return r
}
