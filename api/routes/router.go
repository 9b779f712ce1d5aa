package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mfigueroa/showroom-backend/api/controllers"
	"github.com/mfigueroa/showroom-backend/api/middleware"
	authsvc "github.com/mfigueroa/showroom-backend/internal/auth"
	"github.com/mfigueroa/showroom-backend/pkg/auth/session"
	"github.com/mfigueroa/showroom-backend/pkg/config"
	"github.com/mfigueroa/showroom-backend/pkg/logger"
)

// Params bundles everything the router mounts.
type Params struct {
	Config         *config.Config
	Logger         *logger.Logger
	SessionChecker session.AccessSessionChecker
	AuthService    authsvc.Service
	ProductService controllers.ProductService
	Dependencies   map[string]controllers.Pinger
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.CORS(),
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.Dependencies, logg))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	// Public gallery reads.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(p.ProductService, logg))
		r.Get("/{productId}", controllers.GetProduct(p.ProductService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/auth/login", controllers.AdminLogin(p.AuthService, logg))
		r.Post("/auth/refresh", controllers.AdminRefresh(p.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))

			r.Get("/ping", controllers.AdminPing())
			r.Post("/auth/logout", controllers.AdminLogout(p.AuthService, logg))

			maxUpload := cfg.Media.MaxUploadBytes()
			r.Post("/products", controllers.AdminCreateProduct(p.ProductService, maxUpload, logg))
			r.Patch("/products/{productId}", controllers.AdminUpdateProduct(p.ProductService, maxUpload, logg))
			r.Delete("/products/{productId}", controllers.AdminDeleteProduct(p.ProductService, logg))
		})
	})

	return r
}
