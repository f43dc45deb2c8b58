package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterOptions struct {
	Logger     *slog.Logger
	CORSMaxAge int
}

func NewRouter(apiHandler *APIHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// Any origin may call the API.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           opts.CORSMaxAge,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", apiHandler.HealthHandler)

		r.Get("/products", apiHandler.ListProductsHandler)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", apiHandler.RegisterHandler)
			r.Post("/login", apiHandler.LoginHandler)
		})
		r.Get("/check-users", apiHandler.CheckUsersHandler)

		r.Route("/chat", func(r chi.Router) {
			r.Get("/history", apiHandler.ChatHistoryHandler)
			r.Post("/message", apiHandler.SaveMessageHandler)
		})
	})

	return r
}
