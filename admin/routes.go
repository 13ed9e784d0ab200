package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// RegisterRoutes mounts the console routes on mux under the configured URL
// prefix using a chi router. The credential gate covers the console page
// only; the API endpoints rely on the write gate and network placement.
func RegisterRoutes(mux *http.ServeMux, handlers *Handlers) {
	r := chi.NewRouter()

	if handlers.config.HTTP.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		}))
	}

	r.With(BasicAuthMiddleware(handlers.config)).Get("/", handlers.ServeUI)

	r.Route("/api", func(r chi.Router) {
		r.Post("/connect", handlers.handleConnect)
		r.Post("/disconnect", handlers.handleDisconnect)
		r.Get("/status", handlers.handleStatus)
		r.Get("/tables", handlers.handleTables)
		r.Get("/table/{name}", handlers.handleTable)
		r.Post("/query", handlers.handleQuery)
	})

	prefix := "/" + handlers.config.HTTP.URLPrefix
	mux.Handle(prefix, http.RedirectHandler(prefix+"/", http.StatusMovedPermanently))
	mux.Handle(prefix+"/", http.StripPrefix(prefix, r))

	log.Info().Str("prefix", prefix).Msg("Console endpoints enabled")
}
