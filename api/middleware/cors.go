package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/gatepasshq/gatepass-backend/pkg/config"
)

// CORS applies the allowed-origin policy derived from the client URLs.
// Credentials stay enabled because the session rides on a cookie.
func CORS(cfg config.ClientConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
