package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the browser client to call the API. identityHeader is added
// to the allowed request headers so the upstream user id can be forwarded.
func CORS(allowedOrigins []string, allowCredentials bool, identityHeader string) func(http.Handler) http.Handler {
	headers := []string{"Authorization", "Content-Type"}
	if identityHeader != "" {
		headers = append(headers, identityHeader)
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   headers,
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	})
}
