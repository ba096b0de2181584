package chi

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows browser clients from the given origins. No origins disables the middleware.
// Credit headers are exposed so browser callers can read the remaining balance.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", headerCreditsRemaining, headerCreditsLimit},
		MaxAge:         300,
	})
}
