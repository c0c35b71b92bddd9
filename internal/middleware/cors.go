package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// CORSMiddleware applies permissive cross-origin headers to every response.
// Preflight requests are passed through so Preflight can answer them.
func CORSMiddleware() func(http.Handler) http.Handler {
	handler := cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:     []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials:   false,
		OptionsPassthrough: true,
		MaxAge:             86400,
	})

	return func(next http.Handler) http.Handler {
		withCORS := handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Same-origin and non-browser callers send no Origin header;
			// they still get the wildcard so every response carries it.
			if r.Header.Get("Origin") == "" {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
			withCORS.ServeHTTP(w, r)
		})
	}
}

// Preflight answers every OPTIONS request with 204 and no body.
func Preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			if w.Header().Get("Access-Control-Allow-Methods") == "" {
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// DefaultMiddlewareStack returns a stack of commonly used middleware
func DefaultMiddlewareStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Compress(5),
	}
}
