package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Message string `json:"message"`
}

// Messages shared by handlers and middleware.
const (
	MessageRouteNotFound  = "Ruta no encontrada."
	MessageInternalError  = "Error interno del servidor."
	MessageInvalidJSON    = "JSON inválido."
	MessagePayloadTooBig  = "Payload demasiado grande."
	MessageUnauthorized   = "No autorizado."
	MessageTooManyRequest = "Demasiadas solicitudes."
)

// RespondWithError sends a {message} error response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, ErrorResponse{Message: message})
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// RespondNoContent sends an empty 204 response
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// NotFoundHandler answers unmatched routes and methods
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	RespondWithError(w, http.StatusNotFound, MessageRouteNotFound)
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					logger.Error("Panic recovered",
						zap.Any("error", rec),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					message := MessageInternalError
					if err, ok := rec.(error); ok {
						message = err.Error()
					} else if s, ok := rec.(string); ok {
						message = s
					} else {
						message = fmt.Sprint(rec)
					}
					RespondWithError(w, http.StatusInternalServerError, message)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
