package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/clipsum/backend/internal/api/dto"
)

// Recovery converts panics into a generic 500 so internals never leak.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						"panic", rec,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(dto.ErrorEnvelope{
						Success: false,
						Error: dto.ErrorBody{
							Message: "Internal server error",
							Code:    "INTERNAL_SERVER_ERROR",
						},
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
