package middleware

import (
	"net/http"
	"runtime/debug"

	"pouch/internal/handler"
	"pouch/internal/logging"
)

// Recovery converts a handler panic into a 500 response. ErrAbortHandler
// is re-raised; net/http uses it to abort the connection deliberately.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}

				log := logging.FromContext(r.Context())
				log.Error("panic recovered",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				handler.RespondAppError(w, handler.ErrInternalError, nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
