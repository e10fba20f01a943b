package middlewares

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/hlog"

	"codequest/internal/utils"
)

// Recoverer turns a panic into a 500 ApiError response.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				hlog.FromRequest(r).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("Recovered from panic")
				utils.HandleError(w, utils.NewApiError(http.StatusInternalServerError, "Internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
