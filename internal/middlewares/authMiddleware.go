package middlewares

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"codequest/internal/utils"
)

// NewAuthMiddleware accepts an access token from the accessToken cookie or an
// "Authorization: Bearer" header and stores the user id in the request context.
func NewAuthMiddleware(tokens *utils.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := accessTokenFrom(r)
			if tokenString == "" {
				utils.HandleError(w, utils.Unauthorized("Missing access token"))
				return
			}

			claims, err := tokens.ParseAccessToken(tokenString)
			if err != nil {
				hlog.FromRequest(r).Debug().Err(err).Msg("Rejected access token")
				utils.HandleError(w, utils.Unauthorized("Invalid or expired access token"))
				return
			}

			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("user_id", claims.ID)
			})
			ctx := utils.WithUserID(r.Context(), claims.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accessTokenFrom(r *http.Request) string {
	if c, err := r.Cookie(utils.AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
