package middlewares

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"

	"github.com/mbolis/poll-creator/httpx"
	"github.com/mbolis/poll-creator/log"
)

// Admin checks for a valid bearer token carrying the admin role.
func Admin(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), admin).Handler(next)
	}
}

func admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)
		roles := strings.Split(claims["roles"], ",")
		if !slices.Contains(roles, httpx.AdminRole) {
			httpx.LogStatus(w, r, http.StatusForbidden, log.DebugLevel, "auth.admin")
			return
		}

		next.ServeHTTP(w, r)
	})
}
