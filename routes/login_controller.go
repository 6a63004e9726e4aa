package routes

import (
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/mbolis/poll-creator/app"
	"github.com/mbolis/poll-creator/httpx"
	"github.com/mbolis/poll-creator/log"
)

var reRefresh = regexp.MustCompile(`(?i)^refresh\s+(.+)`)

// Login trades HTTP basic credentials for an access and refresh token pair.
func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, r, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		form := url.Values{
			"grant_type": {"password"},
			"username":   {user},
			"password":   {pass},
		}.Encode()
		r.Body = io.NopCloser(strings.NewReader(form))
		r.Header.Set("content-type", "application/x-www-form-urlencoded")
		r.Header.Set("content-length", strconv.Itoa(len(form)))
		app.UserCredentials(w, r)
	}
}

// Refresh expects "Authorization: Refresh <token>" and issues a new pair.
func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match := reRefresh.FindStringSubmatch(r.Header.Get("authorization"))
		if match == nil {
			httpx.LogStatus(w, r, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}

		form := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {strings.TrimSpace(match[1])},
		}.Encode()
		req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, "/", strings.NewReader(form))
		if err != nil {
			httpx.LogInternalError(w, r, "refresh.new_request", err)
			return
		}
		req.Header.Set("content-type", "application/x-www-form-urlencoded")
		req.Header.Set("content-length", strconv.Itoa(len(form)))

		resp := httpx.NewResponseBuffer()
		app.UserCredentials(resp, req)
		if resp.Status() != http.StatusOK {
			log.Debugf("refresh.token: rejected with status %d", resp.Status())
		}
		resp.Flush(w)
	}
}
