package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/briangreenhill/astroview/internal/http/httperr"
)

// RequireAdmin guards administrative endpoints with a static bearer token.
// With no token configured the endpoints answer 404 as if they did not exist.
func RequireAdmin(token string, errs httperr.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				errs.Write(w, r, httperr.NotFound("Cannot "+r.Method+" "+r.URL.Path))
				return
			}
			got, ok := bearer(r)
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="astroview-admin"`)
				errs.Write(w, r, &httperr.APIError{
					Kind:    "UnauthorizedError",
					Status:  http.StatusUnauthorized,
					Message: "Admin token required",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
