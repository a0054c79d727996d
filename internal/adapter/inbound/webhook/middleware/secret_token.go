package middleware

import (
	"crypto/hmac"
	"encoding/json"
	"net/http"

	"github.com/uxwatch/uxwatch/pkg/apierror"
)

// SecretToken returns middleware that validates the
// X-Telegram-Bot-Api-Secret-Token header against the configured secret.
// Bot API servers echo the secret set at webhook registration on every
// delivery, so a mismatch means the request did not come from them.
func SecretToken(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-Telegram-Bot-Api-Secret-Token")
			if provided == "" {
				writeError(w, apierror.Unauthorized("missing secret token header"))
				return
			}

			if !hmac.Equal([]byte(provided), []byte(secret)) {
				writeError(w, apierror.Unauthorized("invalid secret token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeError writes an apierror payload as JSON using its code as the HTTP status.
func writeError(w http.ResponseWriter, apiErr *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Code)
	_ = json.NewEncoder(w).Encode(apiErr)
}
