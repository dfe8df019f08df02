package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/photofeed/server/internal/models"
)

// APIKeyQueryParam carries the key on WebSocket upgrades, where browsers
// cannot set headers
const APIKeyQueryParam = "apiKey"

// KeyChecker reports whether a provided API key is valid
type KeyChecker func(provided string) bool

// NewKeyChecker returns a checker for the configured key. A bcrypt hash takes
// precedence over the plain key. It returns nil when neither is set.
func NewKeyChecker(apiKey, apiKeyHash string) KeyChecker {
	switch {
	case apiKeyHash != "":
		hash := []byte(apiKeyHash)
		return func(provided string) bool {
			return bcrypt.CompareHashAndPassword(hash, []byte(provided)) == nil
		}
	case apiKey != "":
		return func(provided string) bool {
			return constantTimeEquals(apiKey, provided)
		}
	default:
		return nil
	}
}

// APIKeyAuth creates middleware for API key authentication of /api routes.
// A nil checker disables authentication.
func APIKeyAuth(check KeyChecker, headerName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if check == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip auth for health endpoints
			path := r.URL.Path
			if path == "/health" || path == "/api/health" {
				next.ServeHTTP(w, r)
				return
			}

			// Only authenticate API routes
			if !strings.HasPrefix(path, "/api") {
				next.ServeHTTP(w, r)
				return
			}

			providedKey := r.Header.Get(headerName)
			if providedKey == "" {
				providedKey = r.URL.Query().Get(APIKeyQueryParam)
			}
			if providedKey == "" {
				writeError(w, http.StatusUnauthorized, "API key is required.")
				return
			}

			if !check(providedKey) {
				writeError(w, http.StatusUnauthorized, "Invalid API key.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: message})
}

// constantTimeEquals performs a constant-time string comparison
func constantTimeEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
