package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/auth"
)

// apiKeyHeader carries the caller's API key.
const apiKeyHeader = "X-API-Key"

type accountKey struct{}

// accountFrom returns the authenticated account stored by the auth
// middleware.
func accountFrom(ctx context.Context) (*auth.Account, bool) {
	a, ok := ctx.Value(accountKey{}).(*auth.Account)
	return a, ok
}

// HashKey computes the hex HMAC-SHA256 of an API key under the pepper. The
// same function is used at key creation time, so the database only ever
// stores hashes.
func HashKey(pepper []byte, key string) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

// authenticate validates the API key header against the repository using a
// constant-time comparison and injects the account into the context.
func (h *Handler) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(apiKeyHeader)
		if key == "" {
			writeMessage(w, http.StatusUnauthorized, "missing api key")
			return
		}

		mac := hmac.New(sha256.New, h.pepper)
		mac.Write([]byte(key))
		hash := mac.Sum(nil)

		account, err := h.apikeys.FindByHash(r.Context(), hex.EncodeToString(hash))
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		// The lookup already matched, but compare against the stored hash in
		// constant time in case the repository returned a stale row.
		stored, err := hex.DecodeString(account.KeyHash)
		if err != nil || subtle.ConstantTimeCompare(hash, stored) != 1 {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), accountKey{}, account)
		next(w, r.WithContext(ctx))
	}
}

// adminOnly rejects non-admin accounts. Must run inside authenticate.
func (h *Handler) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return h.authenticate(func(w http.ResponseWriter, r *http.Request) {
		account, ok := accountFrom(r.Context())
		if !ok || !account.Admin {
			writeMessage(w, http.StatusForbidden, "admin access required")
			return
		}
		next(w, r)
	})
}
