package middleware

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"skyline/flightsync/internal/auth"
	"skyline/flightsync/internal/common"
	"skyline/flightsync/internal/constants"
	"skyline/flightsync/internal/logging"
	"skyline/flightsync/internal/models/entities"
)

// APIKeyLookup resolves an X-API-Key to its stored status
type APIKeyLookup interface {
	GetStatus(ctx context.Context, key string) (*entities.ApiKey, error)
}

// AuthMiddleware accepts a Bearer token verified by signer or an active X-API-Key from
// keys. Either may be nil to disable that method. Anything else is a 401.
func AuthMiddleware(signer *auth.TokenSigner, keys APIKeyLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			apiKey := r.Header.Get("X-API-Key")

			var claims auth.UserClaims

			switch {
			case signer != nil && strings.HasPrefix(authHeader, "Bearer "):
				jwtClaims, err := signer.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
				if err != nil {
					reject(w, r, &auth.AuthError{Reason: "Invalid token", Err: err})
					return
				}
				claims = jwtClaims

			case keys != nil && apiKey != "":
				keyRes, err := keys.GetStatus(r.Context(), apiKey)
				if errors.Is(err, sql.ErrNoRows) {
					reject(w, r, &auth.AuthError{Reason: "Invalid API Key", Err: err})
					return
				}
				if err != nil {
					logging.Error("API key lookup failed", "path", r.URL.Path, "error", err.Error())
					common.RespondFlightError(w, constants.MsgInternalError, http.StatusInternalServerError)
					return
				}
				if !keyRes.Status {
					reject(w, r, &auth.AuthError{Reason: "Inactive API Key"})
					return
				}
				claims = &auth.APIKeyClaims{KeyID: keyRes.ApiKey}

			default:
				reject(w, r, &auth.AuthError{Reason: "Missing credentials"})
				return
			}

			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// reject logs the cause and answers 401 without leaking it
func reject(w http.ResponseWriter, r *http.Request, err *auth.AuthError) {
	logging.Debug("Rejected request", "path", r.URL.Path, "error", err.Error())
	common.RespondFlightError(w, "Unauthorized. "+err.Reason, http.StatusUnauthorized)
}
