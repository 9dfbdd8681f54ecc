package auth

// UserClaims identifies the caller of a protected endpoint
type UserClaims interface {
	UserID() string
	Source() string
}

// JWTClaims is the principal of a verified bearer token
type JWTClaims struct {
	Subject string
	TokenID string
}

func (c *JWTClaims) UserID() string { return c.Subject }
func (c *JWTClaims) Source() string { return "JWT" }

// APIKeyClaims is the principal of an active X-API-Key
type APIKeyClaims struct {
	KeyID string
}

func (c *APIKeyClaims) UserID() string { return c.KeyID }
func (c *APIKeyClaims) Source() string { return "API_KEY" }

// AuthError is a rejected or missing principal
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return "Unauthorized. " + e.Reason + ": " + e.Err.Error()
	}
	return "Unauthorized. " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }
