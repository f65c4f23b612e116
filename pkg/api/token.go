package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiringSoon peeks at the access token's exp claim without
// verifying the signature (the backend owns verification; the client
// only needs a hint for proactive refresh). Opaque or claimless tokens
// report false so they are used until the server rejects them.
func TokenExpiringSoon(token string, within time.Duration) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < within
}
