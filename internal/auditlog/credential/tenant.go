// Package credential resolves tenant identity from the bearer token handed to
// the report pipeline. The token is issued and verified by Entra ID; this
// package only reads claims and never validates signatures.
package credential

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "auditfeed/pkg/domain-errors"
)

// tenantClaim is the Entra ID claim carrying the directory (tenant) id.
const tenantClaim = "tid"

// TenantFromAccessToken extracts the tenant id from an access token.
func TenantFromAccessToken(accessToken string) (string, error) {
	claims, err := parseClaims(accessToken)
	if err != nil {
		return "", err
	}

	tid, _ := claims[tenantClaim].(string)
	if tid == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "access token has no tenant claim")
	}
	return tid, nil
}

// Resolve returns configured when set, otherwise the tenant read from the token.
func Resolve(configured, accessToken string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	return TenantFromAccessToken(accessToken)
}

// TokenExpiry returns the instant the token's exp claim names, or the zero
// time when the token has no exp claim.
func TokenExpiry(accessToken string) (time.Time, error) {
	claims, err := parseClaims(accessToken)
	if err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "access token has a malformed exp claim")
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.UTC(), nil
}

func parseClaims(accessToken string) (jwt.MapClaims, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(accessToken), "Bearer "))
	if raw == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "access token is required")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "access token is not a valid JWT")
	}
	return claims, nil
}
