package server

import (
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthConfig enables bearer token checks on the API when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string
}

func (c AuthConfig) Enabled() bool {
	return strings.TrimSpace(c.JWTSecret) != ""
}

// IssueToken signs an HS256 token for subject valid for ttl.
func IssueToken(secret, subject string, ttl time.Duration, now time.Time) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", errors.New("jwt secret not configured")
	}
	if subject == "" {
		return "", errors.New("subject required")
	}
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    "kloza",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// authenticateJWT checks the signature, expiry and subject of an HS256 token.
func authenticateJWT(token string, secret string) error {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &jwt.RegisteredClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return errors.New("invalid token")
	}
	if claims.Subject == "" {
		return errors.New("subject claim required")
	}
	return nil
}

func bearerToken(authz string) (string, bool) {
	parts := strings.Fields(authz)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// isPublicPath reports whether route stays reachable without a token.
func isPublicPath(route, basePath string) bool {
	return route == "/" ||
		route == path.Join(basePath, "health") ||
		route == path.Join(basePath, "openapi.json")
}

func newAuthMiddleware(basePath string, cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			// Only enforce for API base path.
			if !strings.HasPrefix(req.URL.Path, basePath+"/") || isPublicPath(req.URL.Path, basePath) {
				next.ServeHTTP(w, req)
				return
			}
			authz := strings.TrimSpace(req.Header.Get("Authorization"))
			if authz == "" {
				writeError(w, newAPIError(http.StatusUnauthorized, msgUnauthorized, nil, ""))
				return
			}
			token, ok := bearerToken(authz)
			if !ok {
				writeError(w, newAPIError(http.StatusUnauthorized, msgInvalidToken, nil, ""))
				return
			}
			if err := authenticateJWT(token, cfg.JWTSecret); err != nil {
				writeError(w, newAPIError(http.StatusUnauthorized, msgInvalidToken, nil, ""))
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
