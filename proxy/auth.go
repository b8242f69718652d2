package proxy

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// requireBearer wraps next with HS256 JWT validation against the configured
// secret. Requests without a valid token are rejected with 401.
func (s *Server) requireBearer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		if err := s.validateToken(token); err != nil {
			s.writeError(w, http.StatusUnauthorized, "invalid bearer token")
			return
		}
		next(w, r)
	}
}

// validateToken parses and verifies an HS256 token against the shared
// secret. Expiration and not-before claims are enforced by the parser.
func (s *Server) validateToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.cfg.BearerSecret, nil
	})
	if err != nil {
		return fmt.Errorf("proxy: token validation: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("proxy: token invalid")
	}
	return nil
}
