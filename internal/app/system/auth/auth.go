// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Claims is what we pull out of a verified bearer token and inject into
// r.Context(). Raw keeps the full decoded claim set because the org-code
// resolver probes it for code-shaped fields beyond the ones we name here.
type Claims struct {
	UserID string
	Name   string
	Email  string
	Role   string
	OrgID  string
	Raw    map[string]any
}

type ctxKey string

const claimsKey ctxKey = "authClaims"

// CurrentClaims returns the verified claims & “found?” flag.
func CurrentClaims(r *http.Request) (*Claims, bool) {
	c, ok := r.Context().Value(claimsKey).(*Claims)
	return c, ok
}

// WithClaims returns a request whose context carries c, as LoadClaims
// would have left it after verifying a token.
func WithClaims(r *http.Request, c *Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), claimsKey, c))
}

// Verifier validates HMAC-signed bearer tokens issued by the gateway.
type Verifier struct {
	secret []byte
	log    *zap.Logger
}

func NewVerifier(secret string, logger *zap.Logger) *Verifier {
	return &Verifier{secret: []byte(secret), log: logger}
}

// Verify parses and validates a compact JWT and maps its claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}

	out := &Claims{Raw: map[string]any(claims)}
	out.UserID, _ = claims["sub"].(string)
	out.Name, _ = claims["name"].(string)
	out.Email, _ = claims["email"].(string)
	if role, ok := claims["role"].(string); ok {
		out.Role = strings.ToLower(strings.TrimSpace(role))
	}
	out.OrgID, _ = claims["org_id"].(string)
	return out, nil
}

// LoadClaims injects verified claims into context when a bearer token is
// present. Requests without a token continue anonymously; RequireSignedIn
// and RequireRole decide whether that is acceptable per route.
func (v *Verifier) LoadClaims(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := v.Verify(token)
		if err != nil {
			v.log.Warn("bearer token rejected", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, WithClaims(r, claims))
	})
}

// RequireSignedIn ensures there are verified claims in context.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentClaims(r); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures the caller carries one of the allowed roles.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := CurrentClaims(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if _, allowed := set[c.Role]; !allowed {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
