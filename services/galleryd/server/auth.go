package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Scopes carried by caller tokens.
const (
	ScopeLeader = "leader"
	ScopeAdmin  = "admin"
)

// HeaderAccount names the acting account when authentication is disabled.
const HeaderAccount = "X-Account"

// AuthConfig controls caller identification.
type AuthConfig struct {
	Enabled    bool
	HMACSecret string
	Issuer     string
	Audience   string
	ClockSkew  time.Duration
}

// Caller is the account a request acts for.
type Caller struct {
	Account string
	Scopes  []string
}

// Has reports whether the caller holds scope.
func (c Caller) Has(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

type callerKey struct{}

// CallerFrom returns the caller stored by the Authenticator.
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}

func withCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// Authenticator resolves the caller of write requests from an HS256 bearer
// token whose subject is the acting account. With authentication disabled
// the account is read from HeaderAccount and every scope is granted.
type Authenticator struct {
	cfg    AuthConfig
	logger *slog.Logger
	secret []byte
}

func NewAuthenticator(cfg AuthConfig, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ClockSkew <= 0 {
		cfg.ClockSkew = 2 * time.Minute
	}
	return &Authenticator{cfg: cfg, logger: logger, secret: []byte(strings.TrimSpace(cfg.HMACSecret))}
}

// Middleware rejects requests without an identifiable caller.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.cfg.Enabled {
			account := strings.TrimSpace(r.Header.Get(HeaderAccount))
			if account == "" {
				writeError(w, http.StatusUnauthorized, "missing "+HeaderAccount+" header")
				return
			}
			caller := Caller{Account: account, Scopes: []string{ScopeLeader, ScopeAdmin}}
			next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller)))
			return
		}
		tokenString := extractBearer(r.Header.Get("Authorization"))
		if tokenString == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := a.parseToken(tokenString)
		if err != nil {
			a.logger.Warn("token validation failed", "error", err)
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if err := validateClaims(claims, a.cfg.Issuer, a.cfg.Audience); err != nil {
			a.logger.Warn("claim validation failed", "error", err)
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		subject, err := claims.GetSubject()
		if err != nil || strings.TrimSpace(subject) == "" {
			writeError(w, http.StatusUnauthorized, "token has no subject")
			return
		}
		caller := Caller{Account: strings.TrimSpace(subject), Scopes: extractScopes(claims)}
		next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller)))
	})
}

// RequireScope lets through only callers holding every scope.
func RequireScope(scopes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing caller")
				return
			}
			for _, scope := range scopes {
				if !caller.Has(scope) {
					writeError(w, http.StatusForbidden, "insufficient scope")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Authenticator) parseToken(tokenString string) (jwt.MapClaims, error) {
	if len(a.secret) == 0 {
		return nil, errors.New("auth secret not configured")
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithLeeway(a.cfg.ClockSkew))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

func validateClaims(claims jwt.MapClaims, issuer, audience string) error {
	if issuer != "" {
		if value, ok := claims["iss"].(string); !ok || value != issuer {
			return errors.New("issuer mismatch")
		}
	}
	if audience != "" {
		aud, err := claims.GetAudience()
		if err != nil {
			return err
		}
		matched := false
		for _, entry := range aud {
			if entry == audience {
				matched = true
				break
			}
		}
		if !matched {
			return errors.New("audience mismatch")
		}
	}
	return nil
}

func extractScopes(claims jwt.MapClaims) []string {
	switch v := claims["scope"].(type) {
	case string:
		return strings.Fields(v)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, entry := range v {
			if s, ok := entry.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func extractBearer(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
