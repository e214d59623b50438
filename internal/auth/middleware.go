// Package auth provides bearer token authentication for the library API.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// errAllProvidersFailed indicates every provider rejected the token
var errAllProvidersFailed = errors.New("all providers failed to validate token")

// RFC 6750 Section 3 error codes
const (
	errorCodeInvalidRequest = "invalid_request"
	errorCodeInvalidToken   = "invalid_token"
)

// defaultRealm is the default protection space identifier
const defaultRealm = "asset-librarian"

// NamedValidator pairs a validator with its provider name
type NamedValidator struct {
	Name      string
	Validator TokenValidator
}

// multiProviderMiddleware tries each provider in order until one accepts the token
type multiProviderMiddleware struct {
	validators []NamedValidator
	realm      string
}

func newMultiProviderMiddleware(validators []NamedValidator, realm string) (*multiProviderMiddleware, error) {
	if len(validators) == 0 {
		return nil, errors.New("at least one provider must be configured")
	}
	if realm == "" {
		realm = defaultRealm
	}
	return &multiProviderMiddleware{validators: validators, realm: realm}, nil
}

// Middleware returns an HTTP middleware that rejects requests without a valid token
func (m *multiProviderMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r)
		if err != nil {
			slog.Warn("Token extraction failed",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path)
			m.writeError(w, errorCodeInvalidRequest, "missing or malformed authorization header")
			return
		}

		provider, claims, err := m.validateToken(r, token)
		if err != nil {
			slog.Warn("Token validation failed",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path)
			m.writeError(w, errorCodeInvalidToken, "token validation failed")
			return
		}

		slog.Debug("Authentication successful",
			"provider", provider,
			"subject", claims["sub"],
			"path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (m *multiProviderMiddleware) validateToken(r *http.Request, token string) (string, jwt.MapClaims, error) {
	errs := make([]error, 0, len(m.validators)+1)
	errs = append(errs, errAllProvidersFailed)
	for _, nv := range m.validators {
		claims, err := nv.Validator.ValidateToken(r.Context(), token)
		if err != nil {
			slog.Debug("Provider failed to validate token", "provider", nv.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", nv.Name, err))
			continue
		}
		return nv.Name, claims, nil
	}
	return "", nil, errors.Join(errs...)
}

func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("authorization header is missing")
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", errors.New("authorization header is not a bearer token")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("bearer token is empty")
	}
	return token, nil
}

// sanitizeHeaderValue removes characters that could inject headers
func sanitizeHeaderValue(s string) string {
	if !strings.ContainsAny(s, "\r\n\"") {
		return s
	}
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return strings.ReplaceAll(s, `"`, `\"`)
}

// writeError writes a 401 with an RFC 6750 WWW-Authenticate challenge
func (m *multiProviderMiddleware) writeError(w http.ResponseWriter, errCode, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer realm="%s", error="%s", error_description="%s"`,
		sanitizeHeaderValue(m.realm), errCode, sanitizeHeaderValue(description)))
	w.WriteHeader(http.StatusUnauthorized)

	resp := struct {
		Error string `json:"error"`
	}{Error: description}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

// WrapWithPublicPaths bypasses authMw for requests under prefixPaths and for
// requests to exactly one of exactPaths
func WrapWithPublicPaths(
	authMw func(http.Handler) http.Handler,
	prefixPaths, exactPaths []string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		authWrappedNext := authMw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicPath(r.URL.Path, prefixPaths) || IsExactPublicPath(r.URL.Path, exactPaths) {
				next.ServeHTTP(w, r)
				return
			}
			authWrappedNext.ServeHTTP(w, r)
		})
	}
}
