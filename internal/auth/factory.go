package auth

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/stacklok/asset-librarian/internal/config"
)

// NewAuthMiddleware creates the authentication middleware for cfg. Nil or
// anonymous configurations pass every request through.
func NewAuthMiddleware(cfg *config.AuthConfig) (func(http.Handler) http.Handler, error) {
	switch cfg.GetMode() {
	case config.AuthModeAnonymous:
		slog.Info("auth: anonymous mode")
		return anonymousMiddleware, nil
	case config.AuthModeJWT:
		return createJWTMiddleware(cfg)
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.Mode)
	}
}

func createJWTMiddleware(cfg *config.AuthConfig) (func(http.Handler) http.Handler, error) {
	validators := make([]NamedValidator, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		secret, err := p.GetSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to read secret for provider %q: %w", p.Name, err)
		}
		v, err := NewHMACValidator(secret, p.Issuer, p.Audience)
		if err != nil {
			return nil, fmt.Errorf("failed to create validator for provider %q: %w", p.Name, err)
		}
		validators = append(validators, NamedValidator{Name: p.Name, Validator: v})
	}

	m, err := newMultiProviderMiddleware(validators, cfg.Realm)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-provider middleware: %w", err)
	}

	slog.Info("auth: JWT mode", "providers", len(validators), "public_paths", cfg.PublicPaths)
	return WrapWithPublicPaths(m.Middleware, DefaultPublicPaths, cfg.PublicPaths), nil
}

// anonymousMiddleware passes requests through without authentication
func anonymousMiddleware(next http.Handler) http.Handler {
	return next
}
