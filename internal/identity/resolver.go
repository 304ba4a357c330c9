// Package identity resolves the signed-in user behind a Supabase access token.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/epigraph/internal/domain"
	"github.com/timmy/epigraph/internal/logger"
)

type tokenKey struct{}

// WithAccessToken stores the caller's bearer token in ctx.
func WithAccessToken(ctx context.Context, token string) context.Context {
	token = strings.TrimSpace(token)
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// AccessTokenFrom returns the bearer token stored by WithAccessToken.
func AccessTokenFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Config holds the Supabase project used for token lookups.
type Config struct {
	URL     string
	AnonKey string
	Timeout time.Duration
}

// Resolver looks up the user id for the access token carried in a context.
type Resolver struct {
	client  *resty.Client
	enabled bool
}

type authUser struct {
	ID string `json:"id"`
}

// NewResolver creates a resolver against the Supabase auth endpoint.
// With no URL configured every caller is anonymous.
func NewResolver(cfg *Config) *Resolver {
	client := resty.New()
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client.SetTimeout(timeout)
	base := strings.TrimRight(cfg.URL, "/")
	client.SetBaseURL(base)
	if cfg.AnonKey != "" {
		client.SetHeader("apikey", cfg.AnonKey)
	}

	return &Resolver{
		client:  client,
		enabled: base != "",
	}
}

// CurrentUserID returns the id of the signed-in user, or nil when the
// caller is anonymous. A missing, expired or rejected token is anonymous;
// an unreachable auth service is a PersistenceError.
func (r *Resolver) CurrentUserID(ctx context.Context) (*string, error) {
	token := AccessTokenFrom(ctx)
	if !r.enabled || token == "" {
		return nil, nil
	}

	var user authUser
	resp, err := r.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&user).
		Get("/auth/v1/user")
	if err != nil {
		return nil, &domain.PersistenceError{Op: "current_user", Err: err}
	}

	switch {
	case resp.StatusCode() == http.StatusUnauthorized, resp.StatusCode() == http.StatusForbidden:
		logger.CtxDebug(ctx, "Access token rejected by auth service: status=%d", resp.StatusCode())
		return nil, nil
	case resp.IsError():
		return nil, &domain.PersistenceError{
			Op:  "current_user",
			Err: fmt.Errorf("auth service returned status %d", resp.StatusCode()),
		}
	}

	if user.ID == "" {
		return nil, nil
	}
	id := user.ID
	return &id, nil
}
