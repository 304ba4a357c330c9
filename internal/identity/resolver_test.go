package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/timmy/epigraph/internal/domain"
)

func newAuthServer(t *testing.T, handler http.HandlerFunc) *Resolver {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewResolver(&Config{URL: srv.URL, AnonKey: "anon"})
}

func TestCurrentUserID(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		status  int
		body    string
		wantID  string
		wantErr bool
	}{
		{name: "signed in", token: "good", status: http.StatusOK, body: `{"id":"user-1"}`, wantID: "user-1"},
		{name: "no token", token: "", status: http.StatusOK, body: `{"id":"user-1"}`},
		{name: "expired token", token: "stale", status: http.StatusUnauthorized, body: `{"msg":"expired"}`},
		{name: "forbidden", token: "bad", status: http.StatusForbidden, body: `{}`},
		{name: "server error", token: "good", status: http.StatusInternalServerError, body: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAuthServer(t, func(w http.ResponseWriter, req *http.Request) {
				if req.URL.Path != "/auth/v1/user" {
					t.Errorf("unexpected path %s", req.URL.Path)
				}
				if req.Header.Get("apikey") != "anon" {
					t.Errorf("missing apikey header")
				}
				if req.Header.Get("Authorization") != "Bearer "+tt.token {
					t.Errorf("unexpected authorization %q", req.Header.Get("Authorization"))
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			ctx := WithAccessToken(context.Background(), tt.token)
			id, err := r.CurrentUserID(ctx)

			if tt.wantErr {
				if !domain.IsPersistence(err) {
					t.Fatalf("expected PersistenceError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantID == "" {
				if id != nil {
					t.Errorf("expected anonymous, got %q", *id)
				}
				return
			}
			if id == nil || *id != tt.wantID {
				t.Errorf("got %v, want %q", id, tt.wantID)
			}
		})
	}
}

func TestCurrentUserID_Unconfigured(t *testing.T) {
	r := NewResolver(&Config{})
	id, err := r.CurrentUserID(WithAccessToken(context.Background(), "token"))
	if err != nil || id != nil {
		t.Fatalf("expected anonymous without error, got %v, %v", id, err)
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	ctx := WithAccessToken(context.Background(), "  abc  ")
	if got := AccessTokenFrom(ctx); got != "abc" {
		t.Errorf("got %q", got)
	}
	if got := AccessTokenFrom(WithAccessToken(context.Background(), " ")); got != "" {
		t.Errorf("blank token should not be stored, got %q", got)
	}
}
