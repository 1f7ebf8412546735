package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository/memory"
	"github.com/fastygo/tracker/usecase/auth"
)

func issueToken(t *testing.T, secret string) string {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Users().Upsert(context.Background(), &domain.User{ID: "u1", Email: "u1@x.com"}))
	uc := auth.New(store.Users(), store.Sessions(), auth.TokenConfig{Secret: secret, Issuer: "test"}, nil)
	creds, err := uc.Login(context.Background(), "u1", time.Hour)
	require.NoError(t, err)
	return creds.Token
}

func TestJWTAuth(t *testing.T) {
	token := issueToken(t, "secret")

	var seen string
	handler := JWTAuth("secret", nil)(func(ctx *fasthttp.RequestCtx) {
		seen = string(ctx.Request.Header.Peek(UserIDHeader))
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{name: "bearer token", header: "Bearer " + token, wantStatus: fasthttp.StatusOK, wantUser: "u1"},
		{name: "raw token", header: token, wantStatus: fasthttp.StatusOK, wantUser: "u1"},
		{name: "missing", header: "", wantStatus: fasthttp.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + issueToken(t, "other"), wantStatus: fasthttp.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			var ctx fasthttp.RequestCtx
			ctx.Request.Header.Set(UserIDHeader, "spoofed")
			if tt.header != "" {
				ctx.Request.Header.Set("Authorization", tt.header)
			}

			handler(&ctx)

			assert.Equal(t, tt.wantStatus, ctx.Response.StatusCode())
			assert.Equal(t, tt.wantUser, seen)
		})
	}
}
