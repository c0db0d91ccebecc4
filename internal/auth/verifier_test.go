package auth

import (
	"context"
	"testing"
	"time"

	"eventhive/internal/shared/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifier_RoundTrip(t *testing.T) {
	v := NewJWTVerifier(config.AuthConfig{JWTSecret: "secret", Issuer: "eventhive-idp"})

	token, err := v.Issue("Alice@Example.com", "Alice", time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", id.Email)
	assert.Equal(t, "Alice", id.Name)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v := NewJWTVerifier(config.AuthConfig{JWTSecret: "secret", Issuer: "eventhive-idp"})
	sign := func(secret string, method jwt.SigningMethod, claims Claims) string {
		var key interface{} = []byte(secret)
		if method == jwt.SigningMethodNone {
			key = jwt.UnsafeAllowNoneSignatureType
		}
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := func() Claims {
		return Claims{
			Email: "bob@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "eventhive-idp",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
	}
	unverified := false

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"garbage", "not-a-jwt", ErrInvalidToken},
		{"wrong secret", sign("other", jwt.SigningMethodHS256, valid()), ErrInvalidToken},
		{"alg none", sign("", jwt.SigningMethodNone, valid()), ErrInvalidToken},
		{"expired", func() string {
			c := valid()
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			return sign("secret", jwt.SigningMethodHS256, c)
		}(), ErrTokenExpired},
		{"wrong issuer", func() string {
			c := valid()
			c.Issuer = "someone-else"
			return sign("secret", jwt.SigningMethodHS256, c)
		}(), ErrInvalidToken},
		{"missing email", func() string {
			c := valid()
			c.Email = ""
			return sign("secret", jwt.SigningMethodHS256, c)
		}(), ErrInvalidToken},
		{"unverified email", func() string {
			c := valid()
			c.EmailVerified = &unverified
			return sign("secret", jwt.SigningMethodHS256, c)
		}(), ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
