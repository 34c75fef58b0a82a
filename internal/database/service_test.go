package database

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminLogin(t *testing.T) {
	svc := NewAdminService("admin", "s3cret", "test-jwt-secret")

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{name: "valid credentials", username: "admin", password: "s3cret", wantErr: false},
		{name: "wrong password", username: "admin", password: "wrong", wantErr: true},
		{name: "wrong username", username: "root", password: "s3cret", wantErr: true},
		{name: "empty credentials", username: "", password: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.Login(tt.username, tt.password)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, token)
		})
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := NewAdminService("admin", "s3cret", "test-jwt-secret")

	token, err := svc.Login("admin", "s3cret")
	require.NoError(t, err)

	subject, err := svc.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestValidateSessionTokenRejections(t *testing.T) {
	svc := NewAdminService("admin", "s3cret", "test-jwt-secret")

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateSessionToken("not-a-token")
		assert.Error(t, err)
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		other := NewAdminService("admin", "s3cret", "different-secret")
		token, err := other.GenerateSessionToken("admin")
		require.NoError(t, err)

		_, err = svc.ValidateSessionToken(token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub":  "admin",
			"role": "admin",
			"exp":  time.Now().Add(-time.Hour).Unix(),
			"iat":  time.Now().Add(-2 * time.Hour).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-jwt-secret"))
		require.NoError(t, err)

		_, err = svc.ValidateSessionToken(token)
		assert.Error(t, err)
	})

	t.Run("token without admin role", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub": "admin",
			"exp": time.Now().Add(time.Hour).Unix(),
			"iat": time.Now().Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-jwt-secret"))
		require.NoError(t, err)

		_, err = svc.ValidateSessionToken(token)
		assert.Error(t, err)
	})
}
