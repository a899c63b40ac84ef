package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bank-backend/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestGenerateAndValidateToken(t *testing.T) {
	InitJWT(&config.Config{JWTSecret: "test-secret", JWTExpiresIn: time.Hour})

	token, err := GenerateToken(42, "admin")
	assert.NoError(t, err)

	claims, err := ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, float64(42), claims["user_id"])
	assert.Equal(t, "admin", claims["role"])

	ttl := TokenTTL(claims)
	assert.True(t, ttl > 59*time.Minute && ttl <= time.Hour)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	InitJWT(&config.Config{JWTSecret: "test-secret"})

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := foreign.SignedString([]byte("other-secret"))
	assert.NoError(t, err)

	_, err = ValidateToken(signed)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	InitJWT(&config.Config{JWTSecret: "test-secret"})

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	signed, _ := expired.SignedString([]byte("test-secret"))

	_, err := ValidateToken(signed)
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "Bearer", header: "Bearer abc.def", want: "abc.def"},
		{name: "Missing", header: "", wantErr: true},
		{name: "Wrong Scheme", header: "Basic xyz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}
			got, err := ExtractToken(c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
