package auth_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"bank-backend/internal/api/v1/auth"
	"bank-backend/internal/api/v1/user"
	"bank-backend/internal/middleware"
	"bank-backend/internal/models"
	"bank-backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	auth.RegisterRoutes(api)

	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware())
	user.RegisterRoutes(authorized)
	return r
}

type authEnvelope struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Data    auth.AuthResponse   `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

func validRegistration() map[string]string {
	return map[string]string{
		"name":        "Maria Silva",
		"email":       "maria@example.com",
		"password":    "secret123",
		"national_id": "12345678901",
		"phone":       "11987654321",
	}
}

func TestRegister(t *testing.T) {
	testutil.SetupTestDB(t)
	r := setupRouter()

	w := testutil.PerformRequest(r, http.MethodPost, "/api/auth/register", "", validRegistration())
	require.Equal(t, http.StatusCreated, w.Code)

	var resp authEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.Data.Token)
	assert.Equal(t, models.RoleClient, resp.Data.User.Role)
	assert.Equal(t, "maria@example.com", resp.Data.User.Email)

	tests := []struct {
		name           string
		mutate         func(body map[string]string)
		expectedStatus int
		expectedField  string
	}{
		{
			name:           "Duplicate Email",
			mutate:         func(b map[string]string) { b["national_id"] = "10987654321" },
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Duplicate National ID",
			mutate:         func(b map[string]string) { b["email"] = "other@example.com" },
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Weak Password",
			mutate:         func(b map[string]string) { b["email"] = "weak@example.com"; b["password"] = "short" },
			expectedStatus: http.StatusBadRequest,
			expectedField:  "password",
		},
		{
			name:           "Bad National ID",
			mutate:         func(b map[string]string) { b["national_id"] = "12ab" },
			expectedStatus: http.StatusBadRequest,
			expectedField:  "national_id",
		},
		{
			name:           "Missing Name",
			mutate:         func(b map[string]string) { delete(b, "name") },
			expectedStatus: http.StatusBadRequest,
			expectedField:  "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validRegistration()
			tt.mutate(body)

			w := testutil.PerformRequest(r, http.MethodPost, "/api/auth/register", "", body)
			assert.Equal(t, tt.expectedStatus, w.Code)

			var resp authEnvelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			if tt.expectedField != "" {
				assert.Contains(t, resp.Errors, tt.expectedField)
			}
		})
	}
}

func TestLoginAndLogout(t *testing.T) {
	testutil.SetupTestDB(t)
	testutil.SetupTestRedis(t)
	r := setupRouter()

	w := testutil.PerformRequest(r, http.MethodPost, "/api/auth/register", "", validRegistration())
	require.Equal(t, http.StatusCreated, w.Code)

	w = testutil.PerformRequest(r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "maria@example.com", "password": "wrong-pass1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid credentials")

	w = testutil.PerformRequest(r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "maria@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp authEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token := resp.Data.Token
	require.NotEmpty(t, token)

	w = testutil.PerformRequest(r, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutil.PerformRequest(r, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutil.PerformRequest(r, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token has been revoked")
}
