package account_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"bank-backend/internal/api/v1/account"
	"bank-backend/internal/middleware"
	"bank-backend/internal/models"
	"bank-backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authorized := r.Group("/api")
	authorized.Use(middleware.AuthMiddleware())
	account.RegisterRoutes(authorized)
	return r
}

type accountEnvelope struct {
	Status  string                  `json:"status"`
	Message string                  `json:"message"`
	Data    account.AccountResponse `json:"data"`
}

func decodeAccount(t *testing.T, body []byte) account.AccountResponse {
	t.Helper()
	var resp accountEnvelope
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Data
}

func TestCreateAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := setupRouter()
	admin := testutil.CreateUser(t, db, models.RoleAdmin)
	client := testutil.CreateUser(t, db, models.RoleClient)
	other := testutil.CreateUser(t, db, models.RoleClient)

	tests := []struct {
		name           string
		token          string
		body           map[string]interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, body []byte)
	}{
		{
			name:           "Client Self Service",
			token:          testutil.BearerToken(t, client),
			body:           map[string]interface{}{"type": "savings"},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, body []byte) {
				a := decodeAccount(t, body)
				assert.Equal(t, client.ID, a.UserID)
				assert.Equal(t, models.AccountTypeSavings, a.Type)
				assert.True(t, a.Balance.IsZero())
				assert.Len(t, a.AccountNumber, 10)
				assert.True(t, a.IsActive)
			},
		},
		{
			name:           "Client For Someone Else",
			token:          testutil.BearerToken(t, client),
			body:           map[string]interface{}{"user_id": other.ID},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Client With Balance",
			token:          testutil.BearerToken(t, client),
			body:           map[string]interface{}{"balance": 100},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Admin Sub-Cent Balance",
			token:          testutil.BearerToken(t, admin),
			body:           map[string]interface{}{"user_id": other.ID, "balance": "10.001"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Admin For Client",
			token:          testutil.BearerToken(t, admin),
			body:           map[string]interface{}{"user_id": other.ID, "account_number": "1234567890", "balance": "250.50"},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, body []byte) {
				a := decodeAccount(t, body)
				assert.Equal(t, other.ID, a.UserID)
				assert.Equal(t, "1234567890", a.AccountNumber)
				assert.True(t, a.Balance.Equal(decimal.RequireFromString("250.50")), "got %s", a.Balance)
				assert.Equal(t, models.AccountTypeChecking, a.Type)
			},
		},
		{
			name:           "Admin Duplicate Number",
			token:          testutil.BearerToken(t, admin),
			body:           map[string]interface{}{"user_id": other.ID, "account_number": "1234567890"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Admin Missing Owner",
			token:          testutil.BearerToken(t, admin),
			body:           map[string]interface{}{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Admin Unknown Owner",
			token:          testutil.BearerToken(t, admin),
			body:           map[string]interface{}{"user_id": 9999},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Negative Balance",
			token:          testutil.BearerToken(t, admin),
			body:           map[string]interface{}{"user_id": other.ID, "balance": -5},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid Type",
			token:          testutil.BearerToken(t, client),
			body:           map[string]interface{}{"type": "crypto"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.PerformRequest(r, http.MethodPost, "/api/accounts", tt.token, tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.checkResponse != nil {
				tt.checkResponse(t, w.Body.Bytes())
			}
		})
	}
}

func TestAccountAccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := setupRouter()
	admin := testutil.CreateUser(t, db, models.RoleAdmin)
	owner := testutil.CreateUser(t, db, models.RoleClient)
	stranger := testutil.CreateUser(t, db, models.RoleClient)
	acc := testutil.CreateAccount(t, db, owner.ID, 100)

	ownerToken := testutil.BearerToken(t, owner)
	strangerToken := testutil.BearerToken(t, stranger)
	adminToken := testutil.BearerToken(t, admin)

	tests := []struct {
		name           string
		path           string
		token          string
		expectedStatus int
	}{
		{"Owner By ID", fmt.Sprintf("/api/accounts/%d", acc.ID), ownerToken, http.StatusOK},
		{"Admin By ID", fmt.Sprintf("/api/accounts/%d", acc.ID), adminToken, http.StatusOK},
		{"Stranger By ID", fmt.Sprintf("/api/accounts/%d", acc.ID), strangerToken, http.StatusForbidden},
		{"Unknown ID", "/api/accounts/9999", adminToken, http.StatusNotFound},
		{"Bad ID", "/api/accounts/abc", adminToken, http.StatusBadRequest},
		{"Owner By Number", "/api/accounts/number/" + acc.AccountNumber, ownerToken, http.StatusOK},
		{"Stranger By Number", "/api/accounts/number/" + acc.AccountNumber, strangerToken, http.StatusForbidden},
		{"Unknown Number", "/api/accounts/number/0000000000", adminToken, http.StatusNotFound},
		{"Owner Lists Own", fmt.Sprintf("/api/accounts/user/%d", owner.ID), ownerToken, http.StatusOK},
		{"Stranger Lists Owner", fmt.Sprintf("/api/accounts/user/%d", owner.ID), strangerToken, http.StatusForbidden},
		{"Client Lists All", "/api/accounts", ownerToken, http.StatusForbidden},
		{"Admin Lists All", "/api/accounts", adminToken, http.StatusOK},
		{"No Token", "/api/accounts", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.PerformRequest(r, http.MethodGet, tt.path, tt.token, nil)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestListAccountsFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := setupRouter()
	admin := testutil.CreateUser(t, db, models.RoleAdmin)
	owner := testutil.CreateUser(t, db, models.RoleClient)
	testutil.CreateAccount(t, db, owner.ID, 0)
	closed := testutil.CreateAccount(t, db, owner.ID, 0)
	require.NoError(t, db.Model(closed).Update("is_active", false).Error)
	testutil.CreateAccount(t, db, admin.ID, 0)

	tests := []struct {
		query         string
		expectedTotal int64
	}{
		{"", 3},
		{fmt.Sprintf("?user_id=%d", owner.ID), 2},
		{"?is_active=false", 1},
		{"?type=checking", 3},
		{"?type=savings", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := testutil.PerformRequest(r, http.MethodGet, "/api/accounts"+tt.query, testutil.BearerToken(t, admin), nil)
			require.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				Data account.AccountListResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedTotal, resp.Data.Total)
		})
	}

	w := testutil.PerformRequest(r, http.MethodGet, "/api/accounts?type=crypto", testutil.BearerToken(t, admin), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := setupRouter()
	admin := testutil.CreateUser(t, db, models.RoleAdmin)
	owner := testutil.CreateUser(t, db, models.RoleClient)
	acc := testutil.CreateAccount(t, db, owner.ID, 100)
	path := fmt.Sprintf("/api/accounts/%d", acc.ID)
	adminToken := testutil.BearerToken(t, admin)

	w := testutil.PerformRequest(r, http.MethodPatch, path, testutil.BearerToken(t, owner), map[string]string{"type": "savings"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.PerformRequest(r, http.MethodPatch, path, adminToken, map[string]string{"account_number": "9999999999"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot be changed")

	w = testutil.PerformRequest(r, http.MethodPatch, path, adminToken, map[string]string{"type": "investment"})
	require.Equal(t, http.StatusOK, w.Code)
	a := decodeAccount(t, w.Body.Bytes())
	assert.Equal(t, models.AccountTypeInvestment, a.Type)
	assert.Equal(t, acc.AccountNumber, a.AccountNumber)

	w = testutil.PerformRequest(r, http.MethodPatch, path+"/deactivate", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeAccount(t, w.Body.Bytes()).IsActive)

	w = testutil.PerformRequest(r, http.MethodPatch, path+"/deactivate", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := setupRouter()
	admin := testutil.CreateUser(t, db, models.RoleAdmin)
	owner := testutil.CreateUser(t, db, models.RoleClient)
	empty := testutil.CreateAccount(t, db, owner.ID, 0)
	funded := testutil.CreateAccount(t, db, owner.ID, 50)
	adminToken := testutil.BearerToken(t, admin)

	w := testutil.PerformRequest(r, http.MethodDelete, fmt.Sprintf("/api/accounts/%d", funded.ID), adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot remove account with balance")

	w = testutil.PerformRequest(r, http.MethodDelete, fmt.Sprintf("/api/accounts/%d", empty.ID), testutil.BearerToken(t, owner), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.PerformRequest(r, http.MethodDelete, fmt.Sprintf("/api/accounts/%d", empty.ID), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = testutil.PerformRequest(r, http.MethodGet, fmt.Sprintf("/api/accounts/%d", empty.ID), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
