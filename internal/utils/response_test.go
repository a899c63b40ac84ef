package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedMsg    string
		expectFields   bool
	}{
		{
			name:           "Not Found",
			err:            NewNotFoundError("account not found"),
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "account not found",
		},
		{
			name:           "Wrapped App Error",
			err:            fmt.Errorf("lookup: %w", NewConflictError("email already registered")),
			expectedStatus: http.StatusConflict,
			expectedMsg:    "email already registered",
		},
		{
			name:           "Validation Fields",
			err:            NewValidationError(map[string][]string{"amount": {"is required"}}),
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid request parameters",
			expectFields:   true,
		},
		{
			name:           "Internal Error Hides Cause",
			err:            NewInternalError("settlement failed", errors.New("disk on fire")),
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
		},
		{
			name:           "Plain Error",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RespondError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var resp Response
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tt.expectedMsg, resp.Message)
			assert.NotContains(t, w.Body.String(), "disk on fire")
			if tt.expectFields {
				assert.Equal(t, []string{"is required"}, resp.Errors["amount"])
			} else {
				assert.Nil(t, resp.Errors)
			}
		})
	}
}

func TestSuccessEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondCreated(c, "created", gin.H{"id": 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"status":"success","message":"created","data":{"id":1}}`, w.Body.String())
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := NewInternalError("wrapped", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "wrapped: cause", err.Error())
}
