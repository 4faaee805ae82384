package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name:       "from context",
			setup:      func(c *gin.Context) { c.Set(middleware.RequestIDContextKey, "ctx-request-id") },
			expectedID: "ctx-request-id",
		},
		{
			name:       "from header when context empty",
			setup:      func(c *gin.Context) { c.Request.Header.Set(middleware.RequestIDKey, "header-request-id") },
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set(middleware.RequestIDContextKey, "ctx-id")
				c.Request.Header.Set(middleware.RequestIDKey, "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext()
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestRespondPage(t *testing.T) {
	c, w := newTestContext()

	respondPage(c, shared.NewPaginated([]string{"a", "b"}, 42, shared.Filter{Page: 2, PageSize: 20}))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(42), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.True(t, resp.Meta.HasNext)
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", shared.NewDomainError(shared.CodeValidation, "Quantity must be at least 1"), http.StatusBadRequest, dto.ErrCodeValidation},
		{"not found", shared.NewDomainError(shared.CodeNotFound, "Order not found"), http.StatusNotFound, dto.ErrCodeNotFound},
		{"duplicate name", shared.ErrDuplicateName, http.StatusConflict, dto.ErrCodeDuplicateName},
		{"duplicate email", shared.ErrDuplicateEmail, http.StatusConflict, dto.ErrCodeDuplicateEmail},
		{"conflict", shared.ErrConflict, http.StatusConflict, dto.ErrCodeConflict},
		{"referential", shared.ErrReferential, http.StatusUnprocessableEntity, dto.ErrCodeReferential},
		{"invalid transition", shared.ErrInvalidTransition, http.StatusConflict, dto.ErrCodeInvalidTransition},
		{"record", shared.ErrRecord, http.StatusBadRequest, dto.ErrCodeRecord},
		{"wrapped", fmt.Errorf("placing order: %w", shared.ErrReferential), http.StatusUnprocessableEntity, dto.ErrCodeReferential},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext()
			c.Set(middleware.RequestIDContextKey, "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Empty(t, w.Header().Get("Retry-After"))
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandlerHandleErrorTimeoutIsRetryable(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.HandleError(c, shared.WrapDomainError(shared.CodeTimeout, "Order placement timed out", errors.New("lock timeout")))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeTimeout, resp.Error.Code)
	assert.Equal(t, RetryAfterSeconds, resp.Error.RetryAfter)
	assert.NotContains(t, resp.Error.Message, "lock timeout")
}

func TestBaseHandlerHandleErrorNil(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.HandleError(c, nil)

	assert.Equal(t, 0, w.Body.Len())
}

func TestBaseHandlerBindError(t *testing.T) {
	type body struct {
		Email string `json:"email" binding:"required,email"`
	}

	t.Run("validator errors list fields", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext()
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		var b body
		err := c.ShouldBindJSON(&b)
		require.Error(t, err)
		h.BindError(c, err)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "email", resp.Error.Details[0].Field)
		assert.Equal(t, "Invalid email format", resp.Error.Details[0].Message)
	})

	t.Run("malformed json", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext()
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
		c.Request.Header.Set("Content-Type", "application/json")

		var b body
		h.BindError(c, c.ShouldBindJSON(&b))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
	})
}
