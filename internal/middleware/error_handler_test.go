package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stockroom/backend/internal/apperror"
	"github.com/stockroom/backend/internal/models"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"not found", apperror.NotFound("65a1b2c3d4e5f60718293a4b"), http.StatusNotFound, "Resource not found with id of 65a1b2c3d4e5f60718293a4b"},
		{"conflict", apperror.Conflict(errors.New("E11000")), http.StatusBadRequest, "Duplicate field value entered"},
		{"entity validation", apperror.Validation(
			apperror.FieldError{Field: "name", Message: "Please add a name for the item"},
			apperror.FieldError{Field: "quantity", Message: "Quantity cannot be negative"},
		), http.StatusBadRequest, "Please add a name for the item,Quantity cannot be negative"},
		{"unauthorized", apperror.Unauthorized("Not authenticated"), http.StatusUnauthorized, "Not authenticated"},
		{"store", apperror.Store("list items", errors.New("socket closed")), http.StatusInternalServerError, "Server Error"},
		{"other with status", apperror.WithStatus(http.StatusTeapot, "brewing"), http.StatusTeapot, "brewing"},
		{"other without status", &apperror.Error{Kind: apperror.KindOther}, http.StatusInternalServerError, "Server Error"},
		{"plain error", errors.New("kaboom"), http.StatusInternalServerError, "Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := Translate(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}

func TestTranslate_InvalidInputKeepsFieldList(t *testing.T) {
	fields := []apperror.FieldError{{Field: "id", Message: "Invalid ID format"}}

	status, body := Translate(apperror.InvalidInput(fields...))

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.NewValidationErrorResponse(fields), body)
}

func TestErrorHandler_HandleLogsAndWrites(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	h := NewErrorHandler(zap.New(core))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	h.Handle(rec, req, apperror.Store("list items", errors.New("socket closed")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]interface{}{"success": false, "error": "Server Error"}, body)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.ErrorLevel, entry.Level)
	assert.Equal(t, "Store", entry.ContextMap()["kind"])
	assert.Contains(t, entry.ContextMap()["error"], "socket closed")
}

func TestErrorHandler_Recoverer(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	h := NewErrorHandler(zap.New(core))

	handler := h.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Server Error"}`, rec.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}
