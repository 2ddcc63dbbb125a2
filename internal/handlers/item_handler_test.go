package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stockroom/backend/internal/apperror"
	"github.com/stockroom/backend/internal/models"
)

type mockItemService struct {
	mock.Mock
}

func (m *mockItemService) List(ctx context.Context) ([]models.Item, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]models.Item)
	return items, args.Error(1)
}

func (m *mockItemService) Create(ctx context.Context, in models.CreateItemInput) (*models.Item, error) {
	args := m.Called(ctx, in)
	item, _ := args.Get(0).(*models.Item)
	return item, args.Error(1)
}

func (m *mockItemService) GetByID(ctx context.Context, id string) (*models.Item, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*models.Item)
	return item, args.Error(1)
}

func (m *mockItemService) Update(ctx context.Context, id string, in models.UpdateItemInput) (*models.Item, error) {
	args := m.Called(ctx, id, in)
	item, _ := args.Get(0).(*models.Item)
	return item, args.Error(1)
}

func (m *mockItemService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

const testID = "65a1b2c3d4e5f60718293a4b"

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	return resp
}

func newMockRouter(items *mockItemService) http.Handler {
	return NewRouter(RouterConfig{Logger: zap.NewNop(), Items: items, CORSOrigins: []string{"*"}})
}

func TestItemHandler_MalformedIDNeverReachesStore(t *testing.T) {
	items := new(mockItemService)
	router := newMockRouter(items)

	for _, tc := range []struct{ method, body string }{
		{http.MethodGet, ""},
		{http.MethodPut, `{"quantity":1}`},
		{http.MethodDelete, ""},
	} {
		rec := serve(router, tc.method, "/api/items/not-an-object-id", tc.body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.method)
		resp := decodeError(t, rec)
		assert.Equal(t, "Validation failed", resp.Error)
		assert.Equal(t, []apperror.FieldError{{Field: "id", Message: "Invalid ID format"}}, resp.Errors)
	}

	items.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	items.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	items.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestItemHandler_CreateValidationFailsBeforeStore(t *testing.T) {
	items := new(mockItemService)

	rec := serve(newMockRouter(items), http.MethodPost, "/api/items", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Len(t, resp.Errors, 3)
	items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestItemHandler_CreatePassesSanitizedInput(t *testing.T) {
	items := new(mockItemService)
	want := models.CreateItemInput{Name: "Gaming Keyboard", Quantity: 12, Category: "Electronics"}
	created := &models.Item{ID: testID, Name: want.Name, Quantity: 12, Category: want.Category, InStock: true, CreatedAt: time.Now().UTC()}
	items.On("Create", mock.Anything, want).Return(created, nil)

	rec := serve(newMockRouter(items), http.MethodPost, "/api/items", `{"name":" Gaming Keyboard ","quantity":"12","category":"Electronics"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var got models.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, testID, got.ID)
	assert.True(t, got.InStock)
	items.AssertExpectations(t)
}

func TestItemHandler_DuplicateNameIsBadRequest(t *testing.T) {
	items := new(mockItemService)
	items.On("Create", mock.Anything, mock.Anything).Return(nil, apperror.Conflict(errors.New("E11000 duplicate key error")))

	rec := serve(newMockRouter(items), http.MethodPost, "/api/items", `{"name":"Desk","quantity":1,"category":"Furniture"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Duplicate field value entered", decodeError(t, rec).Error)
}

func TestItemHandler_StoreFailureHidesCause(t *testing.T) {
	items := new(mockItemService)
	items.On("List", mock.Anything).Return(nil, apperror.Store("list items", errors.New("server selection timeout")))

	rec := serve(newMockRouter(items), http.MethodGet, "/api/items", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Server Error"}`, rec.Body.String())
}

func TestItemHandler_GetNotFound(t *testing.T) {
	items := new(mockItemService)
	items.On("GetByID", mock.Anything, testID).Return(nil, apperror.NotFound(testID))

	rec := serve(newMockRouter(items), http.MethodGet, "/api/items/"+testID, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Resource not found with id of "+testID, decodeError(t, rec).Error)
}

func TestItemHandler_UpdatePassesOnlyPresentFields(t *testing.T) {
	items := new(mockItemService)
	qty := 0
	updated := &models.Item{ID: testID, Name: "Gaming Keyboard", Quantity: 0, Category: "Electronics", InStock: false}
	items.On("Update", mock.Anything, testID, models.UpdateItemInput{Quantity: &qty}).Return(updated, nil)

	rec := serve(newMockRouter(items), http.MethodPut, "/api/items/"+testID, `{"quantity":0}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got models.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.InStock)
	items.AssertExpectations(t)
}

func TestItemHandler_Delete(t *testing.T) {
	items := new(mockItemService)
	items.On("Delete", mock.Anything, testID).Return(nil)

	rec := serve(newMockRouter(items), http.MethodDelete, "/api/items/"+testID, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Item deleted successfully"}`, rec.Body.String())
	items.AssertExpectations(t)
}

func TestItemHandler_LogsCreateAndDeleteOnce(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	items := new(mockItemService)
	created := &models.Item{ID: testID, Name: "Desk", Quantity: 1, Category: "Furniture", InStock: true}
	items.On("Create", mock.Anything, mock.Anything).Return(created, nil)
	items.On("Delete", mock.Anything, testID).Return(nil)
	router := NewRouter(RouterConfig{Logger: zap.New(core), Items: items, CORSOrigins: []string{"*"}})

	serve(router, http.MethodPost, "/api/items", `{"name":"Desk","quantity":1,"category":"Furniture"}`)
	serve(router, http.MethodDelete, "/api/items/"+testID, "")

	createdLogs := logs.FilterMessage("Item created").All()
	require.Len(t, createdLogs, 1)
	assert.Equal(t, testID, createdLogs[0].ContextMap()["id"])
	assert.Equal(t, 1, logs.FilterMessage("Item deleted").Len())
}

func TestItemHandler_BodyTooLarge(t *testing.T) {
	items := new(mockItemService)
	huge := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`

	rec := serve(newMockRouter(items), http.MethodPost, "/api/items", huge)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
