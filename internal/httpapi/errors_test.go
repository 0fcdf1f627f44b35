package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-code-yt/retail-orders/internal/domain"
)

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestStatusForCode(t *testing.T) {
	cases := []struct {
		code int
		want int
	}{
		{domain.CodeEmptyOrder, http.StatusBadRequest},
		{domain.CodeInvalidQuantity, http.StatusBadRequest},
		{domain.CodeProductNotFound, http.StatusNotFound},
		{domain.CodeOrderNotFound, http.StatusNotFound},
		{domain.CodeCategoryNotFound, http.StatusNotFound},
		{domain.CodeInsufficientStock, http.StatusConflict},
		{domain.CodeDuplicateCategory, http.StatusConflict},
		{domain.CodeAlreadyShipped, http.StatusConflict},
		{domain.CodeAlreadyCancelled, http.StatusConflict},
		{domain.CodeCannotShipCancelled, http.StatusConflict},
		{domain.CodeShippedCancelNeedsReason, http.StatusConflict},
		{domain.CodeNotAuthorized, http.StatusNotFound},
		{domain.CodePersistence, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusForCode(tc.code), "code %d", tc.code)
	}
}

func TestRespondErrorRendersTaxonomy(t *testing.T) {
	w, body := respond(t, domain.NewInsufficientStockError("widget", 5, 3))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "insufficient_stock", body["error"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(5), details["requested"])
	assert.Equal(t, float64(3), details["available"])
}

func TestRespondErrorRendersDuplicateCategory(t *testing.T) {
	w, body := respond(t, domain.NewDuplicateCategoryError("books"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate_category", body["error"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "books", details["name"])
}

func TestRespondErrorUnwrapsWrapped(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", domain.NewAlreadyShippedError(domain.Status_Shipped))
	w, body := respond(t, wrapped)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_shipped", body["error"])
}

func TestRespondErrorHidesOwnership(t *testing.T) {
	// NotAuthorized must be indistinguishable from a missing order, or
	// probing IDs would reveal which ones exist.
	w, body := respond(t, domain.NewNotAuthorizedError())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "order_not_found", body["error"])

	_, notFoundBody := respond(t, domain.NewOrderNotFoundError("abc"))
	assert.Equal(t, body["error"], notFoundBody["error"])
}

func TestRespondErrorMasksPersistenceDetail(t *testing.T) {
	w, body := respond(t, domain.NewPersistenceError(errors.New("pq: connection refused")))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, body["message"], "connection refused")
}

func TestRespondErrorUnclassified(t *testing.T) {
	w, body := respond(t, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal", body["error"])
}
