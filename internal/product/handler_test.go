package product

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["message"]
}

func TestHandler_CreateProduct_Validation(t *testing.T) {
	handler := NewHandler(nil) // validation fails before the repository is touched

	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"invalid json", `{`, "Invalid JSON body"},
		{"unknown field", `{"name":"x","stock":3}`, "Invalid JSON body"},
		{"missing name", `{"price":1}`, "Name is required"},
		{"name too long", `{"name":"` + strings.Repeat("x", 151) + `"}`, "Name is invalid"},
		{"negative price", `{"name":"keyboard","price":-1}`, "Price must be >= 0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			handler.CreateProduct(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.message, decodeMessage(t, rec))
		})
	}
}

func TestHandler_GetProduct_InvalidID(t *testing.T) {
	handler := NewHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/products/not-a-uuid", nil)
	req.SetPathValue("id", "not-a-uuid")
	rec := httptest.NewRecorder()
	handler.GetProduct(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid product id", decodeMessage(t, rec))
}

func TestHandler_GetProduct_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)
	handler := NewHandler(repo)

	id := "018f6f2a-0000-7000-8000-000000000000"
	mock.ExpectQuery(regexp.QuoteMeta("FROM products")).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	handler.GetProduct(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decodeMessage(t, rec))
}

func TestHandler_DeleteProduct(t *testing.T) {
	repo, mock := newMockRepository(t)
	handler := NewHandler(repo)

	id := "018f6f2a-0000-7000-8000-000000000000"
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/api/products/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	handler.DeleteProduct(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product deleted", decodeMessage(t, rec))
}

func TestHandler_ListProducts_BadPriceFilter(t *testing.T) {
	handler := NewHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/products?priceMin=abc", nil)
	rec := httptest.NewRecorder()
	handler.ListProducts(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "priceMin must be a non-negative number", decodeMessage(t, rec))
}

func TestHandler_ListProducts_PassesFilters(t *testing.T) {
	repo, mock := newMockRepository(t)
	handler := NewHandler(repo)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE category = $1 AND price >= $2`)).
		WithArgs("peripherals", 5.0).
		WillReturnRows(productRows("keyboard"))

	req := httptest.NewRequest(http.MethodGet, "/api/products?category=peripherals&priceMin=5", nil)
	rec := httptest.NewRecorder()
	handler.ListProducts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var products []Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "keyboard", products[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
