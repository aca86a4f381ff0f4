package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtectedTestData(t *testing.T) {
	handler := ProtectedTestData()

	req := httptest.NewRequest(http.MethodGet, "/protected/test-data", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Only paid members can access this message!", body["message"])
}
