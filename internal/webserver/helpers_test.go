package webserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FischerJoao/mindestoque/internal/backend"
)

func newTestContext(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.JSONSerializer = jsonSerializer{}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		target   string
		page     int
		pageSize int
	}{
		{"/api/products", 1, 50},
		{"/api/products?page=3&perPage=10", 3, 10},
		{"/api/products?page=2&pageSize=25", 2, 25},
		{"/api/products?page=0&perPage=0", 1, 50},
		{"/api/products?perPage=9999", 1, 50},
		{"/api/products?page=abc", 1, 50},
	}
	for _, tc := range cases {
		c, _ := newTestContext(t, tc.target)
		page, pageSize := parsePagination(c)
		assert.Equal(t, tc.page, page, tc.target)
		assert.Equal(t, tc.pageSize, pageSize, tc.target)
	}
}

func TestFailFromErr_NoToken(t *testing.T) {
	c, rec := newTestContext(t, "/api/products")
	require.NoError(t, failFromErr(c, errors.WithStack(backend.ErrNoToken)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "NO_TOKEN")
}

func TestFailFromErr_BackendRejection(t *testing.T) {
	c, rec := newTestContext(t, "/api/products")
	err := errors.WithStack(&backend.APIError{Status: http.StatusConflict, Message: "duplicate product"})
	require.NoError(t, failFromErr(c, err))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "duplicate product")
}

func TestFailFromErr_NetworkFailure(t *testing.T) {
	c, rec := newTestContext(t, "/api/products")
	require.NoError(t, failFromErr(c, errors.New("connection refused")))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "BACKEND_UNREACHABLE")
}

func TestOkEnvelope(t *testing.T) {
	c, rec := newTestContext(t, "/api/session")
	require.NoError(t, ok(c, map[string]string{"hello": "world"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"OK"`)
	assert.Contains(t, rec.Body.String(), `"hello":"world"`)
}
