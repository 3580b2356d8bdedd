package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "civicsolve/pkg/errors"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/complaints", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorMapsStoreUnavailableTo503(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, Error(c, apperrors.StoreUnavailable(errors.New("dial tcp: refused"))))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, apperrors.StoreUnavailableMessage, body.Message)
	assert.Equal(t, apperrors.CodeStoreUnavailable, body.Error.Code)
}

func TestErrorHidesDetailsInProduction(t *testing.T) {
	Configure(true)
	defer Configure(false)

	c, rec := newContext()
	require.NoError(t, Error(c, errors.New("secret connection string")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestPaginatedKeepsEmptyArray(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, Paginated(c, []string{}, Pagination{CurrentPage: 4, TotalPages: 1, TotalItems: 3, ItemsPerPage: 10}))

	assert.Contains(t, rec.Body.String(), `"data":[]`)
	assert.Contains(t, rec.Body.String(), `"currentPage":4`)
}
