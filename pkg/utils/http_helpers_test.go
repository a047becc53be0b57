package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	apperrors "inventory-system/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseFilterFromQuery(t *testing.T) {
	values, err := url.ParseQuery("search=dell&sort[serial]=DESC&sort[x]=up&filter[status]=Estoque&filter[status]=Em%20Uso&limit=900&page=3")
	require.NoError(t, err)

	f := ParseFilterFromQuery(values)
	assert.Equal(t, "dell", f.Search)
	assert.Equal(t, map[string]string{"serial": "desc"}, f.Sort)
	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 2*MaxLimit, f.Offset)
	assert.True(t, f.WithPagination)
	assert.Equal(t, "Estoque", f.Filter["status"])
}

func TestParseFilterFromQuery_Defaults(t *testing.T) {
	f := ParseFilterFromQuery(url.Values{"withPagination": {"false"}, "limit": {"-1"}})
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, 1, f.Page)
	assert.Zero(t, f.Offset)
	assert.False(t, f.WithPagination)
}

func errorStatus(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, ErrorResponse(c, err, zap.NewNop()))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["status"])
	return rec.Code, body
}

func TestErrorResponse_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{apperrors.NewHttpError(http.StatusTeapot, "chá", nil, nil), http.StatusTeapot},
		{apperrors.NewInvalidInputError("campo %s", "serial"), http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", apperrors.ErrNotFound), http.StatusNotFound},
		{apperrors.ErrConflict, http.StatusConflict},
		{apperrors.ErrInvalidTransition, http.StatusConflict},
		{apperrors.ErrForbidden, http.StatusForbidden},
		{apperrors.ErrAccountLocked, http.StatusTooManyRequests},
		{apperrors.ErrEmptyAuthHeader, http.StatusUnauthorized},
		{apperrors.ErrFeatureNotConfigured, http.StatusBadRequest},
		{apperrors.ErrNotImplemented, http.StatusNotImplemented},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		code, _ := errorStatus(t, tc.err)
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestErrorResponse_InvalidInputKeepsMessage(t *testing.T) {
	_, body := errorStatus(t, apperrors.NewInvalidInputError("Produto %q não encontrado", "Office"))
	assert.Equal(t, `Produto "Office" não encontrado`, body["message"])
}

func TestErrorResponse_ValidationErrors(t *testing.T) {
	v := validator.New()
	err := v.Struct(struct {
		Serial string `validate:"required"`
	}{})
	code, body := errorStatus(t, err)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["message"], "Serial")
}

func TestSuccessResponse_Pagination(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?withPagination=true&limit=2", nil), rec)
	require.NoError(t, SuccessResponse(c, []int{1, 2}, "ok", http.StatusOK, 5))

	var resp struct {
		Body struct {
			List       []int `json:"list"`
			Pagination struct {
				TotalCount uint64 `json:"total_count"`
				TotalPages int    `json:"total_pages"`
			} `json:"pagination"`
		} `json:"body"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []int{1, 2}, resp.Body.List)
	assert.Equal(t, uint64(5), resp.Body.Pagination.TotalCount)
	assert.Equal(t, 3, resp.Body.Pagination.TotalPages)
}

func TestFormatDateBR(t *testing.T) {
	assert.Equal(t, "05/03/2024", FormatDateBR("2024-03-05", "-"))
	assert.Equal(t, "05/03/2024", FormatDateBR("2024-03-05T10:00:00Z", "-"))
	assert.Equal(t, "-", FormatDateBR("  ", "-"))
	assert.Equal(t, "ontem", FormatDateBR("ontem", "-"))
	assert.Equal(t, "2024-03-05", Today(time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC)))
}
