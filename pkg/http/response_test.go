package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorResponseUsesStatus(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	err := fmt.Errorf("wrapped: %w", InsufficientDataError("split", 3, 5))
	require.NoError(t, AppErrorResponse(c, err))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusUnprocessableEntity, body.Status)
	assert.Contains(t, rec.Body.String(), `"code":"ERR_INSUFFICIENT_DATA"`)
	assert.Contains(t, rec.Body.String(), `"need":5`)
}

func TestAppErrorResponseFallsBackTo500(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, AppErrorResponse(c, errors.New("dsn password=hunter2")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

type sampleRequest struct {
	Name  string `query:"name" validate:"required"`
	Scale int    `query:"scale" default:"3" validate:"gte=1"`
}

func TestReadAndValidateRequest(t *testing.T) {
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?name=x", nil), httptest.NewRecorder())
	var ok sampleRequest
	assert.Nil(t, ReadAndValidateRequest(c, &ok))
	assert.Equal(t, 3, ok.Scale)

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	var bad sampleRequest
	errs := ReadAndValidateRequest(c, &bad)
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_REQUIRED", errs[0].Code)
	assert.Equal(t, "Name", errs[0].Field)
}

func TestAppErrorUnwrap(t *testing.T) {
	base := errors.New("base")
	err := InternalError("failed").WithError(base)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "failed: base", err.Error())
}
