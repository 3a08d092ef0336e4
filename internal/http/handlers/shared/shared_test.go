package shared

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/greencart/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type bindProbe struct {
	Email    string `json:"email" binding:"required,email"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Name     string `json:"name" binding:"notblank"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) (int, string) {
	t.Helper()
	var resp struct {
		StatusCode int    `json:"status_code"`
		Msg        string `json:"msg"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.StatusCode, resp.Msg
}

func TestBindJSONReportsJSONFieldNames(t *testing.T) {
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","quantity":0,"name":"  "}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var probe bindProbe
	require.False(t, BindJSON(c, &probe))
	require.Equal(t, http.StatusBadRequest, w.Code)
	code, msg := decodeEnvelope(t, w)
	require.Equal(t, 400, code)
	require.Contains(t, msg, "email: enter a valid email address")
	require.Contains(t, msg, "quantity: this field is required")
	require.Contains(t, msg, "name: this field is required")
}

func TestRespondServiceErrorTaxonomy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err      error
		status   int
		contains string
	}{
		{err: service.ErrNotFound, status: http.StatusNotFound, contains: "not found"},
		{err: service.ErrInsufficientStock, status: http.StatusBadRequest, contains: "insufficient stock"},
		{err: fmt.Errorf("%w: street is required", service.ErrValidation), status: http.StatusBadRequest, contains: "street is required"},
		{err: service.ErrInvalidCoupon, status: http.StatusBadRequest, contains: "invalid or expired coupon code"},
		{err: service.ErrInvalidCredentials, status: http.StatusUnauthorized, contains: "invalid credentials"},
		{err: service.ErrForbidden, status: http.StatusForbidden, contains: "permission"},
		{err: service.ErrSignatureInvalid, status: http.StatusBadRequest, contains: "invalid signature"},
		{err: fmt.Errorf("%w: stripe 502", service.ErrGateway), status: http.StatusBadRequest, contains: "payment gateway error"},
		{err: fmt.Errorf("db exploded"), status: http.StatusInternalServerError, contains: "internal server error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		RespondServiceError(c, tc.err)
		require.Equal(t, tc.status, w.Code, tc.err.Error())
		_, msg := decodeEnvelope(t, w)
		require.Contains(t, msg, tc.contains)
		require.NotContains(t, msg, "stripe 502")
	}
}

func TestNormalizePagination(t *testing.T) {
	page, size := NormalizePagination(0, 0)
	require.Equal(t, 1, page)
	require.Equal(t, 20, size)
	_, size = NormalizePagination(3, 1000)
	require.Equal(t, 100, size)
}

func TestGetActorAndParseID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(CustomerIDKey, uint(7))
	c.Set(IsStaffKey, true)
	actor, ok := GetActor(c)
	require.True(t, ok)
	require.Equal(t, service.Actor{CustomerID: 7, IsStaff: true}, actor)

	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	_, ok = ParseIDParam(c, "id")
	require.False(t, ok)
	require.Equal(t, http.StatusNotFound, w.Code)
}
