package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorMirrorsHTTPStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-9")

	NotFound(c, "not found")

	if w.Code != http.StatusNotFound {
		t.Fatalf("http status want 404 got %d", w.Code)
	}
	var resp struct {
		StatusCode int               `json:"status_code"`
		Msg        string            `json:"msg"`
		Data       map[string]string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if resp.StatusCode != CodeNotFound || resp.Msg != "not found" || resp.Data["request_id"] != "req-9" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestBuildPagination(t *testing.T) {
	p := BuildPagination(2, 20, 41)
	if p.TotalPage != 3 || p.Page != 2 || p.PageSize != 20 || p.Total != 41 {
		t.Fatalf("unexpected pagination: %+v", p)
	}
	if BuildPagination(1, 0, 10).TotalPage != 0 {
		t.Fatalf("zero page size should yield zero total pages")
	}
}

func TestCreatedAndNoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Created(c, gin.H{"id": 1})
	if w.Code != http.StatusCreated {
		t.Fatalf("created status want 201 got %d", w.Code)
	}

	r := gin.New()
	r.POST("/logout", func(c *gin.Context) { NoContent(c) })
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodPost, "/logout", nil))
	if w2.Code != http.StatusNoContent || w2.Body.Len() != 0 {
		t.Fatalf("no content want 204 with empty body, got %d %q", w2.Code, w2.Body.String())
	}
}

func TestWrapErrorAndFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cause := errors.New("connection reset")
	wrapped := fmt.Errorf("load cart: %w", WrapError(CodeBadRequest, "insufficient stock", cause))

	appErr, ok := AsAppError(wrapped)
	if !ok || appErr.Code != CodeBadRequest || !errors.Is(wrapped, cause) {
		t.Fatalf("app error should be found through the chain: %+v", appErr)
	}
	if WrapError(302, "redirect", nil).Code != CodeInternal {
		t.Fatalf("non error codes should collapse to 500")
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	FromError(c, wrapped)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("from error want 400 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	FromError(c, cause)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("plain error want 500 got %d", w.Code)
	}
}
