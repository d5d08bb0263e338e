package handler

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestInternalErrorHidesDetailOutsideDebug(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	InternalError(c, `pq: password authentication failed for user "ems"`)
	if w.Code != 500 {
		t.Fatalf("status %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "pq:") {
		t.Fatalf("driver detail leaked: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "internal server error") {
		t.Fatalf("generic message missing: %s", w.Body.String())
	}

	gin.SetMode(gin.DebugMode)
	defer gin.SetMode(gin.TestMode)
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	InternalError(c, `pq: password authentication failed for user "ems"`)
	if !strings.Contains(w.Body.String(), "pq:") {
		t.Fatalf("debug mode should keep the detail: %s", w.Body.String())
	}
}
