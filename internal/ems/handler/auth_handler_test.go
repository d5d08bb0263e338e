package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kidhasia/misty-ems/internal/ems/entity"
	"github.com/kidhasia/misty-ems/internal/ems/repository"
	"github.com/kidhasia/misty-ems/internal/ems/service"
	"github.com/kidhasia/misty-ems/internal/ems/testutil"
	"github.com/kidhasia/misty-ems/internal/middleware"
)

func setupAuthHandlerTest(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := service.NewAuthService(repos.Client, repos.Employee, noopNotifier{}, testutil.TestConfig(), zap.NewNop())
	h := NewAuthHandler(svc)

	r := testutil.SetupRouter()
	r.POST("/api/v1/auth/client/register", h.RegisterClient)

	clients := testutil.AuthGroup(r, "/api/v1/clients")
	clients.Use(middleware.RequireRole(entity.RoleAdmin))
	clients.GET("/:id", h.GetClient)
	clients.PUT("/:id", h.UpdateClient)
	return r
}

func registerClientHTTP(t *testing.T, r *gin.Engine, name, email string) string {
	t.Helper()
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/auth/client/register", map[string]interface{}{
		"name":     name,
		"email":    email,
		"phone":    "555-0100",
		"city":     "Lahore",
		"password": "secret123",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", email, w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(t, w)
	return resp["data"].(map[string]interface{})["id"].(string)
}

func TestUpdateClientProfile(t *testing.T) {
	r := setupAuthHandlerTest(t)
	id := registerClientHTTP(t, r, "Asim", "asim@example.com")
	admin := testutil.EmployeeToken("adm-1", entity.RoleAdmin)

	w := testutil.DoRequest(r, http.MethodPut, "/api/v1/clients/"+id, map[string]interface{}{
		"phone": "555-0199",
		"city":  "Karachi",
	}, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("update: status %d, body %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(t, w)
	data := resp["data"].(map[string]interface{})
	if data["city"] != "Karachi" || data["phone"] != "555-0199" {
		t.Fatalf("patch not applied: %s", w.Body.String())
	}
	if data["name"] != "Asim" || data["email"] != "asim@example.com" {
		t.Fatalf("untouched fields changed: %s", w.Body.String())
	}

	// Moving to an email held by another client fails.
	registerClientHTTP(t, r, "Bina", "bina@example.com")
	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/clients/"+id, map[string]interface{}{
		"email": "bina@example.com",
	}, admin)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate email: status %d, want 400, body %s", w.Code, w.Body.String())
	}

	// Re-submitting the current email is a no-op, not a duplicate.
	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/clients/"+id, map[string]interface{}{
		"email": "asim@example.com",
	}, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("same email: status %d, body %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/clients/"+missingRecordID(), map[string]interface{}{
		"city": "Multan",
	}, admin)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing client: status %d, want 404", w.Code)
	}
}

func TestRegisterDuplicateEmailIsBadRequest(t *testing.T) {
	r := setupAuthHandlerTest(t)
	registerClientHTTP(t, r, "Asim", "asim@example.com")

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/auth/client/register", map[string]interface{}{
		"name":     "Asim Again",
		"email":    "asim@example.com",
		"phone":    "555-0101",
		"city":     "Lahore",
		"password": "secret123",
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400, body %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(t, w)
	if resp["code"].(float64) != 40000 {
		t.Fatalf("business code %v, want 40000", resp["code"])
	}
}

func missingRecordID() string {
	return "00000000000000000000000000000000"
}
