package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kidhasia/misty-ems/internal/ems/entity"
	"github.com/kidhasia/misty-ems/internal/ems/repository"
	"github.com/kidhasia/misty-ems/internal/ems/service"
	"github.com/kidhasia/misty-ems/internal/ems/testutil"
)

func setupCardTest(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	h := NewCardHandler(service.NewCardService(repos.Card))

	r := testutil.SetupRouter()
	cards := testutil.AuthGroup(r, "/api/v1/cards")
	cards.POST("", h.Create)
	cards.GET("", h.List)
	cards.PUT("/:id", h.Update)
	cards.DELETE("/:id", h.Delete)
	return r
}

func TestCardLifecycle(t *testing.T) {
	r := setupCardTest(t)
	token := testutil.EmployeeToken("emp-1", entity.RoleEditor)

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/cards", map[string]interface{}{
		"content":     "Draft launch email",
		"description": "first pass at the launch announcement",
		"due_date":    time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"tags":        []string{"marketing"},
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", w.Code, w.Body.String())
	}
	created := testutil.ParseResponse(t, w)
	data := created["data"].(map[string]interface{})
	cardID := data["id"].(string)
	if data["status"] != entity.CardStatusTodo {
		t.Fatalf("default status %v, want todo", data["status"])
	}
	if data["priority"] != entity.PriorityMedium {
		t.Fatalf("default priority %v, want Medium", data["priority"])
	}

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/cards", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	list := testutil.ParseResponse(t, w)
	items := list["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("got %d cards, want 1", len(items))
	}

	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/cards/"+cardID, map[string]interface{}{
		"status": entity.CardStatusDone,
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("update: status %d, body %s", w.Code, w.Body.String())
	}
	updated := testutil.ParseResponse(t, w)
	if updated["data"].(map[string]interface{})["status"] != entity.CardStatusDone {
		t.Fatalf("status not moved: %s", w.Body.String())
	}

	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/cards/"+cardID, map[string]interface{}{
		"status": "archived",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad status: got %d, want 400", w.Code)
	}

	w = testutil.DoRequest(r, http.MethodDelete, "/api/v1/cards/"+cardID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status %d", w.Code)
	}
	w = testutil.DoRequest(r, http.MethodDelete, "/api/v1/cards/"+cardID, nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: got %d, want 404", w.Code)
	}
}

func TestCardRoutesOpenToAnyAuthenticatedUser(t *testing.T) {
	r := setupCardTest(t)

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/cards", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: got %d, want 401", w.Code)
	}

	// Clients can work the board too.
	clientToken := testutil.ClientToken("client-1")
	w = testutil.DoRequest(r, http.MethodPost, "/api/v1/cards", map[string]interface{}{
		"content": "Share launch feedback",
	}, clientToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("client create: got %d, want 201, body %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/cards", nil, clientToken)
	if w.Code != http.StatusOK {
		t.Fatalf("client list: got %d, want 200", w.Code)
	}

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/cards", nil, testutil.EmployeeToken("admin-1", entity.RoleAdmin))
	if w.Code != http.StatusOK {
		t.Fatalf("admin token: got %d, want 200", w.Code)
	}
}

func TestCardUpdateMissingCard(t *testing.T) {
	r := setupCardTest(t)
	token := testutil.EmployeeToken("emp-1", entity.RoleEditor)

	missing := fmt.Sprintf("%032d", 7)
	w := testutil.DoRequest(r, http.MethodPut, "/api/v1/cards/"+missing, map[string]interface{}{
		"content": "whatever",
	}, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", w.Code)
	}
}
