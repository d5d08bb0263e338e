package handler

import (
	"context"
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

type noopNotifier struct{}

func (noopNotifier) Send(ctx context.Context, to, subject, body string) error { return nil }

func setupReviewHandlerTest(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	review := service.NewReviewService(repos, noopNotifier{}, zap.NewNop())
	export := service.NewExportService(repos.QCReport, repos.QCTask)
	h := NewReviewHandler(review, export)

	r := testutil.SetupRouter()
	qc := testutil.AuthGroup(r, "/api/v1/qc")
	qc.Use(middleware.RequireEmployee())
	qc.POST("/tasks", h.CreateQCTask)
	qc.GET("/tasks", h.ListQCTasks)
	qc.GET("/tasks/:id", h.GetQCTask)
	qc.PUT("/tasks/:id/status", middleware.RequireRole(entity.RoleQualityControl, entity.RoleGeneralManager), h.Transition)
	qc.POST("/feedback", h.RecordFeedback)
	qc.GET("/tasks/:id/feedback", h.ListFeedback)
	return r
}

func createQCTaskHTTP(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/qc/tasks", map[string]interface{}{
		"name":        "Newsletter draft",
		"description": "review wording and links",
	}, testutil.EmployeeToken("ed-1", entity.RoleEditor))
	if w.Code != http.StatusCreated {
		t.Fatalf("create qc task: status %d, body %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(t, w)
	return resp["data"].(map[string]interface{})["id"].(string)
}

func TestTransitionEndpoint(t *testing.T) {
	r := setupReviewHandlerTest(t)
	id := createQCTaskHTTP(t, r)
	qcToken := testutil.EmployeeToken("qc-1", entity.RoleQualityControl)

	// Only QC, GM or admin can move review status.
	w := testutil.DoRequest(r, http.MethodPut, "/api/v1/qc/tasks/"+id+"/status", map[string]interface{}{
		"qc_status": entity.QCStatusApproved,
	}, testutil.EmployeeToken("ed-1", entity.RoleEditor))
	if w.Code != http.StatusForbidden {
		t.Fatalf("editor transition: status %d, want 403", w.Code)
	}

	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/qc/tasks/"+id+"/status", map[string]interface{}{
		"qc_status":  entity.QCStatusNeedsRevision,
		"qc_remarks": "tighten the intro",
	}, testutil.EmployeeToken("gm-1", entity.RoleGeneralManager))
	if w.Code != http.StatusOK {
		t.Fatalf("gm transition: status %d, body %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/qc/tasks/"+id+"/status", map[string]interface{}{
		"qc_status": entity.QCStatusPending,
	}, qcToken)
	if w.Code != http.StatusOK {
		t.Fatalf("back to pending: status %d, body %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/qc/tasks/"+id+"/status", map[string]interface{}{
		"qc_status": entity.QCStatusApproved,
	}, qcToken)
	if w.Code != http.StatusOK {
		t.Fatalf("approve: status %d, body %s", w.Code, w.Body.String())
	}

	// Approved is terminal.
	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/qc/tasks/"+id+"/status", map[string]interface{}{
		"qc_status": entity.QCStatusNeedsRevision,
		"qc_remarks": "too late",
	}, qcToken)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("approved -> needs revision: status %d, want 400", w.Code)
	}
}

func TestTransitionRejectsMalformedID(t *testing.T) {
	r := setupReviewHandlerTest(t)
	qcToken := testutil.EmployeeToken("qc-1", entity.RoleQualityControl)

	w := testutil.DoRequest(r, http.MethodPut, "/api/v1/qc/tasks/not-an-id/status", map[string]interface{}{
		"qc_status": entity.QCStatusApproved,
	}, qcToken)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestListFeedbackEmptyIsNotFound(t *testing.T) {
	r := setupReviewHandlerTest(t)
	id := createQCTaskHTTP(t, r)
	token := testutil.EmployeeToken("qc-1", entity.RoleQualityControl)

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/qc/tasks/"+id+"/feedback", nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("no feedback yet: status %d, want 404, body %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(r, http.MethodPost, "/api/v1/qc/feedback", map[string]interface{}{
		"task_id":    id,
		"qc_remarks": "links all check out",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("record feedback: status %d, body %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/qc/tasks/"+id+"/feedback", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("with feedback: status %d, body %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(t, w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("got %d feedback items, want 1", len(items))
	}
}

func TestGetQCTaskMissing(t *testing.T) {
	r := setupReviewHandlerTest(t)
	missing := "00000000-0000-0000-0000-00000000"

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/qc/tasks/"+missing, nil,
		testutil.EmployeeToken("ed-1", entity.RoleEditor))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404, body %s", w.Code, w.Body.String())
	}
}
