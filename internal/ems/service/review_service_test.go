package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kidhasia/misty-ems/internal/ems/entity"
	"github.com/kidhasia/misty-ems/internal/ems/repository"
	"github.com/kidhasia/misty-ems/internal/ems/testutil"
)

func setupReviewTest(t *testing.T) (*ReviewService, *repository.Repositories, *fakeNotifier) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	notifier := &fakeNotifier{}
	svc := NewReviewService(repos, notifier, zap.NewNop())
	return svc, repos, notifier
}

func mustCreateQCTask(t *testing.T, svc *ReviewService) *entity.QCTask {
	t.Helper()
	task, err := svc.CreateQCTask(context.Background(), "editor-1", CreateQCTaskRequest{
		Name:        "Homepage copy",
		Description: "review the homepage copy for tone",
	})
	if err != nil {
		t.Fatalf("CreateQCTask failed: %v", err)
	}
	return task
}

func TestCreateQCTaskDefaults(t *testing.T) {
	svc, _, _ := setupReviewTest(t)
	task := mustCreateQCTask(t, svc)

	if task.QCStatus != entity.QCStatusPending {
		t.Fatalf("qc status %q, want Pending", task.QCStatus)
	}
	if task.Status != entity.TaskStatusPending {
		t.Fatalf("status %q, want Pending", task.Status)
	}
	if task.Priority != entity.PriorityLow {
		t.Fatalf("priority %q, want Low", task.Priority)
	}
	if task.SubmittedBy != "editor-1" {
		t.Fatalf("submitted_by %q, want editor-1", task.SubmittedBy)
	}
}

func TestTransitionTable(t *testing.T) {
	svc, _, _ := setupReviewTest(t)
	ctx := context.Background()

	task := mustCreateQCTask(t, svc)

	// Unknown target value is rejected up front.
	if _, _, err := svc.TransitionStatus(ctx, task.ID, TransitionRequest{QCStatus: "Rejected"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown status: got %v, want ErrValidation", err)
	}

	// Pending -> Needs Revision -> Pending -> Approved is a legal cycle.
	for _, target := range []string{entity.QCStatusNeedsRevision, entity.QCStatusPending, entity.QCStatusApproved} {
		if _, _, err := svc.TransitionStatus(ctx, task.ID, TransitionRequest{QCStatus: target}); err != nil {
			t.Fatalf("transition to %q failed: %v", target, err)
		}
	}

	// Approved is terminal; same-state updates are still allowed.
	if _, _, err := svc.TransitionStatus(ctx, task.ID, TransitionRequest{QCStatus: entity.QCStatusPending}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Approved -> Pending: got %v, want ErrInvalidTransition", err)
	}
	if _, _, err := svc.TransitionStatus(ctx, task.ID, TransitionRequest{QCStatus: entity.QCStatusApproved}); err != nil {
		t.Fatalf("Approved -> Approved failed: %v", err)
	}

	got, err := svc.GetQCTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetQCTask failed: %v", err)
	}
	if got.Status != entity.TaskStatusCompleted {
		t.Fatalf("approved task status %q, want Completed", got.Status)
	}
}

func TestRevisionMailDispatchedOnce(t *testing.T) {
	svc, _, notifier := setupReviewTest(t)
	ctx := context.Background()

	task := mustCreateQCTask(t, svc)

	deadline := time.Now().Add(48 * time.Hour)
	_, warning, err := svc.TransitionStatus(ctx, task.ID, TransitionRequest{
		QCStatus:         entity.QCStatusNeedsRevision,
		QCRemarks:        "tighten the second paragraph",
		RevisionDeadline: &deadline,
		NotifyEmail:      "editor@test.com",
	})
	if err != nil {
		t.Fatalf("TransitionStatus failed: %v", err)
	}
	if warning != "" {
		t.Fatalf("unexpected warning %q", warning)
	}

	mails := notifier.mails()
	if len(mails) != 1 {
		t.Fatalf("got %d mails, want exactly 1", len(mails))
	}
	m := mails[0]
	if m.To != "editor@test.com" {
		t.Fatalf("mail to %q, want editor@test.com", m.To)
	}
	if m.Subject != "Revision Required: Homepage copy" {
		t.Fatalf("mail subject %q", m.Subject)
	}
	if !strings.Contains(m.Body, "tighten the second paragraph") {
		t.Fatalf("mail body missing remarks: %q", m.Body)
	}
}

func TestRevisionMailNotSentWithoutRemarksOrRecipient(t *testing.T) {
	svc, _, notifier := setupReviewTest(t)
	ctx := context.Background()

	a := mustCreateQCTask(t, svc)
	if _, _, err := svc.TransitionStatus(ctx, a.ID, TransitionRequest{
		QCStatus:    entity.QCStatusNeedsRevision,
		NotifyEmail: "editor@test.com",
	}); err != nil {
		t.Fatalf("TransitionStatus failed: %v", err)
	}

	b := mustCreateQCTask(t, svc)
	if _, _, err := svc.TransitionStatus(ctx, b.ID, TransitionRequest{
		QCStatus:  entity.QCStatusNeedsRevision,
		QCRemarks: "needs work",
	}); err != nil {
		t.Fatalf("TransitionStatus failed: %v", err)
	}

	if mails := notifier.mails(); len(mails) != 0 {
		t.Fatalf("got %d mails, want 0", len(mails))
	}
}

func TestRevisionMailFailureKeepsUpdate(t *testing.T) {
	svc, _, notifier := setupReviewTest(t)
	notifier.fail = true
	ctx := context.Background()

	task := mustCreateQCTask(t, svc)

	updated, warning, err := svc.TransitionStatus(ctx, task.ID, TransitionRequest{
		QCStatus:    entity.QCStatusNeedsRevision,
		QCRemarks:   "needs work",
		NotifyEmail: "editor@test.com",
	})
	if err != nil {
		t.Fatalf("TransitionStatus failed: %v", err)
	}
	if warning != transitionWarning {
		t.Fatalf("warning %q, want %q", warning, transitionWarning)
	}
	if updated.QCStatus != entity.QCStatusNeedsRevision {
		t.Fatalf("status %q, want Needs Revision", updated.QCStatus)
	}

	stored, err := svc.GetQCTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetQCTask failed: %v", err)
	}
	if stored.QCStatus != entity.QCStatusNeedsRevision {
		t.Fatal("update not persisted after mail failure")
	}
}

func TestFeedbackLifecycle(t *testing.T) {
	svc, _, _ := setupReviewTest(t)
	ctx := context.Background()

	task := mustCreateQCTask(t, svc)

	fb, err := svc.RecordFeedback(ctx, "qc-1", RecordFeedbackRequest{
		TaskID:    task.ID,
		QCRemarks: "check the links",
	})
	if err != nil {
		t.Fatalf("RecordFeedback failed: %v", err)
	}
	if fb.EditorID != "qc-1" {
		t.Fatalf("editor id %q, want qc-1", fb.EditorID)
	}

	updated, err := svc.UpdateFeedback(ctx, fb.ID, "check the links and images")
	if err != nil {
		t.Fatalf("UpdateFeedback failed: %v", err)
	}
	if updated.QCRemarks != "check the links and images" {
		t.Fatalf("remarks %q", updated.QCRemarks)
	}

	list, err := svc.ListFeedback(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListFeedback failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d feedbacks, want 1", len(list))
	}

	if err := svc.DeleteFeedback(ctx, fb.ID); err != nil {
		t.Fatalf("DeleteFeedback failed: %v", err)
	}
	if err := svc.DeleteFeedback(ctx, fb.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestGenerateReportSnapshotsCurrentState(t *testing.T) {
	svc, _, _ := setupReviewTest(t)
	ctx := context.Background()

	task := mustCreateQCTask(t, svc)
	if _, _, err := svc.TransitionStatus(ctx, task.ID, TransitionRequest{
		QCStatus:  entity.QCStatusNeedsRevision,
		QCRemarks: "fix header",
	}); err != nil {
		t.Fatalf("TransitionStatus failed: %v", err)
	}

	report, err := svc.GenerateReport(ctx, task.ID)
	if err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}
	if report.Status != entity.QCStatusNeedsRevision || report.QCRemarks != "fix header" {
		t.Fatalf("report snapshot wrong: %+v", report)
	}

	reports, err := svc.ListReports(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
}

func seedEmployee(t *testing.T, repos *repository.Repositories, id, role string) {
	t.Helper()
	err := repos.Employee.Create(context.Background(), &entity.Employee{
		ID:           id,
		Name:         "Emp " + id,
		Email:        id + "@test.com",
		Role:         role,
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("seed employee %s: %v", id, err)
	}
}

func TestAssignValidatesTaskAndAssignee(t *testing.T) {
	svc, repos, _ := setupReviewTest(t)
	ctx := context.Background()

	seedEmployee(t, repos, "gm-1", entity.RoleGeneralManager)
	seedEmployee(t, repos, "pm-1", entity.RoleProjectManager)
	seedEmployee(t, repos, "ed-1", entity.RoleEditor)

	task := &entity.Task{ClientID: "client-1", Description: "build a site", Deadline: time.Now().Add(time.Hour)}
	if err := repos.Task.Create(ctx, task); err != nil {
		t.Fatalf("seed task: %v", err)
	}

	if _, err := svc.Assign(ctx, "gm-1", AssignRequest{TaskID: 9999, AssignedToID: "pm-1"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing task: got %v, want ErrNotFound", err)
	}
	if _, err := svc.Assign(ctx, "gm-1", AssignRequest{TaskID: task.ID, AssignedToID: "ghost"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing assignee: got %v, want ErrNotFound", err)
	}
	if _, err := svc.Assign(ctx, "gm-1", AssignRequest{TaskID: task.ID, AssignedToID: "ed-1"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("non-PM assignee: got %v, want ErrValidation", err)
	}

	assignment, err := svc.Assign(ctx, "gm-1", AssignRequest{
		TaskID:       task.ID,
		AssignedToID: "pm-1",
		Instructions: "start with the wireframes",
	})
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if assignment.Status != entity.AssignmentStatusAssigned {
		t.Fatalf("status %q, want assigned", assignment.Status)
	}

	inbox, err := svc.ListAssignedTo(ctx, "pm-1")
	if err != nil {
		t.Fatalf("ListAssignedTo failed: %v", err)
	}
	if len(inbox) != 1 {
		t.Fatalf("got %d assignments, want 1", len(inbox))
	}
	got := inbox[0]
	if got.Task == nil || got.Task.Description != "build a site" {
		t.Fatalf("task not preloaded: %+v", got.Task)
	}
	if got.AssignedBy == nil || got.AssignedBy.ID != "gm-1" {
		t.Fatalf("assigned_by not preloaded: %+v", got.AssignedBy)
	}
	if got.AssignedTo == nil || got.AssignedTo.ID != "pm-1" {
		t.Fatalf("assigned_to not preloaded: %+v", got.AssignedTo)
	}
}
