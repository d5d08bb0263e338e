package service

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kidhasia/misty-ems/internal/ems/entity"
	"github.com/kidhasia/misty-ems/internal/ems/repository"
	"github.com/kidhasia/misty-ems/internal/ems/testutil"
)

func TestExportQCReports(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	review := NewReviewService(repos, &fakeNotifier{}, zap.NewNop())
	export := NewExportService(repos.QCReport, repos.QCTask)
	ctx := context.Background()

	task, err := review.CreateQCTask(ctx, "editor-1", CreateQCTaskRequest{
		Name:        "Landing page",
		Description: "review the landing page",
	})
	if err != nil {
		t.Fatalf("CreateQCTask failed: %v", err)
	}
	if _, _, err := review.TransitionStatus(ctx, task.ID, TransitionRequest{
		QCStatus:  entity.QCStatusNeedsRevision,
		QCRemarks: "rework the hero image",
	}); err != nil {
		t.Fatalf("TransitionStatus failed: %v", err)
	}
	if _, err := review.GenerateReport(ctx, task.ID); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	f, filename, err := export.ExportQCReports(ctx)
	if err != nil {
		t.Fatalf("ExportQCReports failed: %v", err)
	}
	defer f.Close()

	if !strings.HasPrefix(filename, "qc_reports_") || !strings.HasSuffix(filename, ".xlsx") {
		t.Fatalf("unexpected filename %q", filename)
	}

	sheet := "QC Reports"
	header, err := f.GetCellValue(sheet, "A1")
	if err != nil {
		t.Fatalf("GetCellValue failed: %v", err)
	}
	if header != "Report ID" {
		t.Fatalf("header A1 = %q, want Report ID", header)
	}

	name, _ := f.GetCellValue(sheet, "B2")
	if name != "Landing page" {
		t.Fatalf("B2 = %q, want task name", name)
	}
	status, _ := f.GetCellValue(sheet, "C2")
	if status != entity.QCStatusNeedsRevision {
		t.Fatalf("C2 = %q, want Needs Revision", status)
	}
	remarks, _ := f.GetCellValue(sheet, "D2")
	if remarks != "rework the hero image" {
		t.Fatalf("D2 = %q", remarks)
	}
}
