package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kidhasia/misty-ems/internal/ems/repository"
)

var qcReportExportHeaders = []string{
	"Report ID", "Task", "QC Status", "QC Remarks", "Generated At",
}

// ExportService renders QC review records as spreadsheets.
type ExportService struct {
	qcReportRepo *repository.QCReportRepository
	qcTaskRepo   *repository.QCTaskRepository
}

func NewExportService(qcReportRepo *repository.QCReportRepository, qcTaskRepo *repository.QCTaskRepository) *ExportService {
	return &ExportService{
		qcReportRepo: qcReportRepo,
		qcTaskRepo:   qcTaskRepo,
	}
}

// ExportQCReports writes every review record into a workbook, one row per
// report, and returns it with a dated filename.
func (s *ExportService) ExportQCReports(ctx context.Context) (*excelize.File, string, error) {
	reports, err := s.qcReportRepo.ListAll(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("list reports: %w", err)
	}

	f := excelize.NewFile()
	sheet := "QC Reports"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range qcReportExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	// Task names are resolved once per task, not once per report.
	names := make(map[string]string)
	for rowIdx, report := range reports {
		name, ok := names[report.QCTaskID]
		if !ok {
			if task, err := s.qcTaskRepo.FindByID(ctx, report.QCTaskID); err == nil {
				name = task.Name
			} else {
				name = report.QCTaskID
			}
			names[report.QCTaskID] = name
		}

		row := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), report.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), report.Status)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), report.QCRemarks)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), report.GeneratedAt.Format("2006-01-02 15:04:05"))
	}

	filename := fmt.Sprintf("qc_reports_%s.xlsx", time.Now().Format("20060102"))
	return f, filename, nil
}
