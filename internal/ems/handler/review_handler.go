package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kidhasia/misty-ems/internal/ems/service"
)

// ReviewHandler serves the QC review cycle: review tasks, verdicts,
// feedback, reports, assignments, ad-hoc mail and the spreadsheet export.
type ReviewHandler struct {
	svc    *service.ReviewService
	export *service.ExportService
}

func NewReviewHandler(svc *service.ReviewService, export *service.ExportService) *ReviewHandler {
	return &ReviewHandler{svc: svc, export: export}
}

// qcTaskID validates the :id path segment before it reaches the database.
// Ids are the first 32 chars of a canonical UUID.
func qcTaskID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if len(id) != 32 {
		BadRequest(c, "invalid task id")
		return "", false
	}
	return id, true
}

// CreateQCTask POST /qc/tasks
func (h *ReviewHandler) CreateQCTask(c *gin.Context) {
	var req service.CreateQCTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	task, err := h.svc.CreateQCTask(c.Request.Context(), GetUserID(c), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Created(c, task)
}

// ListQCTasks GET /qc/tasks
func (h *ReviewHandler) ListQCTasks(c *gin.Context) {
	tasks, err := h.svc.ListQCTasks(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": tasks})
}

// GetQCTask GET /qc/tasks/:id
func (h *ReviewHandler) GetQCTask(c *gin.Context) {
	id, ok := qcTaskID(c)
	if !ok {
		return
	}

	task, err := h.svc.GetQCTask(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, task)
}

// DeleteQCTask DELETE /qc/tasks/:id
func (h *ReviewHandler) DeleteQCTask(c *gin.Context) {
	id, ok := qcTaskID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteQCTask(c.Request.Context(), id); err != nil {
		serviceError(c, err)
		return
	}
	Success(c, gin.H{"message": "task deleted"})
}

// Transition PUT /qc/tasks/:id/status
func (h *ReviewHandler) Transition(c *gin.Context) {
	id, ok := qcTaskID(c)
	if !ok {
		return
	}

	var req service.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	task, warning, err := h.svc.TransitionStatus(c.Request.Context(), id, req)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    task,
		Warning: warning,
	})
}

// RecordFeedback POST /qc/feedback
func (h *ReviewHandler) RecordFeedback(c *gin.Context) {
	var req service.RecordFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	fb, err := h.svc.RecordFeedback(c.Request.Context(), GetUserID(c), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Created(c, fb)
}

// ListFeedback GET /qc/tasks/:id/feedback
func (h *ReviewHandler) ListFeedback(c *gin.Context) {
	id, ok := qcTaskID(c)
	if !ok {
		return
	}

	feedbacks, err := h.svc.ListFeedback(c.Request.Context(), id)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	if len(feedbacks) == 0 {
		NotFound(c, "no feedback recorded for this task")
		return
	}
	Success(c, gin.H{"items": feedbacks})
}

type updateFeedbackRequest struct {
	QCRemarks string `json:"qc_remarks" binding:"required"`
}

// UpdateFeedback PUT /qc/feedback/:id
func (h *ReviewHandler) UpdateFeedback(c *gin.Context) {
	var req updateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	fb, err := h.svc.UpdateFeedback(c.Request.Context(), c.Param("id"), req.QCRemarks)
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, fb)
}

// DeleteFeedback DELETE /qc/feedback/:id
func (h *ReviewHandler) DeleteFeedback(c *gin.Context) {
	if err := h.svc.DeleteFeedback(c.Request.Context(), c.Param("id")); err != nil {
		serviceError(c, err)
		return
	}
	Success(c, gin.H{"message": "feedback deleted"})
}

// GenerateReport POST /qc/tasks/:id/report
func (h *ReviewHandler) GenerateReport(c *gin.Context) {
	id, ok := qcTaskID(c)
	if !ok {
		return
	}

	report, err := h.svc.GenerateReport(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	Created(c, report)
}

// ListReports GET /qc/tasks/:id/reports
func (h *ReviewHandler) ListReports(c *gin.Context) {
	id, ok := qcTaskID(c)
	if !ok {
		return
	}

	reports, err := h.svc.ListReports(c.Request.Context(), id)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": reports})
}

// ExportReports GET /qc/reports/export
func (h *ReviewHandler) ExportReports(c *gin.Context) {
	f, filename, err := h.export.ExportQCReports(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}

// Assign POST /assignments
func (h *ReviewHandler) Assign(c *gin.Context) {
	var req service.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	assignment, err := h.svc.Assign(c.Request.Context(), GetUserID(c), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Created(c, assignment)
}

// ListAssignments GET /assignments. A PM's inbox comes from the token,
// not from a query parameter.
func (h *ReviewHandler) ListAssignments(c *gin.Context) {
	assignments, err := h.svc.ListAssignedTo(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": assignments})
}

// SendMail POST /qc/send-email
func (h *ReviewHandler) SendMail(c *gin.Context) {
	var req service.SendMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if err := h.svc.SendMail(c.Request.Context(), req); err != nil {
		InternalError(c, "send mail: "+err.Error())
		return
	}
	Success(c, gin.H{"message": "email sent"})
}
