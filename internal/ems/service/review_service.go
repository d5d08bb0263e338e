package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kidhasia/misty-ems/internal/ems/entity"
	"github.com/kidhasia/misty-ems/internal/ems/repository"
)

// transitionWarning is returned alongside a successful revision update
// when the notification mail could not be dispatched.
const transitionWarning = "task updated but email notification failed"

// ReviewService owns the QC review cycle: review tasks, guarded status
// transitions with revision mails, feedback records, reports and the
// GM-to-PM assignment flow.
type ReviewService struct {
	qcTaskRepo     *repository.QCTaskRepository
	qcFeedbackRepo *repository.QCFeedbackRepository
	qcReportRepo   *repository.QCReportRepository
	assignmentRepo *repository.AssignmentRepository
	taskRepo       *repository.TaskRepository
	employeeRepo   *repository.EmployeeRepository
	notifier       Notifier
	logger         *zap.Logger
}

func NewReviewService(repos *repository.Repositories, notifier Notifier, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		qcTaskRepo:     repos.QCTask,
		qcFeedbackRepo: repos.QCFeedback,
		qcReportRepo:   repos.QCReport,
		assignmentRepo: repos.Assignment,
		taskRepo:       repos.Task,
		employeeRepo:   repos.Employee,
		notifier:       notifier,
		logger:         logger,
	}
}

// CreateQCTaskRequest carries a new review-cycle task.
type CreateQCTaskRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description" binding:"required"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	AssignedTo  string     `json:"assigned_to"`
	Attachments []string   `json:"attachments"`
}

// CreateQCTask stores a review task starting at Pending/Pending.
func (s *ReviewService) CreateQCTask(ctx context.Context, submittedBy string, req CreateQCTaskRequest) (*entity.QCTask, error) {
	priority := req.Priority
	if priority == "" {
		priority = entity.PriorityLow
	}
	switch priority {
	case entity.PriorityLow, entity.PriorityMedium, entity.PriorityHigh:
	default:
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, req.Priority)
	}

	now := time.Now()
	task := &entity.QCTask{
		ID:          generateID(),
		Name:        req.Name,
		Description: req.Description,
		Priority:    priority,
		Deadline:    req.Deadline,
		SubmittedBy: submittedBy,
		AssignedTo:  req.AssignedTo,
		QCStatus:    entity.QCStatusPending,
		Attachments: req.Attachments,
		Status:      entity.TaskStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.qcTaskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create qc task: %w", err)
	}
	return task, nil
}

// ListQCTasks returns all review tasks, newest first.
func (s *ReviewService) ListQCTasks(ctx context.Context) ([]entity.QCTask, error) {
	return s.qcTaskRepo.ListAll(ctx)
}

// GetQCTask returns one review task.
func (s *ReviewService) GetQCTask(ctx context.Context, id string) (*entity.QCTask, error) {
	return s.qcTaskRepo.FindByID(ctx, id)
}

// DeleteQCTask removes a review task.
func (s *ReviewService) DeleteQCTask(ctx context.Context, id string) error {
	return s.qcTaskRepo.Delete(ctx, id)
}

// TransitionRequest carries a review verdict.
type TransitionRequest struct {
	QCStatus         string     `json:"qc_status" binding:"required"`
	QCRemarks        string     `json:"qc_remarks"`
	RevisionDeadline *time.Time `json:"revision_deadline"`
	NotifyEmail      string     `json:"notify_email"`
}

// TransitionStatus applies a review verdict. Illegal moves are rejected
// against the transition table before anything is written. When the task
// moves to Needs Revision with remarks and a recipient, a single revision
// mail is dispatched; if the mail fails the update still stands and the
// returned warning says so.
func (s *ReviewService) TransitionStatus(ctx context.Context, id string, req TransitionRequest) (*entity.QCTask, string, error) {
	if !entity.ValidQCStatus(req.QCStatus) {
		return nil, "", fmt.Errorf("%w: unknown qc_status %q", ErrValidation, req.QCStatus)
	}

	task, err := s.qcTaskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !entity.QCTransitionAllowed(task.QCStatus, req.QCStatus) {
		return nil, "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, task.QCStatus, req.QCStatus)
	}

	task.QCStatus = req.QCStatus
	task.QCRemarks = req.QCRemarks
	task.RevisionDeadline = req.RevisionDeadline
	if req.QCStatus == entity.QCStatusApproved {
		task.Status = entity.TaskStatusCompleted
	}
	task.UpdatedAt = time.Now()

	if err := s.qcTaskRepo.Update(ctx, task); err != nil {
		return nil, "", fmt.Errorf("update qc task: %w", err)
	}

	warning := ""
	if req.QCStatus == entity.QCStatusNeedsRevision && req.QCRemarks != "" && req.NotifyEmail != "" {
		if err := s.sendRevisionMail(task, req.NotifyEmail); err != nil {
			s.logger.Warn("revision mail failed",
				zap.String("qc_task_id", task.ID),
				zap.Error(err))
			warning = transitionWarning
		}
	}
	return task, warning, nil
}

func (s *ReviewService) sendRevisionMail(task *entity.QCTask, to string) error {
	body := fmt.Sprintf("The task %q requires revision.\n\nRemarks: %s\n", task.Name, task.QCRemarks)
	if task.RevisionDeadline != nil {
		body += fmt.Sprintf("New deadline: %s\n", task.RevisionDeadline.Format("2006-01-02"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	return s.notifier.Send(ctx, to, "Revision Required: "+task.Name, body)
}

// RecordFeedbackRequest carries a new remark on a task.
type RecordFeedbackRequest struct {
	TaskID    string `json:"task_id" binding:"required"`
	QCRemarks string `json:"qc_remarks" binding:"required"`
}

// RecordFeedback appends a remark to a task on behalf of the caller.
func (s *ReviewService) RecordFeedback(ctx context.Context, editorID string, req RecordFeedbackRequest) (*entity.QCFeedback, error) {
	fb := &entity.QCFeedback{
		ID:        generateID(),
		TaskID:    req.TaskID,
		QCRemarks: req.QCRemarks,
		EditorID:  editorID,
		CreatedAt: time.Now(),
	}
	if err := s.qcFeedbackRepo.Create(ctx, fb); err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	return fb, nil
}

// ListFeedback returns a task's remarks in submission order.
func (s *ReviewService) ListFeedback(ctx context.Context, taskID string) ([]entity.QCFeedback, error) {
	return s.qcFeedbackRepo.ListByTask(ctx, taskID)
}

// UpdateFeedback replaces a remark's text.
func (s *ReviewService) UpdateFeedback(ctx context.Context, id, remarks string) (*entity.QCFeedback, error) {
	fb, err := s.qcFeedbackRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fb.QCRemarks = remarks
	if err := s.qcFeedbackRepo.Update(ctx, fb); err != nil {
		return nil, fmt.Errorf("update feedback: %w", err)
	}
	return fb, nil
}

// DeleteFeedback removes a remark.
func (s *ReviewService) DeleteFeedback(ctx context.Context, id string) error {
	return s.qcFeedbackRepo.Delete(ctx, id)
}

// GenerateReport snapshots a task's current review outcome as an
// append-only record.
func (s *ReviewService) GenerateReport(ctx context.Context, qcTaskID string) (*entity.QCReport, error) {
	task, err := s.qcTaskRepo.FindByID(ctx, qcTaskID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	report := &entity.QCReport{
		ID:          generateID(),
		QCTaskID:    task.ID,
		QCRemarks:   task.QCRemarks,
		Status:      task.QCStatus,
		GeneratedAt: now,
		CreatedAt:   now,
	}
	if err := s.qcReportRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	return report, nil
}

// ListReports returns a task's review records, newest first.
func (s *ReviewService) ListReports(ctx context.Context, qcTaskID string) ([]entity.QCReport, error) {
	return s.qcReportRepo.ListByQCTask(ctx, qcTaskID)
}

// AssignRequest carries a GM-to-PM assignment.
type AssignRequest struct {
	TaskID       int64  `json:"task_id" binding:"required"`
	AssignedToID string `json:"assigned_to_id" binding:"required"`
	Instructions string `json:"instructions"`
}

// Assign hands an original client task to a project manager. Both the
// task and the assignee must exist, and the assignee must actually hold
// the project_manager role.
func (s *ReviewService) Assign(ctx context.Context, assignedByID string, req AssignRequest) (*entity.Assignment, error) {
	if _, err := s.taskRepo.FindByID(ctx, req.TaskID); err != nil {
		return nil, err
	}
	assignee, err := s.employeeRepo.FindByID(ctx, req.AssignedToID)
	if err != nil {
		return nil, err
	}
	if assignee.Role != entity.RoleProjectManager {
		return nil, fmt.Errorf("%w: assignee is not a project manager", ErrValidation)
	}

	assignment := &entity.Assignment{
		ID:           generateID(),
		TaskID:       req.TaskID,
		AssignedByID: assignedByID,
		AssignedToID: req.AssignedToID,
		Instructions: req.Instructions,
		Status:       entity.AssignmentStatusAssigned,
		AssignedAt:   time.Now(),
	}
	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	s.logger.Info("task assigned",
		zap.Int64("task_id", req.TaskID),
		zap.String("assigned_to", req.AssignedToID))

	return assignment, nil
}

// ListAssignedTo returns a PM's inbox with the task and both employees
// resolved.
func (s *ReviewService) ListAssignedTo(ctx context.Context, pmID string) ([]entity.Assignment, error) {
	return s.assignmentRepo.ListByAssignee(ctx, pmID)
}

// SendMailRequest carries an explicit mail dispatch.
type SendMailRequest struct {
	To      string `json:"to" binding:"required,email"`
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

// SendMail dispatches a one-off mail on behalf of the review team.
func (s *ReviewService) SendMail(ctx context.Context, req SendMailRequest) error {
	return s.notifier.Send(ctx, req.To, req.Subject, req.Body)
}
