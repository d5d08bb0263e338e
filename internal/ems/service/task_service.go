package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kidhasia/misty-ems/internal/ems/entity"
	"github.com/kidhasia/misty-ems/internal/ems/repository"
)

// TaskService owns the client task registry. Every submitted description
// is summarized up front so listings never need to call out.
type TaskService struct {
	taskRepo   *repository.TaskRepository
	summarizer Summarizer
	logger     *zap.Logger
}

func NewTaskService(taskRepo *repository.TaskRepository, summarizer Summarizer, logger *zap.Logger) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		summarizer: summarizer,
		logger:     logger,
	}
}

// SubmitTaskRequest carries a new task. Attachment is the stored object
// path, already persisted by the handler before the service runs.
type SubmitTaskRequest struct {
	ClientID    string
	Description string
	Deadline    time.Time
	Attachment  string
}

// SubmitTask summarizes the description and stores the task. The database
// assigns the sequence id on insert.
func (s *TaskService) SubmitTask(ctx context.Context, req SubmitTaskRequest) (*entity.Task, error) {
	if req.Description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if req.Deadline.IsZero() {
		return nil, fmt.Errorf("%w: deadline is required", ErrValidation)
	}

	summary, degraded := s.summarizer.Summarize(ctx, req.Description)

	now := time.Now()
	task := &entity.Task{
		ClientID:        req.ClientID,
		Description:     req.Description,
		Deadline:        req.Deadline,
		Attachment:      req.Attachment,
		Summary:         summary,
		SummaryDegraded: degraded,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info("task submitted",
		zap.Int64("task_id", task.ID),
		zap.String("client_id", task.ClientID),
		zap.Bool("summary_degraded", degraded))

	return task, nil
}

// ListTasks returns all tasks with their owning client preloaded.
func (s *TaskService) ListTasks(ctx context.Context) ([]entity.Task, error) {
	return s.taskRepo.ListAll(ctx)
}

// ListTasksByClient returns the calling client's own tasks.
func (s *TaskService) ListTasksByClient(ctx context.Context, clientID string) ([]entity.Task, error) {
	return s.taskRepo.ListByClient(ctx, clientID)
}

// GetTask returns one task by sequence id.
func (s *TaskService) GetTask(ctx context.Context, id int64) (*entity.Task, error) {
	return s.taskRepo.FindByID(ctx, id)
}

// UpdateTaskRequest carries a task edit. Nil fields are left unchanged.
type UpdateTaskRequest struct {
	Description *string
	Deadline    *time.Time
	Attachment  *string
}

// UpdateTask applies an edit to the caller's own task. The summary is
// regenerated only when the description actually changed.
func (s *TaskService) UpdateTask(ctx context.Context, clientID string, id int64, req UpdateTaskRequest) (*entity.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.ClientID != clientID {
		return nil, ErrForbidden
	}

	if req.Description != nil && *req.Description != task.Description {
		if *req.Description == "" {
			return nil, fmt.Errorf("%w: description cannot be empty", ErrValidation)
		}
		task.Description = *req.Description
		task.Summary, task.SummaryDegraded = s.summarizer.Summarize(ctx, task.Description)
	}
	if req.Deadline != nil {
		task.Deadline = *req.Deadline
	}
	if req.Attachment != nil {
		task.Attachment = *req.Attachment
	}
	task.UpdatedAt = time.Now()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// DeleteTask removes the caller's own task.
func (s *TaskService) DeleteTask(ctx context.Context, clientID string, id int64) error {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if task.ClientID != clientID {
		return ErrForbidden
	}
	return s.taskRepo.Delete(ctx, id)
}
