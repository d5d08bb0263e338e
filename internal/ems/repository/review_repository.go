package repository

import (
	"context"

	"github.com/kidhasia/misty-ems/internal/ems/entity"
	"gorm.io/gorm"
)

// QCTaskRepository persists review-cycle tasks.
type QCTaskRepository struct {
	db *gorm.DB
}

func NewQCTaskRepository(db *gorm.DB) *QCTaskRepository {
	return &QCTaskRepository{db: db}
}

func (r *QCTaskRepository) Create(ctx context.Context, task *entity.QCTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *QCTaskRepository) Update(ctx context.Context, task *entity.QCTask) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *QCTaskRepository) FindByID(ctx context.Context, id string) (*entity.QCTask, error) {
	var task entity.QCTask
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

func (r *QCTaskRepository) ListAll(ctx context.Context) ([]entity.QCTask, error) {
	var tasks []entity.QCTask
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

func (r *QCTaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.QCTask{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// QCFeedbackRepository persists append-only task remarks.
type QCFeedbackRepository struct {
	db *gorm.DB
}

func NewQCFeedbackRepository(db *gorm.DB) *QCFeedbackRepository {
	return &QCFeedbackRepository{db: db}
}

func (r *QCFeedbackRepository) Create(ctx context.Context, fb *entity.QCFeedback) error {
	return r.db.WithContext(ctx).Create(fb).Error
}

func (r *QCFeedbackRepository) Update(ctx context.Context, fb *entity.QCFeedback) error {
	return r.db.WithContext(ctx).Save(fb).Error
}

func (r *QCFeedbackRepository) FindByID(ctx context.Context, id string) (*entity.QCFeedback, error) {
	var fb entity.QCFeedback
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&fb).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &fb, nil
}

func (r *QCFeedbackRepository) ListByTask(ctx context.Context, taskID string) ([]entity.QCFeedback, error) {
	var feedbacks []entity.QCFeedback
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&feedbacks).Error
	return feedbacks, err
}

func (r *QCFeedbackRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.QCFeedback{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// QCReportRepository persists append-only review outcome records.
type QCReportRepository struct {
	db *gorm.DB
}

func NewQCReportRepository(db *gorm.DB) *QCReportRepository {
	return &QCReportRepository{db: db}
}

func (r *QCReportRepository) Create(ctx context.Context, report *entity.QCReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *QCReportRepository) ListByQCTask(ctx context.Context, qcTaskID string) ([]entity.QCReport, error) {
	var reports []entity.QCReport
	err := r.db.WithContext(ctx).
		Where("qc_task_id = ?", qcTaskID).
		Order("generated_at DESC").
		Find(&reports).Error
	return reports, err
}

func (r *QCReportRepository) ListAll(ctx context.Context) ([]entity.QCReport, error) {
	var reports []entity.QCReport
	err := r.db.WithContext(ctx).Order("generated_at DESC").Find(&reports).Error
	return reports, err
}

// AssignmentRepository persists GM-to-PM task assignments.
type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Create(ctx context.Context, a *entity.Assignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// ListByAssignee returns a PM's assignments with the original task and
// both employee identities resolved.
func (r *AssignmentRepository) ListByAssignee(ctx context.Context, pmID string) ([]entity.Assignment, error) {
	var assignments []entity.Assignment
	err := r.db.WithContext(ctx).
		Where("assigned_to_id = ?", pmID).
		Preload("Task").
		Preload("AssignedBy").
		Preload("AssignedTo").
		Order("assigned_at DESC").
		Find(&assignments).Error
	return assignments, err
}
