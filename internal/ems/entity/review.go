package entity

import (
	"time"
)

// QC review states. QCStatus tracks the review cycle; Status is the
// coarse progress field kept separately, matching the board views.
const (
	QCStatusPending       = "Pending"
	QCStatusApproved      = "Approved"
	QCStatusNeedsRevision = "Needs Revision"

	TaskStatusPending    = "Pending"
	TaskStatusInProgress = "In Progress"
	TaskStatusCompleted  = "Completed"

	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// qcTransitions is the legal review-state table. Same-state updates are
// allowed so QC can refresh remarks or the revision deadline.
var qcTransitions = map[string][]string{
	QCStatusPending:       {QCStatusApproved, QCStatusNeedsRevision},
	QCStatusNeedsRevision: {QCStatusPending},
	QCStatusApproved:      {},
}

// QCTransitionAllowed reports whether moving from one qcStatus to another
// is legal.
func QCTransitionAllowed(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range qcTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidQCStatus reports whether s is a known qcStatus value.
func ValidQCStatus(s string) bool {
	switch s {
	case QCStatusPending, QCStatusApproved, QCStatusNeedsRevision:
		return true
	}
	return false
}

// QCTask is a task as tracked through the quality-control review cycle.
// Kept as its own collection, separate from Task, mirroring the board's
// data shape.
type QCTask struct {
	ID               string     `json:"id" gorm:"primaryKey;size:32"`
	Name             string     `json:"name" gorm:"size:200;not null"`
	Description      string     `json:"description" gorm:"type:text;not null"`
	Priority         string     `json:"priority" gorm:"size:16;not null;default:Low"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	SubmittedBy      string     `json:"submitted_by" gorm:"size:32;index"`
	AssignedTo       string     `json:"assigned_to" gorm:"size:128"`
	QCStatus         string     `json:"qc_status" gorm:"size:20;not null;default:Pending;index"`
	QCRemarks        string     `json:"qc_remarks" gorm:"type:text"`
	RevisionDeadline *time.Time `json:"revision_deadline,omitempty"`
	Attachments      []string   `json:"attachments" gorm:"serializer:json"`
	Status           string     `json:"status" gorm:"size:20;not null;default:Pending;index"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (QCTask) TableName() string {
	return "qc_tasks"
}

// QCFeedback is an append-only remark on a task, independent of the
// QCTask's own qcRemarks field.
type QCFeedback struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	TaskID    string    `json:"task_id" gorm:"size:32;not null;index"`
	QCRemarks string    `json:"qc_remarks" gorm:"type:text;not null"`
	EditorID  string    `json:"editor_id" gorm:"size:32;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (QCFeedback) TableName() string {
	return "qc_feedbacks"
}

// QCReport is an append-only review outcome record for a QCTask.
type QCReport struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	QCTaskID    string    `json:"qc_task_id" gorm:"size:32;not null;index"`
	QCRemarks   string    `json:"qc_remarks" gorm:"type:text;not null"`
	Status      string    `json:"status" gorm:"size:20;not null;default:Pending;index"`
	GeneratedAt time.Time `json:"generated_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (QCReport) TableName() string {
	return "qc_reports"
}

// Assignment statuses.
const (
	AssignmentStatusAssigned   = "assigned"
	AssignmentStatusInProgress = "in progress"
	AssignmentStatusCompleted  = "completed"
)

// Assignment links an original client task to a project manager, created
// by a general manager.
type Assignment struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	TaskID       int64     `json:"task_id" gorm:"not null;index"`
	AssignedByID string    `json:"assigned_by_id" gorm:"size:32;not null"`
	AssignedToID string    `json:"assigned_to_id" gorm:"size:32;not null;index"`
	Instructions string    `json:"instructions" gorm:"type:text"`
	Status       string    `json:"status" gorm:"size:20;not null;default:assigned"`
	AssignedAt   time.Time `json:"assigned_at"`

	Task       *Task     `json:"task,omitempty" gorm:"foreignKey:TaskID"`
	AssignedBy *Employee `json:"assigned_by,omitempty" gorm:"foreignKey:AssignedByID"`
	AssignedTo *Employee `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID"`
}

func (Assignment) TableName() string {
	return "gm_to_pm_tasks"
}
