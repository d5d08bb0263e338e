package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories bundles every repository behind a single constructor.
type Repositories struct {
	Client     *ClientRepository
	Employee   *EmployeeRepository
	Task       *TaskRepository
	QCTask     *QCTaskRepository
	QCFeedback *QCFeedbackRepository
	QCReport   *QCReportRepository
	Assignment *AssignmentRepository
	Card       *CardRepository
}

// NewRepositories creates the repository set over one gorm DB.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Client:     NewClientRepository(db),
		Employee:   NewEmployeeRepository(db),
		Task:       NewTaskRepository(db),
		QCTask:     NewQCTaskRepository(db),
		QCFeedback: NewQCFeedbackRepository(db),
		QCReport:   NewQCReportRepository(db),
		Assignment: NewAssignmentRepository(db),
		Card:       NewCardRepository(db),
	}
}

// notFound maps gorm's sentinel onto the package error.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
