package entity

import (
	"time"
)

// Kanban card statuses.
const (
	CardStatusTodo       = "todo"
	CardStatusInProgress = "inprogress"
	CardStatusDone       = "done"
)

// ValidCardStatus reports whether s is a known card status.
func ValidCardStatus(s string) bool {
	switch s {
	case CardStatusTodo, CardStatusInProgress, CardStatusDone:
		return true
	}
	return false
}

// Card is a generic Kanban board entity. It has its own lifecycle and no
// relation to the task workflow.
type Card struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	Content     string    `json:"content" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	DueDate     time.Time `json:"due_date" gorm:"not null"`
	Priority    string    `json:"priority" gorm:"size:16;not null;default:Medium"`
	Tags        []string  `json:"tags" gorm:"serializer:json"`
	Status      string    `json:"status" gorm:"size:16;not null;default:todo;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Card) TableName() string {
	return "cards"
}
