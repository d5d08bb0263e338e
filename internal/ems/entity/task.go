package entity

import (
	"time"
)

// Task is a client-submitted unit of work. The primary key doubles as the
// sequence id: monotonic, unique, assigned atomically by the database on
// insert, so concurrent submissions can never collide.
type Task struct {
	ID              int64     `json:"task_id" gorm:"primaryKey;autoIncrement"`
	ClientID        string    `json:"client_id" gorm:"size:32;not null;index"`
	Description     string    `json:"description" gorm:"type:text;not null"`
	Deadline        time.Time `json:"deadline" gorm:"not null"`
	Attachment      string    `json:"attachment,omitempty" gorm:"size:512"`
	Summary         string    `json:"summary" gorm:"type:text"`
	SummaryDegraded bool      `json:"summary_degraded" gorm:"not null;default:false"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Client *Client `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}

func (Task) TableName() string {
	return "tasks"
}
