package entity

import (
	"time"
)

// Employee roles. Clients are a separate account type and carry the
// implicit role "client" in their tokens.
const (
	RoleEditor         = "editor"
	RoleQualityControl = "quality_control"
	RoleProjectManager = "project_manager"
	RoleGeneralManager = "general_manager"
	RoleAdmin          = "admin"

	RoleClient = "client"
)

// EmployeeRoles is the canonical role set accepted at registration.
var EmployeeRoles = []string{
	RoleEditor,
	RoleQualityControl,
	RoleProjectManager,
	RoleGeneralManager,
	RoleAdmin,
}

// ValidEmployeeRole reports whether role is in the canonical set.
func ValidEmployeeRole(role string) bool {
	for _, r := range EmployeeRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Client is a customer account that submits tasks.
type Client struct {
	ID               string     `json:"id" gorm:"primaryKey;size:32"`
	Name             string     `json:"name" gorm:"size:128;not null"`
	Email            string     `json:"email" gorm:"size:128;not null;uniqueIndex"`
	Phone            string     `json:"phone" gorm:"size:32;not null"`
	City             string     `json:"city" gorm:"size:64;not null"`
	PasswordHash     string     `json:"-" gorm:"size:128;not null;column:password_hash"`
	ResetCode        *int       `json:"-" gorm:"column:reset_code"`
	ResetCodeExpires *time.Time `json:"-" gorm:"column:reset_code_expires"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

// Public returns the fields safe to expose in responses.
func (c *Client) Public() map[string]interface{} {
	return map[string]interface{}{
		"id":    c.ID,
		"name":  c.Name,
		"email": c.Email,
		"phone": c.Phone,
		"city":  c.City,
	}
}

// Employee is a staff account with a workflow role.
type Employee struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	Name         string    `json:"name" gorm:"size:128;not null"`
	Email        string    `json:"email" gorm:"size:128;not null;uniqueIndex"`
	Role         string    `json:"role" gorm:"size:32;not null;index"`
	PasswordHash string    `json:"-" gorm:"size:128;not null;column:password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}

// Public returns the fields safe to expose in responses.
func (e *Employee) Public() map[string]interface{} {
	return map[string]interface{}{
		"id":    e.ID,
		"name":  e.Name,
		"email": e.Email,
		"role":  e.Role,
	}
}
