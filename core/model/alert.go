package model

import "time"

// Alert is an operator notification. Only Read changes after creation.
type Alert struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Recipient string    `json:"recipient"`
	Read      bool      `json:"read"`
}

// UserRole is used for attribution only.
type UserRole string

const (
	RoleDispatcher UserRole = "dispatcher"
	RoleAnalyst    UserRole = "analyst"
	RoleAdmin      UserRole = "admin"
)

// User identifies the acting operator.
type User struct {
	ID         string   `json:"user_id"`
	Username   string   `json:"username"`
	Role       UserRole `json:"role"`
	Department string   `json:"department,omitempty"`
	Shift      string   `json:"shift,omitempty"`
	Email      string   `json:"email,omitempty"`
}
