package domain

import "time"

// Role is the access level granted to an account.
type Role string

const (
	RoleClient       Role = "client"
	RoleCollaborator Role = "collaborator"
	RoleAdmin        Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleCollaborator, RoleAdmin:
		return true
	}
	return false
}

// Status is the validation state of an account. New accounts start pending
// and are moved to active by an administrator.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive, StatusRejected:
		return true
	}
	return false
}

// User models an account holder. PasswordHash never leaves the process.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsActive reports whether the account has been validated.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}
