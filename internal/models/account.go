package models

import "time"

// AccountRole represents the available roles for authorization checks.
type AccountRole string

const (
	RoleStudent AccountRole = "student"
	RoleCompany AccountRole = "company"
	RoleAdmin   AccountRole = "admin"
)

// AccountStatus captures the activation state of a login.
type AccountStatus string

const (
	AccountActive   AccountStatus = "active"
	AccountInactive AccountStatus = "inactive"
)

// Account represents a login identity independent of the role profile.
// Student and company accounts start inactive and are activated by the
// emailed token; admin accounts are created active.
type Account struct {
	ID             string        `db:"id" json:"id"`
	Email          string        `db:"email" json:"email"`
	PasswordHash   string        `db:"password_hash" json:"-"`
	Role           AccountRole   `db:"role" json:"role"`
	Status         AccountStatus `db:"status" json:"status"`
	ActivationHash *string       `db:"activation_hash" json:"-"`
	ResetToken     *string       `db:"reset_token" json:"-"`
	TokenExpiry    *time.Time    `db:"token_expiry" json:"-"`
	FailedAttempts int           `db:"failed_attempts" json:"-"`
	LastLogin      *time.Time    `db:"last_login" json:"last_login,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
	DeletedAt      *time.Time    `db:"deleted_at" json:"-"`
}

// AccountFilter captures filtering criteria for listing accounts.
type AccountFilter struct {
	Role      *AccountRole
	Status    *AccountStatus
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
