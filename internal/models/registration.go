package models

import "time"

// StudentSignupRequest registers a new student account with its profile.
type StudentSignupRequest struct {
	Email       string     `json:"email" validate:"required,email"`
	Password    string     `json:"password" validate:"required,min=6"`
	FullName    string     `json:"full_name" validate:"required"`
	Telephone   string     `json:"telephone"`
	University  string     `json:"university"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Major       Major      `json:"major" validate:"required"`
	YearOfStudy int        `json:"year_of_study" validate:"omitempty,min=1,max=8"`
	Location    string     `json:"location"`
}

// CompanySignupRequest registers a new company account with its profile.
type CompanySignupRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6"`
	CompanyName   string `json:"company_name" validate:"required"`
	ContactPerson string `json:"contact_person"`
	ContactNumber string `json:"contact_number"`
	CompanyEmail  string `json:"company_email" validate:"omitempty,email"`
	Website       string `json:"website"`
	Industry      string `json:"industry"`
	Location      string `json:"location"`
	Description   string `json:"description"`
}

// SignupResponse acknowledges a registration pending activation.
type SignupResponse struct {
	AccountID string `json:"account_id"`
	ProfileID string `json:"profile_id"`
	Email     string `json:"email"`
	Status    AccountStatus `json:"status"`
}
