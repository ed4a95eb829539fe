package models

import "time"

// StudentUpdateRequest mutates the editable student profile fields.
type StudentUpdateRequest struct {
	FullName    string     `json:"full_name" validate:"required"`
	Telephone   string     `json:"telephone"`
	University  string     `json:"university"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Major       Major      `json:"major" validate:"required"`
	YearOfStudy int        `json:"year_of_study" validate:"omitempty,min=1,max=8"`
	Location    string     `json:"location"`
	Comments    string     `json:"comments"`
}

// CompanyUpdateRequest mutates the editable company profile fields.
type CompanyUpdateRequest struct {
	CompanyName   string `json:"company_name" validate:"required"`
	ContactPerson string `json:"contact_person"`
	ContactNumber string `json:"contact_number"`
	CompanyEmail  string `json:"company_email" validate:"omitempty,email"`
	Website       string `json:"website"`
	Industry      string `json:"industry"`
	Location      string `json:"location"`
	Description   string `json:"description"`
}

// JobCreateRequest creates a posting for the calling company.
type JobCreateRequest struct {
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description"`
	Major       Major       `json:"major" validate:"required"`
	Location    string      `json:"location"`
	Deadline    *time.Time  `json:"deadline,omitempty"`
	Status      JobStatus   `json:"status" validate:"omitempty,oneof=open closed draft"`
	Openings    int         `json:"openings" validate:"omitempty,min=1"`
	Type        JobType     `json:"type"`
	Duration    JobDuration `json:"duration"`
}

// JobUpdateRequest mutates a posting owned by the caller.
type JobUpdateRequest struct {
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description"`
	Major       Major       `json:"major" validate:"required"`
	Location    string      `json:"location"`
	Deadline    *time.Time  `json:"deadline,omitempty"`
	Status      JobStatus   `json:"status" validate:"omitempty,oneof=open closed draft"`
	Openings    int         `json:"openings" validate:"omitempty,min=1"`
	Type        JobType     `json:"type"`
	Duration    JobDuration `json:"duration"`
}

// ApplyRequest submits an application to a posting.
type ApplyRequest struct {
	JobID string `json:"job_id" validate:"required"`
}

// ApplicationDecisionRequest records a review verdict on an application.
type ApplicationDecisionRequest struct {
	Status   ApplicationStatus `json:"status" validate:"required,oneof=reviewed accepted rejected"`
	Comments string            `json:"comments"`
}

// ResumeUpsertRequest replaces every section of the caller's resume.
type ResumeUpsertRequest struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
	Location   string `json:"location"`
	Summary    string `json:"summary"`
	Education  string `json:"education"`
	Experience string `json:"experience"`
	Skills     string `json:"skills"`
	Hobbies    string `json:"hobbies"`
}

// ProjectCreateRequest opens a project on an accepted application.
type ProjectCreateRequest struct {
	ApplicationID    string     `json:"application_id" validate:"required"`
	Title            string     `json:"title" validate:"required"`
	Description      string     `json:"description"`
	PlannedStartDate *time.Time `json:"planned_start_date,omitempty"`
	PlannedEndDate   *time.Time `json:"planned_end_date,omitempty"`
	Comments         string     `json:"comments"`
}

// TaskCreateRequest adds a task to a project.
type TaskCreateRequest struct {
	ProjectID   string     `json:"project_id" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// TaskUpdateSubmitRequest is a student progress submission against a task.
type TaskUpdateSubmitRequest struct {
	TaskID          string `json:"task_id" validate:"required"`
	ProgressPercent int    `json:"progress_percent" validate:"min=0,max=100"`
	Comments        string `json:"comments"`
	Description     string `json:"description"`
}

// TaskUpdateReviewRequest is the company verdict on a submission. The
// reviewer may correct the reported progress and comments; nil leaves the
// student's values untouched.
type TaskUpdateReviewRequest struct {
	Status          TaskUpdateStatus `json:"status" validate:"required,oneof=approved rejected"`
	ProgressPercent *int             `json:"progress_percent,omitempty" validate:"omitempty,min=0,max=100"`
	Comments        *string          `json:"comments,omitempty"`
	Feedback        string           `json:"feedback"`
}

// CompanyDocVerdictRequest records the admin verification decision.
type CompanyDocVerdictRequest struct {
	Status          VerificationStatus `json:"status" validate:"required,oneof=verified rejected"`
	RejectionReason string             `json:"rejection_reason"`
}
