package models

import "time"

// ApplicationStatus is the review state of an application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationReviewed ApplicationStatus = "reviewed"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// applicationTransitions encodes the legal review state machine:
// pending -> reviewed/accepted/rejected, reviewed -> accepted/rejected.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending:  {ApplicationReviewed, ApplicationAccepted, ApplicationRejected},
	ApplicationReviewed: {ApplicationAccepted, ApplicationRejected},
}

// CanTransition reports whether moving from to next is a legal review step.
func (s ApplicationStatus) CanTransition(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Application binds a student to a job posting. The contact snapshot fields
// stay nullable; they are not copied from the profile at apply time.
type Application struct {
	ID        string            `db:"id" json:"id"`
	StudentID string            `db:"student_id" json:"student_id"`
	JobID     string            `db:"job_id" json:"job_id"`
	FullName  *string           `db:"full_name" json:"full_name,omitempty"`
	Email     *string           `db:"email" json:"email,omitempty"`
	Telephone *string           `db:"telephone" json:"telephone,omitempty"`
	ResumeID  *string           `db:"resume_id" json:"resume_id,omitempty"`
	Status    ApplicationStatus `db:"status" json:"status"`
	AppliedAt time.Time         `db:"applied_at" json:"applied_at"`
	ReviewedAt *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy *string          `db:"reviewed_by" json:"reviewed_by,omitempty"`
	Stage     string            `db:"stage" json:"stage"`
	Comments  string            `db:"comments" json:"comments"`
}

// ApplicationDetail joins an application with student and job context.
type ApplicationDetail struct {
	Application
	StudentName string `db:"student_name" json:"student_name"`
	JobTitle    string `db:"job_title" json:"job_title"`
	CompanyID   string `db:"company_id" json:"company_id"`
	CompanyName string `db:"company_name" json:"company_name"`
}

// ApplicationFilter captures listing criteria for applications.
type ApplicationFilter struct {
	StudentID string
	JobID     string
	CompanyID string
	Status    *ApplicationStatus
	Page      int
	PageSize  int
}
