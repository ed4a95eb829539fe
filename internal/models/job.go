package models

import "time"

// JobStatus is the lifecycle state of a posting.
type JobStatus string

const (
	JobOpen   JobStatus = "open"
	JobClosed JobStatus = "closed"
	JobDraft  JobStatus = "draft"
)

// JobType enumerates posting engagement types.
type JobType string

const (
	JobFullTime   JobType = "fullTime"
	JobPartTime   JobType = "partTime"
	JobContract   JobType = "contract"
	JobInternship JobType = "internship"
	JobRemote     JobType = "remote"
	JobHybrid     JobType = "hybrid"
)

// JobDuration enumerates posting durations.
type JobDuration string

const (
	DurationOneMonth    JobDuration = "1-month"
	DurationThreeMonths JobDuration = "3-months"
	DurationSixMonths   JobDuration = "6-months"
	DurationOneYear     JobDuration = "1-year"
	DurationPermanent   JobDuration = "permanent"
)

// Job is a posting owned by exactly one company.
type Job struct {
	ID          string      `db:"id" json:"id"`
	CompanyID   string      `db:"company_id" json:"company_id"`
	Title       string      `db:"title" json:"title"`
	Description string      `db:"description" json:"description"`
	Major       Major       `db:"major" json:"major"`
	Location    string      `db:"location" json:"location"`
	Deadline    *time.Time  `db:"deadline" json:"deadline,omitempty"`
	Status      JobStatus   `db:"status" json:"status"`
	Openings    int         `db:"openings" json:"openings"`
	Type        JobType     `db:"type" json:"type"`
	Duration    JobDuration `db:"duration" json:"duration"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// JobDetail joins a posting with its company name.
type JobDetail struct {
	Job
	CompanyName string `db:"company_name" json:"company_name"`
}

// BoardJob is a listing row shown to a student, flagged when the student
// already applied.
type BoardJob struct {
	JobDetail
	AlreadyApplied bool `db:"already_applied" json:"already_applied"`
}

// BoardFilter selects postings visible to a student: open, matching major,
// deadline not passed, not yet applied to, with an optional free-text search
// OR-combined over title, company name, description, location and type.
type BoardFilter struct {
	StudentID string
	Major     Major
	Search    string
	Today     time.Time
	Limit     int
}

// JobFilter captures company/admin listing criteria.
type JobFilter struct {
	CompanyID string
	Status    *JobStatus
	Major     *Major
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
