package models

import "time"

// ProjectStatusActive is the default free-text project status.
const ProjectStatusActive = "active"

// Project tracks deliverables for an accepted application. At most one
// project exists per application.
type Project struct {
	ID               string     `db:"id" json:"id"`
	ApplicationID    string     `db:"application_id" json:"application_id"`
	Title            string     `db:"title" json:"title"`
	Description      string     `db:"description" json:"description"`
	PlannedStartDate *time.Time `db:"planned_start_date" json:"planned_start_date,omitempty"`
	PlannedEndDate   *time.Time `db:"planned_end_date" json:"planned_end_date,omitempty"`
	ActualStartDate  *time.Time `db:"actual_start_date" json:"actual_start_date,omitempty"`
	ActualEndDate    *time.Time `db:"actual_end_date" json:"actual_end_date,omitempty"`
	Status           string     `db:"status" json:"status"`
	Comments         string     `db:"comments" json:"comments"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// ProjectDetail joins a project with its application context.
type ProjectDetail struct {
	Project
	StudentID   string `db:"student_id" json:"student_id"`
	StudentName string `db:"student_name" json:"student_name"`
	JobID       string `db:"job_id" json:"job_id"`
	JobTitle    string `db:"job_title" json:"job_title"`
	CompanyID   string `db:"company_id" json:"company_id"`
}

// TaskStatus values are stored as declared by the schema. Tasks are created
// pending; no operation transitions the field.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskSubmitted  TaskStatus = "submitted"
	TaskCompleted  TaskStatus = "completed"
)

// Task is a unit of work inside a project.
type Task struct {
	ID          string     `db:"id" json:"id"`
	ProjectID   string     `db:"project_id" json:"project_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	AssignedBy  string     `db:"assigned_by" json:"assigned_by"`
	Status      TaskStatus `db:"status" json:"status"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// TaskUpdateStatus is the review state of a student submission.
type TaskUpdateStatus string

const (
	TaskUpdatePending   TaskUpdateStatus = "pending"
	TaskUpdateSubmitted TaskUpdateStatus = "submitted"
	TaskUpdateApproved  TaskUpdateStatus = "approved"
	TaskUpdateRejected  TaskUpdateStatus = "rejected"
)

// TaskUpdate is a student progress submission against a task. Resubmitting
// overwrites the (task, student) row: latest write wins.
type TaskUpdate struct {
	ID              string           `db:"id" json:"id"`
	TaskID          string           `db:"task_id" json:"task_id"`
	StudentID       string           `db:"student_id" json:"student_id"`
	ProgressPercent int              `db:"progress_percent" json:"progress_percent"`
	ProofPath       *string          `db:"proof_path" json:"proof_path,omitempty"`
	Comments        string           `db:"comments" json:"comments"`
	Description     string           `db:"description" json:"description"`
	Status          TaskUpdateStatus `db:"status" json:"status"`
	Feedback        string           `db:"feedback" json:"feedback"`
	SubmittedAt     *time.Time       `db:"submitted_at" json:"submitted_at,omitempty"`
	ReviewedAt      *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
}

// TaskUpdateDetail joins a submission with task and student context.
type TaskUpdateDetail struct {
	TaskUpdate
	TaskTitle   string `db:"task_title" json:"task_title"`
	ProjectID   string `db:"project_id" json:"project_id"`
	StudentName string `db:"student_name" json:"student_name"`
}

// TaskWithUpdate pairs a task with the student's latest submission, if any.
type TaskWithUpdate struct {
	Task   Task        `json:"task"`
	Update *TaskUpdate `json:"update,omitempty"`
}
