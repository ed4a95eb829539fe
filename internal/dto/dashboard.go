package dto

import "github.com/attachlink/placement-api/internal/models"

// StudentDashboard aggregates the student landing view.
type StudentDashboard struct {
	Student           models.StudentDetail       `json:"student"`
	AppliedCount      int                        `json:"applied_count"`
	AvailableCount    int                        `json:"available_count"`
	PendingCount      int                        `json:"pending_count"`
	HasAccepted       bool                       `json:"has_accepted"`
	HasCompleteResume bool                       `json:"has_complete_resume"`
	RecentJobs        []models.BoardJob          `json:"recent_jobs"`
	Applications      []models.ApplicationDetail `json:"applications"`
	Projects          []StudentProject           `json:"projects"`
}

// StudentProject pairs a project with its tasks and the student's latest
// update per task.
type StudentProject struct {
	Project models.ProjectDetail    `json:"project"`
	Tasks   []models.TaskWithUpdate `json:"tasks"`
}

// CompanyDashboard aggregates the company landing view.
type CompanyDashboard struct {
	Company              models.CompanyDetail       `json:"company"`
	Jobs                 []JobWithApplicationCount  `json:"jobs"`
	TotalJobs            int                        `json:"total_jobs"`
	TotalApplications    int                        `json:"total_applications"`
	PendingApplications  int                        `json:"pending_applications"`
	AcceptedApplications int                        `json:"accepted_applications"`
	RecentApplications   []models.ApplicationDetail `json:"recent_applications"`
	Projects             []models.ProjectDetail     `json:"projects"`
	SubmittedUpdates     []models.TaskUpdateDetail  `json:"submitted_updates"`
}

// JobWithApplicationCount decorates a posting with its application tally.
type JobWithApplicationCount struct {
	models.Job
	ApplicationsCount int `json:"applications_count"`
}

// AdminDashboard lists all profiles for the oversight view.
type AdminDashboard struct {
	Students  []models.StudentDetail `json:"students"`
	Companies []models.CompanyDetail `json:"companies"`
}
