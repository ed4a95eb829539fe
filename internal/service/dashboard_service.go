package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/attachlink/placement-api/internal/dto"
	"github.com/attachlink/placement-api/internal/models"
	appErrors "github.com/attachlink/placement-api/pkg/errors"
)

type dashboardStudentRepository interface {
	FindByAccountID(ctx context.Context, accountID string) (*models.Student, error)
	FindDetailByID(ctx context.Context, id string) (*models.StudentDetail, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
}

type dashboardCompanyRepository interface {
	FindByAccountID(ctx context.Context, accountID string) (*models.Company, error)
	FindDetailByID(ctx context.Context, id string) (*models.CompanyDetail, error)
	List(ctx context.Context, filter models.CompanyFilter) ([]models.CompanyDetail, int, error)
}

type dashboardJobRepository interface {
	ListRecentForMajor(ctx context.Context, studentID string, major models.Major, limit int) ([]models.BoardJob, error)
	CountOpenForMajor(ctx context.Context, major models.Major) (int, error)
	List(ctx context.Context, filter models.JobFilter) ([]models.Job, int, error)
}

type dashboardApplicationRepository interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error)
	CountByStudent(ctx context.Context, studentID string, status *models.ApplicationStatus) (int, error)
	CountByCompany(ctx context.Context, companyID string, status *models.ApplicationStatus) (int, error)
	CountByJob(ctx context.Context, companyID string) (map[string]int, error)
}

type dashboardResumeRepository interface {
	FindByStudent(ctx context.Context, studentID string) (*models.StudentResume, error)
}

type dashboardEngagementRepository interface {
	ListProjectsByStudent(ctx context.Context, studentID string) ([]models.ProjectDetail, error)
	ListProjectsByCompany(ctx context.Context, companyID string) ([]models.ProjectDetail, error)
	ListTasksByProject(ctx context.Context, projectID string) ([]models.Task, error)
	ListTaskUpdatesByProject(ctx context.Context, projectID string) ([]models.TaskUpdate, error)
	ListSubmittedUpdatesByCompany(ctx context.Context, companyID string) ([]models.TaskUpdateDetail, error)
}

// DashboardService aggregates the role landing views.
type DashboardService struct {
	students    dashboardStudentRepository
	companies   dashboardCompanyRepository
	jobs        dashboardJobRepository
	apps        dashboardApplicationRepository
	resumes     dashboardResumeRepository
	engagements dashboardEngagementRepository
	logger      *zap.Logger
	recentJobs  int
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(
	students dashboardStudentRepository,
	companies dashboardCompanyRepository,
	jobs dashboardJobRepository,
	apps dashboardApplicationRepository,
	resumes dashboardResumeRepository,
	engagements dashboardEngagementRepository,
	logger *zap.Logger,
	recentJobs int,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recentJobs <= 0 {
		recentJobs = 3
	}
	return &DashboardService{
		students:    students,
		companies:   companies,
		jobs:        jobs,
		apps:        apps,
		resumes:     resumes,
		engagements: engagements,
		logger:      logger,
		recentJobs:  recentJobs,
	}
}

// Student assembles the student landing view.
func (s *DashboardService) Student(ctx context.Context, accountID string) (*dto.StudentDashboard, error) {
	student, err := s.students.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	detail, err := s.students.FindDetailByID(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student detail")
	}

	applications, _, err := s.apps.List(ctx, models.ApplicationFilter{StudentID: student.ID, PageSize: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}

	appliedCount, err := s.apps.CountByStudent(ctx, student.ID, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count applications")
	}
	pending := models.ApplicationPending
	pendingCount, err := s.apps.CountByStudent(ctx, student.ID, &pending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending applications")
	}

	hasAccepted := false
	for _, app := range applications {
		if app.Status == models.ApplicationAccepted {
			hasAccepted = true
			break
		}
	}

	availableCount, err := s.jobs.CountOpenForMajor(ctx, student.Major)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count open jobs")
	}

	recentJobs, err := s.jobs.ListRecentForMajor(ctx, student.ID, student.Major, s.recentJobs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recent jobs")
	}

	resume, err := s.resumes.FindByStudent(ctx, student.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resume")
	}

	projects, err := s.engagements.ListProjectsByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}

	studentProjects := make([]dto.StudentProject, 0, len(projects))
	for _, project := range projects {
		tasks, err := s.engagements.ListTasksByProject(ctx, project.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
		}
		updates, err := s.engagements.ListTaskUpdatesByProject(ctx, project.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list task updates")
		}

		byTask := make(map[string]*models.TaskUpdate, len(updates))
		for i := range updates {
			byTask[updates[i].TaskID] = &updates[i]
		}

		withUpdates := make([]models.TaskWithUpdate, 0, len(tasks))
		for _, task := range tasks {
			withUpdates = append(withUpdates, models.TaskWithUpdate{Task: task, Update: byTask[task.ID]})
		}
		studentProjects = append(studentProjects, dto.StudentProject{Project: project, Tasks: withUpdates})
	}

	return &dto.StudentDashboard{
		Student:           *detail,
		AppliedCount:      appliedCount,
		AvailableCount:    availableCount,
		PendingCount:      pendingCount,
		HasAccepted:       hasAccepted,
		HasCompleteResume: resume.IsComplete(),
		RecentJobs:        recentJobs,
		Applications:      applications,
		Projects:          studentProjects,
	}, nil
}

// Company assembles the company landing view.
func (s *DashboardService) Company(ctx context.Context, accountID string) (*dto.CompanyDashboard, error) {
	company, err := s.companies.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company")
	}

	detail, err := s.companies.FindDetailByID(ctx, company.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company detail")
	}

	jobs, totalJobs, err := s.jobs.List(ctx, models.JobFilter{CompanyID: company.ID, PageSize: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list jobs")
	}

	countsByJob, err := s.apps.CountByJob(ctx, company.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count applications by job")
	}

	jobRows := make([]dto.JobWithApplicationCount, 0, len(jobs))
	for _, job := range jobs {
		jobRows = append(jobRows, dto.JobWithApplicationCount{Job: job, ApplicationsCount: countsByJob[job.ID]})
	}

	totalApps, err := s.apps.CountByCompany(ctx, company.ID, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count applications")
	}
	pending := models.ApplicationPending
	pendingApps, err := s.apps.CountByCompany(ctx, company.ID, &pending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending applications")
	}
	accepted := models.ApplicationAccepted
	acceptedApps, err := s.apps.CountByCompany(ctx, company.ID, &accepted)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count accepted applications")
	}

	recentApps, _, err := s.apps.List(ctx, models.ApplicationFilter{CompanyID: company.ID, PageSize: 10})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recent applications")
	}

	projects, err := s.engagements.ListProjectsByCompany(ctx, company.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}

	submitted, err := s.engagements.ListSubmittedUpdatesByCompany(ctx, company.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submitted updates")
	}

	return &dto.CompanyDashboard{
		Company:              *detail,
		Jobs:                 jobRows,
		TotalJobs:            totalJobs,
		TotalApplications:    totalApps,
		PendingApplications:  pendingApps,
		AcceptedApplications: acceptedApps,
		RecentApplications:   recentApps,
		Projects:             projects,
		SubmittedUpdates:     submitted,
	}, nil
}

// Admin assembles the oversight view listing every profile.
func (s *DashboardService) Admin(ctx context.Context) (*dto.AdminDashboard, error) {
	students, _, err := s.students.List(ctx, models.StudentFilter{PageSize: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	companies, _, err := s.companies.List(ctx, models.CompanyFilter{PageSize: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list companies")
	}

	return &dto.AdminDashboard{Students: students, Companies: companies}, nil
}
