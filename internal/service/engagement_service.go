package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/attachlink/placement-api/internal/models"
	appErrors "github.com/attachlink/placement-api/pkg/errors"
)

type engagementRepository interface {
	CreateProject(ctx context.Context, project *models.Project) error
	FindProjectDetailByID(ctx context.Context, id string) (*models.ProjectDetail, error)
	ProjectExistsForApplication(ctx context.Context, applicationID string) (bool, error)
	ListProjectsByCompany(ctx context.Context, companyID string) ([]models.ProjectDetail, error)
	ListProjectsByStudent(ctx context.Context, studentID string) ([]models.ProjectDetail, error)
	CreateTask(ctx context.Context, task *models.Task) error
	FindTaskByID(ctx context.Context, id string) (*models.Task, error)
	ListTasksByProject(ctx context.Context, projectID string) ([]models.Task, error)
	UpsertTaskUpdate(ctx context.Context, update *models.TaskUpdate) error
	FindTaskUpdate(ctx context.Context, taskID, studentID string) (*models.TaskUpdate, error)
	FindTaskUpdateDetailByID(ctx context.Context, id string) (*models.TaskUpdateDetail, error)
	ListSubmittedUpdatesByCompany(ctx context.Context, companyID string) ([]models.TaskUpdateDetail, error)
	ListTaskUpdatesByProject(ctx context.Context, projectID string) ([]models.TaskUpdate, error)
	ReviewTaskUpdate(ctx context.Context, id string, status models.TaskUpdateStatus, progress *int, comments *string, feedback string) error
}

type engagementApplicationRepository interface {
	FindDetailByID(ctx context.Context, id string) (*models.ApplicationDetail, error)
}

type engagementStudentRepository interface {
	FindByAccountID(ctx context.Context, accountID string) (*models.Student, error)
}

// EngagementService manages projects, tasks and student progress submissions
// after an application is accepted.
type EngagementService struct {
	repo      engagementRepository
	apps      engagementApplicationRepository
	students  engagementStudentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEngagementService constructs an EngagementService instance.
func NewEngagementService(
	repo engagementRepository,
	apps engagementApplicationRepository,
	students engagementStudentRepository,
	validate *validator.Validate,
	logger *zap.Logger,
) *EngagementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EngagementService{repo: repo, apps: apps, students: students, validator: validate, logger: logger}
}

// CreateProject opens a project on one of the company's accepted
// applications. The actual start date is stamped with the creation time and
// the status starts active. An application carries at most one project.
func (s *EngagementService) CreateProject(ctx context.Context, companyID string, req models.ProjectCreateRequest) (*models.Project, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid project payload")
	}

	app, err := s.apps.FindDetailByID(ctx, req.ApplicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	if app.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "application belongs to another company's job")
	}
	if app.Status != models.ApplicationAccepted {
		return nil, appErrors.Clone(appErrors.ErrAppNotAccepted, "")
	}

	exists, err := s.repo.ProjectExistsForApplication(ctx, app.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing project")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "application already has a project")
	}

	now := time.Now().UTC()
	project := &models.Project{
		ApplicationID:    app.ID,
		Title:            req.Title,
		Description:      req.Description,
		PlannedStartDate: req.PlannedStartDate,
		PlannedEndDate:   req.PlannedEndDate,
		ActualStartDate:  &now,
		Status:           models.ProjectStatusActive,
		Comments:         req.Comments,
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrConflict.Code {
			return nil, appErrors.Clone(appErrors.ErrConflict, "application already has a project")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create project")
	}

	return project, nil
}

// GetProject returns a project with context, scoped to its company or the
// assigned student.
func (s *EngagementService) GetProject(ctx context.Context, id string, caller models.JWTClaims, callerProfileID string) (*models.ProjectDetail, error) {
	detail, err := s.repo.FindProjectDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}

	switch caller.Role {
	case models.RoleStudent:
		if detail.StudentID != callerProfileID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "project belongs to another student")
		}
	case models.RoleCompany:
		if detail.CompanyID != callerProfileID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "project belongs to another company")
		}
	}

	return detail, nil
}

// ListCompanyProjects returns the company's projects.
func (s *EngagementService) ListCompanyProjects(ctx context.Context, companyID string) ([]models.ProjectDetail, error) {
	projects, err := s.repo.ListProjectsByCompany(ctx, companyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}
	return projects, nil
}

// ListStudentProjects returns the calling student's projects.
func (s *EngagementService) ListStudentProjects(ctx context.Context, accountID string) ([]models.ProjectDetail, error) {
	student, err := s.students.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	projects, err := s.repo.ListProjectsByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}
	return projects, nil
}

// CreateTask adds a task to one of the company's projects. The task records
// who assigned it and starts pending.
func (s *EngagementService) CreateTask(ctx context.Context, caller models.JWTClaims, companyID string, req models.TaskCreateRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}

	project, err := s.repo.FindProjectDetailByID(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}

	if caller.Role != models.RoleAdmin && project.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "project belongs to another company")
	}

	task := &models.Task{
		ProjectID:   project.ID,
		Title:       req.Title,
		Description: req.Description,
		AssignedBy:  caller.Email,
		Status:      models.TaskPending,
		DueDate:     req.DueDate,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create task")
	}

	return task, nil
}

// ListProjectTasks returns a project's tasks with the assigned student's
// latest submission attached to each.
func (s *EngagementService) ListProjectTasks(ctx context.Context, projectID string, caller models.JWTClaims, callerProfileID string) ([]models.TaskWithUpdate, error) {
	if _, err := s.GetProject(ctx, projectID, caller, callerProfileID); err != nil {
		return nil, err
	}

	tasks, err := s.repo.ListTasksByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}

	updates, err := s.repo.ListTaskUpdatesByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list task updates")
	}

	byTask := make(map[string]*models.TaskUpdate, len(updates))
	for i := range updates {
		byTask[updates[i].TaskID] = &updates[i]
	}

	result := make([]models.TaskWithUpdate, 0, len(tasks))
	for _, task := range tasks {
		result = append(result, models.TaskWithUpdate{Task: task, Update: byTask[task.ID]})
	}
	return result, nil
}

// SubmitTaskUpdate records the calling student's progress on a task assigned
// through one of their projects. Resubmitting overwrites the previous
// submission and forces the status back to submitted for re-review.
func (s *EngagementService) SubmitTaskUpdate(ctx context.Context, accountID string, req models.TaskUpdateSubmitRequest, proofPath *string) (*models.TaskUpdate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task update payload")
	}

	student, err := s.students.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	task, err := s.repo.FindTaskByID(ctx, req.TaskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}

	project, err := s.repo.FindProjectDetailByID(ctx, task.ProjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}
	if project.StudentID != student.ID {
		return nil, appErrors.Clone(appErrors.ErrNotAssignee, "")
	}

	// A resubmission without a new proof keeps the previously uploaded one.
	if proofPath == nil {
		previous, err := s.repo.FindTaskUpdate(ctx, task.ID, student.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load previous task update")
		}
		if previous != nil {
			proofPath = previous.ProofPath
		}
	}

	now := time.Now().UTC()
	update := &models.TaskUpdate{
		TaskID:          task.ID,
		StudentID:       student.ID,
		ProgressPercent: req.ProgressPercent,
		ProofPath:       proofPath,
		Comments:        req.Comments,
		Description:     req.Description,
		Status:          models.TaskUpdateSubmitted,
		SubmittedAt:     &now,
	}
	if err := s.repo.UpsertTaskUpdate(ctx, update); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save task update")
	}

	return update, nil
}

// ReviewTaskUpdate records the company verdict on a submission against one
// of its projects, stamping the review time.
func (s *EngagementService) ReviewTaskUpdate(ctx context.Context, id string, req models.TaskUpdateReviewRequest, caller models.JWTClaims, companyID string) (*models.TaskUpdateDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	detail, err := s.repo.FindTaskUpdateDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task update not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task update")
	}

	project, err := s.repo.FindProjectDetailByID(ctx, detail.ProjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}
	if caller.Role != models.RoleAdmin && project.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "submission belongs to another company's project")
	}

	if err := s.repo.ReviewTaskUpdate(ctx, id, req.Status, req.ProgressPercent, req.Comments, req.Feedback); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review task update")
	}

	now := time.Now().UTC()
	detail.Status = req.Status
	detail.Feedback = req.Feedback
	if req.ProgressPercent != nil {
		detail.ProgressPercent = *req.ProgressPercent
	}
	if req.Comments != nil {
		detail.Comments = *req.Comments
	}
	detail.ReviewedAt = &now
	return detail, nil
}

// ListSubmittedUpdates returns the company's submissions awaiting review.
func (s *EngagementService) ListSubmittedUpdates(ctx context.Context, companyID string) ([]models.TaskUpdateDetail, error) {
	updates, err := s.repo.ListSubmittedUpdatesByCompany(ctx, companyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submitted updates")
	}
	return updates, nil
}
