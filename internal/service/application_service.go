package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/attachlink/placement-api/internal/models"
	appErrors "github.com/attachlink/placement-api/pkg/errors"
	"github.com/attachlink/placement-api/pkg/export"
)

type applicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, id string) (*models.Application, error)
	FindDetailByID(ctx context.Context, id string) (*models.ApplicationDetail, error)
	ExistsForStudentJob(ctx context.Context, studentID, jobID string) (bool, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, reviewedBy, comments string) error
}

type applicationJobRepository interface {
	FindByID(ctx context.Context, id string) (*models.Job, error)
}

type applicationStudentRepository interface {
	FindByAccountID(ctx context.Context, accountID string) (*models.Student, error)
}

type applicationResumeRepository interface {
	FindByStudent(ctx context.Context, studentID string) (*models.StudentResume, error)
}

type boardInvalidator interface {
	InvalidateBoardForStudent(ctx context.Context, studentID string)
}

// ApplicationService manages the apply and review workflow.
type ApplicationService struct {
	repo      applicationRepository
	jobs      applicationJobRepository
	students  applicationStudentRepository
	resumes   applicationResumeRepository
	board     boardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewApplicationService constructs an ApplicationService instance.
func NewApplicationService(
	repo applicationRepository,
	jobs applicationJobRepository,
	students applicationStudentRepository,
	resumes applicationResumeRepository,
	board boardInvalidator,
	validate *validator.Validate,
	logger *zap.Logger,
) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ApplicationService{
		repo:      repo,
		jobs:      jobs,
		students:  students,
		resumes:   resumes,
		board:     board,
		validator: validate,
		logger:    logger,
	}
}

// Apply submits the calling student's application to a posting. Gating: the
// posting must be open with an unexpired deadline, the student must not have
// applied before, and the student's resume must be complete. The application
// records only the resume link; the contact columns stay null.
func (s *ApplicationService) Apply(ctx context.Context, accountID string, req models.ApplyRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid apply payload")
	}

	student, err := s.students.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	job, err := s.jobs.FindByID(ctx, req.JobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}

	if job.Status != models.JobOpen {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "job is not open for applications")
	}
	if job.Deadline != nil && job.Deadline.Before(startOfToday()) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "application deadline has passed")
	}

	exists, err := s.repo.ExistsForStudentJob(ctx, student.ID, job.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing application")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrAlreadyApplied, "")
	}

	resume, err := s.resumes.FindByStudent(ctx, student.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resume")
	}
	if !resume.IsComplete() {
		return nil, appErrors.Clone(appErrors.ErrResumeIncomplete, "complete your resume before applying")
	}

	app := &models.Application{
		StudentID: student.ID,
		JobID:     job.ID,
		ResumeID:  &resume.ID,
		Status:    models.ApplicationPending,
		AppliedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, app); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrAlreadyApplied.Code {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	if s.board != nil {
		s.board.InvalidateBoardForStudent(ctx, student.ID)
	}

	return app, nil
}

// Get returns an application with context. Students see only their own;
// companies only those against their postings.
func (s *ApplicationService) Get(ctx context.Context, id string, caller models.JWTClaims, callerProfileID string) (*models.ApplicationDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	switch caller.Role {
	case models.RoleStudent:
		if detail.StudentID != callerProfileID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot view another student's application")
		}
	case models.RoleCompany:
		if detail.CompanyID != callerProfileID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "application belongs to another company's job")
		}
	}

	return detail, nil
}

// List returns application details for the caller's scope.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, *models.Pagination, error) {
	apps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return apps, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Decide records a review verdict on an application against one of the
// caller's postings. Terminal states reject further transitions.
func (s *ApplicationService) Decide(ctx context.Context, id string, req models.ApplicationDecisionRequest, caller models.JWTClaims, companyID string) (*models.ApplicationDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}

	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	if caller.Role != models.RoleAdmin && detail.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "application belongs to another company's job")
	}

	if !detail.Status.CanTransition(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot move application from %s to %s", detail.Status, req.Status))
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status, caller.Email, req.Comments); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application")
	}

	now := time.Now().UTC()
	detail.Status = req.Status
	detail.ReviewedAt = &now
	detail.ReviewedBy = &caller.Email
	detail.Comments = req.Comments
	return detail, nil
}

// ExportCompanyCSV renders the company's applications as a CSV dataset.
func (s *ApplicationService) ExportCompanyCSV(ctx context.Context, companyID string, status *models.ApplicationStatus) ([]byte, string, error) {
	apps, _, err := s.repo.List(ctx, models.ApplicationFilter{CompanyID: companyID, Status: status, PageSize: 100})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}

	dataset := export.Dataset{
		Headers: []string{"id", "student", "job", "status", "applied_at", "reviewed_at", "reviewed_by", "comments"},
	}
	for _, app := range apps {
		reviewedAt := ""
		if app.ReviewedAt != nil {
			reviewedAt = app.ReviewedAt.Format(time.RFC3339)
		}
		reviewedBy := ""
		if app.ReviewedBy != nil {
			reviewedBy = *app.ReviewedBy
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"id":          app.ID,
			"student":     app.StudentName,
			"job":         app.JobTitle,
			"status":      string(app.Status),
			"applied_at":  app.AppliedAt.Format(time.RFC3339),
			"reviewed_at": reviewedAt,
			"reviewed_by": reviewedBy,
			"comments":    app.Comments,
		})
	}

	exporter := export.NewCSVExporter()
	payload, err := exporter.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}

	filename := fmt.Sprintf("applications-%s.csv", time.Now().UTC().Format("20060102"))
	return payload, filename, nil
}
