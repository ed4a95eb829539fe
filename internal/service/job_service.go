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
)

type jobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	FindByID(ctx context.Context, id string) (*models.Job, error)
	FindDetailByID(ctx context.Context, id string) (*models.JobDetail, error)
	Update(ctx context.Context, job *models.Job) error
	UpdateStatus(ctx context.Context, id string, status models.JobStatus) error
	ListBoard(ctx context.Context, filter models.BoardFilter) ([]models.BoardJob, error)
	List(ctx context.Context, filter models.JobFilter) ([]models.Job, int, error)
	Delete(ctx context.Context, id string) error
}

type jobStudentRepository interface {
	FindByAccountID(ctx context.Context, accountID string) (*models.Student, error)
}

type jobCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// BoardConfig tunes the cached job board.
type BoardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// JobService manages postings and the student job board.
type JobService struct {
	repo      jobRepository
	students  jobStudentRepository
	cache     jobCache
	validator *validator.Validate
	logger    *zap.Logger
	board     BoardConfig
}

// NewJobService constructs a JobService instance.
func NewJobService(repo jobRepository, students jobStudentRepository, cache jobCache, validate *validator.Validate, logger *zap.Logger, board BoardConfig) *JobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &JobService{repo: repo, students: students, cache: cache, validator: validate, logger: logger, board: board}
}

// Create opens a posting owned by the calling company.
func (s *JobService) Create(ctx context.Context, companyID string, req models.JobCreateRequest) (*models.Job, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid job payload")
	}
	if !models.ValidMajor(req.Major) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown major")
	}

	status := req.Status
	if status == "" {
		status = models.JobOpen
	}
	openings := req.Openings
	if openings <= 0 {
		openings = 1
	}

	job := &models.Job{
		CompanyID:   companyID,
		Title:       req.Title,
		Description: req.Description,
		Major:       req.Major,
		Location:    req.Location,
		Deadline:    req.Deadline,
		Status:      status,
		Openings:    openings,
		Type:        req.Type,
		Duration:    req.Duration,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create job")
	}

	s.invalidateBoard(ctx, "")
	return job, nil
}

// Get returns a posting joined with its company name.
func (s *JobService) Get(ctx context.Context, id string) (*models.JobDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	return detail, nil
}

// Update mutates a posting. Only the owning company or an admin may edit.
func (s *JobService) Update(ctx context.Context, id string, req models.JobUpdateRequest, callerCompanyID string, isAdmin bool) (*models.Job, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid job payload")
	}
	if !models.ValidMajor(req.Major) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown major")
	}

	job, err := s.ownedJob(ctx, id, callerCompanyID, isAdmin)
	if err != nil {
		return nil, err
	}

	job.Title = req.Title
	job.Description = req.Description
	job.Major = req.Major
	job.Location = req.Location
	job.Deadline = req.Deadline
	if req.Status != "" {
		job.Status = req.Status
	}
	if req.Openings > 0 {
		job.Openings = req.Openings
	}
	job.Type = req.Type
	job.Duration = req.Duration

	if err := s.repo.Update(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update job")
	}

	s.invalidateBoard(ctx, "")
	return job, nil
}

// Close moves a posting out of the board.
func (s *JobService) Close(ctx context.Context, id, callerCompanyID string, isAdmin bool) error {
	if _, err := s.ownedJob(ctx, id, callerCompanyID, isAdmin); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, id, models.JobClosed); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close job")
	}
	s.invalidateBoard(ctx, "")
	return nil
}

// Delete removes a posting permanently.
func (s *JobService) Delete(ctx context.Context, id, callerCompanyID string, isAdmin bool) error {
	if _, err := s.ownedJob(ctx, id, callerCompanyID, isAdmin); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if appErr := appErrors.FromError(err); appErr != nil && appErr.Code == appErrors.ErrConflict.Code {
			return err
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete job")
	}
	s.invalidateBoard(ctx, "")
	return nil
}

// List returns postings for company or admin views.
func (s *JobService) List(ctx context.Context, filter models.JobFilter) ([]models.Job, *models.Pagination, error) {
	jobs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list jobs")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return jobs, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Board returns postings visible to the calling student. Results are cached
// per student and search term when the cache is enabled.
func (s *JobService) Board(ctx context.Context, accountID, search string) ([]models.BoardJob, error) {
	student, err := s.students.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	cacheKey := fmt.Sprintf("board:%s:%s", student.ID, search)
	if s.board.CacheEnabled && s.cache != nil {
		var cached []models.BoardJob
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("board cache read failed", zap.Error(err))
		}
	}

	jobs, err := s.repo.ListBoard(ctx, models.BoardFilter{
		StudentID: student.ID,
		Major:     student.Major,
		Search:    search,
		Today:     startOfToday(),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list board")
	}

	if s.board.CacheEnabled && s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, jobs, s.board.CacheTTL); err != nil {
			s.logger.Warn("board cache write failed", zap.Error(err))
		}
	}

	return jobs, nil
}

// InvalidateBoardForStudent drops the student's cached board rows. Called
// after an apply so the posting disappears from the board immediately.
func (s *JobService) InvalidateBoardForStudent(ctx context.Context, studentID string) {
	s.invalidateBoard(ctx, studentID)
}

func (s *JobService) invalidateBoard(ctx context.Context, studentID string) {
	if !s.board.CacheEnabled || s.cache == nil {
		return
	}
	pattern := "board:*"
	if studentID != "" {
		pattern = fmt.Sprintf("board:%s:*", studentID)
	}
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("board cache invalidation failed", zap.Error(err))
	}
}

func (s *JobService) ownedJob(ctx context.Context, id, callerCompanyID string, isAdmin bool) (*models.Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	if !isAdmin && job.CompanyID != callerCompanyID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "job belongs to another company")
	}
	return job, nil
}

// startOfToday returns midnight UTC so deadline comparisons treat the
// deadline day itself as still open.
func startOfToday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
