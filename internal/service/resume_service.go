package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/attachlink/placement-api/internal/models"
	appErrors "github.com/attachlink/placement-api/pkg/errors"
	"github.com/attachlink/placement-api/pkg/export"
)

type resumeRepository interface {
	FindByStudent(ctx context.Context, studentID string) (*models.StudentResume, error)
	Upsert(ctx context.Context, resume *models.StudentResume) error
}

type resumeStudentRepository interface {
	FindByAccountID(ctx context.Context, accountID string) (*models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type resumeRenderer interface {
	RenderResume(doc export.ResumeDocument) ([]byte, error)
}

// ResumeService manages the structured resume and its PDF export.
type ResumeService struct {
	repo      resumeRepository
	students  resumeStudentRepository
	renderer  resumeRenderer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResumeService constructs a ResumeService instance.
func NewResumeService(repo resumeRepository, students resumeStudentRepository, renderer resumeRenderer, validate *validator.Validate, logger *zap.Logger) *ResumeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if renderer == nil {
		renderer = export.NewPDFExporter()
	}
	return &ResumeService{repo: repo, students: students, renderer: renderer, validator: validate, logger: logger}
}

// GetMine returns the calling student's resume with its completeness flag.
func (s *ResumeService) GetMine(ctx context.Context, accountID string) (*models.StudentResume, bool, error) {
	student, err := s.students.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	resume, err := s.repo.FindByStudent(ctx, student.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "resume not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resume")
	}

	return resume, resume.IsComplete(), nil
}

// Upsert creates or fully replaces the calling student's resume. Partial
// saves are allowed; completeness is only enforced at apply time.
func (s *ResumeService) Upsert(ctx context.Context, accountID string, req models.ResumeUpsertRequest) (*models.StudentResume, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resume payload")
	}

	student, err := s.students.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	resume := &models.StudentResume{
		StudentID:  student.ID,
		FullName:   strings.TrimSpace(req.FullName),
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Location:   strings.TrimSpace(req.Location),
		Summary:    req.Summary,
		Education:  req.Education,
		Experience: req.Experience,
		Skills:     req.Skills,
		Hobbies:    req.Hobbies,
	}
	if err := s.repo.Upsert(ctx, resume); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save resume")
	}

	return resume, nil
}

// ExportPDF renders a resume to PDF. Students export their own; companies
// and admins may export any (companies review applicants' resumes).
func (s *ResumeService) ExportPDF(ctx context.Context, studentID string, caller models.JWTClaims) ([]byte, string, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if caller.Role == models.RoleStudent && student.AccountID != caller.AccountID {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "cannot export another student's resume")
	}

	resume, err := s.repo.FindByStudent(ctx, student.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "resume not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resume")
	}

	payload, err := s.renderer.RenderResume(export.ResumeDocument{
		FullName:   resume.FullName,
		Email:      resume.Email,
		Phone:      resume.Phone,
		Location:   resume.Location,
		Summary:    resume.Summary,
		Education:  resume.Education,
		Experience: resume.Experience,
		Skills:     resume.Skills,
		Hobbies:    resume.Hobbies,
	})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render resume pdf")
	}

	filename := fmt.Sprintf("resume-%s-%s.pdf", slugify(resume.FullName), time.Now().UTC().Format("20060102"))
	return payload, filename, nil
}

func slugify(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "resume"
	}
	return strings.ReplaceAll(value, " ", "-")
}
