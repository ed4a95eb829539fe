package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/attachlink/placement-api/internal/models"
	appErrors "github.com/attachlink/placement-api/pkg/errors"
)

type studentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByAccountID(ctx context.Context, accountID string) (*models.Student, error)
	FindDetailByID(ctx context.Context, id string) (*models.StudentDetail, error)
	Update(ctx context.Context, student *models.Student) error
	UpdateProfilePicture(ctx context.Context, id, path string) error
	UpdateIDImages(ctx context.Context, id string, studentIDPath, nationalIDPath *string) error
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
}

// StudentService manages student profiles.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// GetByAccount resolves the profile owned by the calling account.
func (s *StudentService) GetByAccount(ctx context.Context, accountID string) (*models.Student, error) {
	student, err := s.repo.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// GetDetail returns a profile with account context. Students may only read
// their own profile; companies and admins may read any.
func (s *StudentService) GetDetail(ctx context.Context, id string, caller models.JWTClaims) (*models.StudentDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if caller.Role == models.RoleStudent && detail.AccountID != caller.AccountID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot view another student's profile")
	}

	return detail, nil
}

// Update mutates the caller's own profile. Admins may update any profile but
// only the owner edits through this path otherwise. The is_accepted flag is
// admin-only and preserved here.
func (s *StudentService) Update(ctx context.Context, id string, req models.StudentUpdateRequest, caller models.JWTClaims) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if !models.ValidMajor(req.Major) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown major")
	}

	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if caller.Role != models.RoleAdmin && student.AccountID != caller.AccountID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot edit another student's profile")
	}

	student.FullName = req.FullName
	student.Telephone = req.Telephone
	student.University = req.University
	student.DateOfBirth = req.DateOfBirth
	student.Major = req.Major
	student.YearOfStudy = req.YearOfStudy
	student.Location = req.Location
	student.Comments = req.Comments

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// SetAccepted flips the admin acceptance flag on a profile.
func (s *StudentService) SetAccepted(ctx context.Context, id string, accepted bool) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	student.IsAccepted = accepted
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// UpdateProfilePicture stores the uploaded picture path on the caller's
// profile.
func (s *StudentService) UpdateProfilePicture(ctx context.Context, accountID, path string) error {
	student, err := s.GetByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateProfilePicture(ctx, student.ID, path); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store profile picture")
	}
	return nil
}

// UpdateIDImages stores identity document paths on the caller's profile.
// A nil path leaves the stored value untouched.
func (s *StudentService) UpdateIDImages(ctx context.Context, accountID string, studentIDPath, nationalIDPath *string) error {
	student, err := s.GetByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if studentIDPath == nil && nationalIDPath == nil {
		return appErrors.Clone(appErrors.ErrValidation, "no document provided")
	}
	if err := s.repo.UpdateIDImages(ctx, student.ID, studentIDPath, nationalIDPath); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store id images")
	}
	return nil
}

// List returns student profiles for the admin directory.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return students, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}
