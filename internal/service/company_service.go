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

type companyRepository interface {
	FindByID(ctx context.Context, id string) (*models.Company, error)
	FindByAccountID(ctx context.Context, accountID string) (*models.Company, error)
	FindDetailByID(ctx context.Context, id string) (*models.CompanyDetail, error)
	Update(ctx context.Context, company *models.Company) error
	UpdateLogo(ctx context.Context, id, path string) error
	List(ctx context.Context, filter models.CompanyFilter) ([]models.CompanyDetail, int, error)
}

// CompanyService manages company profiles.
type CompanyService struct {
	repo      companyRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCompanyService constructs a CompanyService instance.
func NewCompanyService(repo companyRepository, validate *validator.Validate, logger *zap.Logger) *CompanyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CompanyService{repo: repo, validator: validate, logger: logger}
}

// GetByAccount resolves the profile owned by the calling account.
func (s *CompanyService) GetByAccount(ctx context.Context, accountID string) (*models.Company, error) {
	company, err := s.repo.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company")
	}
	return company, nil
}

// GetDetail returns a profile with account context. Company profiles are
// readable by any authenticated caller; students browse them from the board.
func (s *CompanyService) GetDetail(ctx context.Context, id string) (*models.CompanyDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company")
	}
	return detail, nil
}

// Update mutates a company profile. Only the owner or an admin may edit.
func (s *CompanyService) Update(ctx context.Context, id string, req models.CompanyUpdateRequest, caller models.JWTClaims) (*models.Company, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid company payload")
	}

	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company")
	}

	if caller.Role != models.RoleAdmin && company.AccountID != caller.AccountID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot edit another company's profile")
	}

	company.CompanyName = req.CompanyName
	company.ContactPerson = req.ContactPerson
	company.ContactNumber = req.ContactNumber
	company.CompanyEmail = req.CompanyEmail
	company.Website = req.Website
	company.Industry = req.Industry
	company.Location = req.Location
	company.Description = req.Description

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update company")
	}
	return company, nil
}

// UpdateLogo stores the uploaded logo path on the caller's profile.
func (s *CompanyService) UpdateLogo(ctx context.Context, accountID, path string) error {
	company, err := s.GetByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateLogo(ctx, company.ID, path); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store logo")
	}
	return nil
}

// List returns company profiles for the admin directory.
func (s *CompanyService) List(ctx context.Context, filter models.CompanyFilter) ([]models.CompanyDetail, *models.Pagination, error) {
	companies, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list companies")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return companies, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}
