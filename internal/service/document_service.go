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

type documentRepository interface {
	CreateCompanyDoc(ctx context.Context, doc *models.CompanyDoc) error
	FindCompanyDocByID(ctx context.Context, id string) (*models.CompanyDoc, error)
	ListCompanyDocs(ctx context.Context, companyID string) ([]models.CompanyDoc, error)
	UpdateCompanyDocStatus(ctx context.Context, id string, status models.VerificationStatus, reason string) error
	CreateStudentDoc(ctx context.Context, doc *models.StudentDoc) error
	ListStudentDocs(ctx context.Context, studentID, applicationID string) ([]models.StudentDoc, error)
}

type documentApplicationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Application, error)
}

// DocumentService manages the registry of uploaded verification and
// application documents. File bytes live in storage; rows hold the paths.
type DocumentService struct {
	repo      documentRepository
	apps      documentApplicationRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDocumentService constructs a DocumentService instance.
func NewDocumentService(repo documentRepository, apps documentApplicationRepository, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DocumentService{repo: repo, apps: apps, validator: validate, logger: logger}
}

// RegisterCompanyDoc records a company verification upload pending review.
func (s *DocumentService) RegisterCompanyDoc(ctx context.Context, companyID, documentType, fileURL string) (*models.CompanyDoc, error) {
	if documentType == "" || fileURL == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "document type and file are required")
	}

	doc := &models.CompanyDoc{
		CompanyID:    companyID,
		DocumentType: documentType,
		FileURL:      fileURL,
		Status:       models.VerificationPending,
	}
	if err := s.repo.CreateCompanyDoc(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register document")
	}
	return doc, nil
}

// ListCompanyDocs returns a company's verification uploads.
func (s *DocumentService) ListCompanyDocs(ctx context.Context, companyID string) ([]models.CompanyDoc, error) {
	docs, err := s.repo.ListCompanyDocs(ctx, companyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return docs, nil
}

// VerifyCompanyDoc records the admin verdict on a verification upload. A
// rejection keeps the reason; a verification clears it.
func (s *DocumentService) VerifyCompanyDoc(ctx context.Context, id string, req models.CompanyDocVerdictRequest) (*models.CompanyDoc, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verdict payload")
	}

	doc, err := s.repo.FindCompanyDocByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	reason := req.RejectionReason
	if req.Status == models.VerificationVerified {
		reason = ""
	}

	if err := s.repo.UpdateCompanyDocStatus(ctx, id, req.Status, reason); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update document")
	}

	doc.Status = req.Status
	doc.RejectionReason = reason
	return doc, nil
}

// RegisterStudentDoc records a student attachment tied to one of their own
// applications.
func (s *DocumentService) RegisterStudentDoc(ctx context.Context, studentID, applicationID, documentType, fileName, fileURL string) (*models.StudentDoc, error) {
	if documentType == "" || fileURL == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "document type and file are required")
	}

	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if app.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "application belongs to another student")
	}

	doc := &models.StudentDoc{
		StudentID:     studentID,
		ApplicationID: applicationID,
		DocumentType:  documentType,
		FileName:      fileName,
		FileURL:       fileURL,
	}
	if err := s.repo.CreateStudentDoc(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register document")
	}
	return doc, nil
}

// ListStudentDocs returns a student's attachments, optionally scoped to one
// application.
func (s *DocumentService) ListStudentDocs(ctx context.Context, studentID, applicationID string) ([]models.StudentDoc, error) {
	docs, err := s.repo.ListStudentDocs(ctx, studentID, applicationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return docs, nil
}
