package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/attachlink/placement-api/internal/models"
)

// DocumentRepository manages persistence for uploaded verification and
// application documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates a new instance of DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// CreateCompanyDoc registers a company verification upload.
func (r *DocumentRepository) CreateCompanyDoc(ctx context.Context, doc *models.CompanyDoc) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	const query = `INSERT INTO company_docs (id, company_id, document_type, file_url, status, rejection_reason)
		VALUES (:id, :company_id, :document_type, :file_url, :status, :rejection_reason)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create company doc: %w", err)
	}
	return nil
}

// FindCompanyDocByID returns a company document by identifier.
func (r *DocumentRepository) FindCompanyDocByID(ctx context.Context, id string) (*models.CompanyDoc, error) {
	const query = `SELECT id, company_id, document_type, file_url, status, rejection_reason FROM company_docs WHERE id = $1 LIMIT 1`
	var doc models.CompanyDoc
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find company doc: %w", err)
	}
	return &doc, nil
}

// ListCompanyDocs returns a company's uploads.
func (r *DocumentRepository) ListCompanyDocs(ctx context.Context, companyID string) ([]models.CompanyDoc, error) {
	const query = `SELECT id, company_id, document_type, file_url, status, rejection_reason FROM company_docs WHERE company_id = $1 ORDER BY id`
	var docs []models.CompanyDoc
	if err := r.db.SelectContext(ctx, &docs, query, companyID); err != nil {
		return nil, fmt.Errorf("list company docs: %w", err)
	}
	return docs, nil
}

// UpdateCompanyDocStatus records the admin verification verdict.
func (r *DocumentRepository) UpdateCompanyDocStatus(ctx context.Context, id string, status models.VerificationStatus, reason string) error {
	const query = `UPDATE company_docs SET status = $2, rejection_reason = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, reason); err != nil {
		return fmt.Errorf("update company doc status: %w", err)
	}
	return nil
}

// CreateStudentDoc registers a student application attachment.
func (r *DocumentRepository) CreateStudentDoc(ctx context.Context, doc *models.StudentDoc) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	const query = `INSERT INTO student_docs (id, student_id, application_id, document_type, file_name, file_url)
		VALUES (:id, :student_id, :application_id, :document_type, :file_name, :file_url)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create student doc: %w", err)
	}
	return nil
}

// ListStudentDocs returns a student's attachments, optionally scoped to one
// application.
func (r *DocumentRepository) ListStudentDocs(ctx context.Context, studentID, applicationID string) ([]models.StudentDoc, error) {
	query := `SELECT id, student_id, application_id, document_type, file_name, file_url FROM student_docs WHERE student_id = $1`
	args := []interface{}{studentID}
	if applicationID != "" {
		query += " AND application_id = $2"
		args = append(args, applicationID)
	}
	query += " ORDER BY id"
	var docs []models.StudentDoc
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("list student docs: %w", err)
	}
	return docs, nil
}
