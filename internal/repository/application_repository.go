package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	appErrors "github.com/attachlink/placement-api/pkg/errors"

	"github.com/attachlink/placement-api/internal/models"
)

const applicationColumns = `ap.id, ap.student_id, ap.job_id, ap.full_name, ap.email, ap.telephone, ap.resume_id, ap.status, ap.applied_at, ap.reviewed_at, ap.reviewed_by, ap.stage, ap.comments`

const applicationDetailJoin = `FROM applications ap
	JOIN students s ON s.id = ap.student_id
	JOIN jobs j ON j.id = ap.job_id
	JOIN companies c ON c.id = j.company_id`

// ApplicationRepository manages persistence for job applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository creates a new instance of ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application. The unique (student_id, job_id) index
// rejects duplicates even under concurrent applies.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.AppliedAt.IsZero() {
		app.AppliedAt = time.Now().UTC()
	}

	const query = `INSERT INTO applications (id, student_id, job_id, full_name, email, telephone, resume_id, status, applied_at, stage, comments)
		VALUES (:id, :student_id, :job_id, :full_name, :email, :telephone, :resume_id, :status, :applied_at, :stage, :comments)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		if isUniqueViolation(err) {
			return appErrors.ErrAlreadyApplied
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// FindByID returns an application by identifier.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications ap WHERE ap.id = $1 LIMIT 1`, applicationColumns)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application by id: %w", err)
	}
	return &app, nil
}

// FindDetailByID returns an application joined with student and job context.
func (r *ApplicationRepository) FindDetailByID(ctx context.Context, id string) (*models.ApplicationDetail, error) {
	query := fmt.Sprintf(`SELECT %s, s.full_name AS student_name, j.title AS job_title, j.company_id AS company_id, c.company_name AS company_name
		%s WHERE ap.id = $1 LIMIT 1`, applicationColumns, applicationDetailJoin)
	var detail models.ApplicationDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application detail: %w", err)
	}
	return &detail, nil
}

// ExistsForStudentJob reports whether the student already applied to the job.
func (r *ApplicationRepository) ExistsForStudentJob(ctx context.Context, studentID, jobID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM applications WHERE student_id = $1 AND job_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentID, jobID); err != nil {
		return false, fmt.Errorf("check application exists: %w", err)
	}
	return exists, nil
}

// List returns application details based on filters with total count, newest
// first.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	baseQuery := applicationDetailJoin + ` WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("ap.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.JobID != "" {
		conditions = append(conditions, fmt.Sprintf("ap.job_id = $%d", len(args)+1))
		args = append(args, filter.JobID)
	}
	if filter.CompanyID != "" {
		conditions = append(conditions, fmt.Sprintf("j.company_id = $%d", len(args)+1))
		args = append(args, filter.CompanyID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("ap.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT %s, s.full_name AS student_name, j.title AS job_title, j.company_id AS company_id, c.company_name AS company_name
		%s ORDER BY ap.applied_at DESC LIMIT %d OFFSET %d`, applicationColumns, baseQuery, pageSize, offset)

	var apps []models.ApplicationDetail
	if err := r.db.SelectContext(ctx, &apps, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	return apps, total, nil
}

// UpdateStatus records a review decision.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, reviewedBy, comments string) error {
	const query = `UPDATE applications SET status = $2, reviewed_at = $3, reviewed_by = $4, comments = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC(), reviewedBy, comments); err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	return nil
}

// CountByStudent counts a student's applications, optionally by status.
func (r *ApplicationRepository) CountByStudent(ctx context.Context, studentID string, status *models.ApplicationStatus) (int, error) {
	query := `SELECT COUNT(*) FROM applications WHERE student_id = $1`
	args := []interface{}{studentID}
	if status != nil {
		query += " AND status = $2"
		args = append(args, *status)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count student applications: %w", err)
	}
	return total, nil
}

// CountByCompany counts applications across a company's postings, optionally
// by status.
func (r *ApplicationRepository) CountByCompany(ctx context.Context, companyID string, status *models.ApplicationStatus) (int, error) {
	query := `SELECT COUNT(*) FROM applications ap JOIN jobs j ON j.id = ap.job_id WHERE j.company_id = $1`
	args := []interface{}{companyID}
	if status != nil {
		query += " AND ap.status = $2"
		args = append(args, *status)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count company applications: %w", err)
	}
	return total, nil
}

// CountByJob returns application tallies keyed by job for the given company.
func (r *ApplicationRepository) CountByJob(ctx context.Context, companyID string) (map[string]int, error) {
	const query = `SELECT ap.job_id, COUNT(*) AS total FROM applications ap JOIN jobs j ON j.id = ap.job_id WHERE j.company_id = $1 GROUP BY ap.job_id`
	rows := []struct {
		JobID string `db:"job_id"`
		Total int    `db:"total"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, companyID); err != nil {
		return nil, fmt.Errorf("count applications by job: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.JobID] = row.Total
	}
	return counts, nil
}
