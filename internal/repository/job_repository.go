package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/attachlink/placement-api/internal/models"
	appErrors "github.com/attachlink/placement-api/pkg/errors"
)

const jobColumns = `j.id, j.company_id, j.title, j.description, j.major, j.location, j.deadline, j.status, j.openings, j.type, j.duration, j.created_at, j.updated_at`

// JobRepository manages persistence for job postings.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository creates a new instance of JobRepository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new posting.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	const query = `INSERT INTO jobs (id, company_id, title, description, major, location, deadline, status, openings, type, duration, created_at, updated_at)
		VALUES (:id, :company_id, :title, :description, :major, :location, :deadline, :status, :openings, :type, :duration, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// FindByID returns a posting by identifier.
func (r *JobRepository) FindByID(ctx context.Context, id string) (*models.Job, error) {
	query := fmt.Sprintf(`SELECT %s FROM jobs j WHERE j.id = $1 LIMIT 1`, jobColumns)
	var job models.Job
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find job by id: %w", err)
	}
	return &job, nil
}

// FindDetailByID returns a posting joined with its company name.
func (r *JobRepository) FindDetailByID(ctx context.Context, id string) (*models.JobDetail, error) {
	query := fmt.Sprintf(`SELECT %s, c.company_name AS company_name FROM jobs j JOIN companies c ON c.id = j.company_id WHERE j.id = $1 LIMIT 1`, jobColumns)
	var detail models.JobDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find job detail: %w", err)
	}
	return &detail, nil
}

// Update persists mutable posting fields.
func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	job.UpdatedAt = time.Now().UTC()
	const query = `UPDATE jobs SET title = :title, description = :description, major = :major, location = :location, deadline = :deadline, status = :status, openings = :openings, type = :type, duration = :duration, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

// UpdateStatus moves the posting through its lifecycle.
func (r *JobRepository) UpdateStatus(ctx context.Context, id string, status models.JobStatus) error {
	const query = `UPDATE jobs SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}

// ListBoard returns postings visible to a student on the board: open,
// matching major, deadline not passed, not yet applied to, with an optional
// free-text search OR-combined across title, company name, description,
// location and type.
func (r *JobRepository) ListBoard(ctx context.Context, filter models.BoardFilter) ([]models.BoardJob, error) {
	query := fmt.Sprintf(`SELECT %s, c.company_name AS company_name, FALSE AS already_applied
		FROM jobs j
		JOIN companies c ON c.id = j.company_id
		WHERE j.status = $1 AND j.major = $2 AND j.deadline >= $3
		AND NOT EXISTS (SELECT 1 FROM applications ap WHERE ap.job_id = j.id AND ap.student_id = $4)`, jobColumns)
	args := []interface{}{models.JobOpen, filter.Major, filter.Today, filter.StudentID}

	if filter.Search != "" {
		needle := "%" + strings.ToLower(filter.Search) + "%"
		query += fmt.Sprintf(` AND (LOWER(j.title) LIKE $%d OR LOWER(c.company_name) LIKE $%d OR LOWER(j.description) LIKE $%d OR LOWER(j.location) LIKE $%d OR LOWER(j.type) LIKE $%d)`,
			len(args)+1, len(args)+1, len(args)+1, len(args)+1, len(args)+1)
		args = append(args, needle)
	}

	query += " ORDER BY j.created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var jobs []models.BoardJob
	if err := r.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("list board jobs: %w", err)
	}
	return jobs, nil
}

// ListRecentForMajor returns the newest open postings for a major with the
// student's applied flag. Used by the student dashboard.
func (r *JobRepository) ListRecentForMajor(ctx context.Context, studentID string, major models.Major, limit int) ([]models.BoardJob, error) {
	if limit <= 0 {
		limit = 3
	}
	query := fmt.Sprintf(`SELECT %s, c.company_name AS company_name,
		EXISTS (SELECT 1 FROM applications ap WHERE ap.job_id = j.id AND ap.student_id = $1) AS already_applied
		FROM jobs j
		JOIN companies c ON c.id = j.company_id
		WHERE j.status = $2 AND j.major = $3
		ORDER BY j.created_at DESC LIMIT %d`, jobColumns, limit)
	var jobs []models.BoardJob
	if err := r.db.SelectContext(ctx, &jobs, query, studentID, models.JobOpen, major); err != nil {
		return nil, fmt.Errorf("list recent jobs: %w", err)
	}
	return jobs, nil
}

// CountOpenForMajor counts open postings for a major.
func (r *JobRepository) CountOpenForMajor(ctx context.Context, major models.Major) (int, error) {
	const query = `SELECT COUNT(*) FROM jobs WHERE status = $1 AND major = $2`
	var total int
	if err := r.db.GetContext(ctx, &total, query, models.JobOpen, major); err != nil {
		return 0, fmt.Errorf("count open jobs: %w", err)
	}
	return total, nil
}

// List returns postings based on filters with total count.
func (r *JobRepository) List(ctx context.Context, filter models.JobFilter) ([]models.Job, int, error) {
	baseQuery := `FROM jobs j WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.CompanyID != "" {
		conditions = append(conditions, fmt.Sprintf("j.company_id = $%d", len(args)+1))
		args = append(args, filter.CompanyID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("j.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Major != nil {
		conditions = append(conditions, fmt.Sprintf("j.major = $%d", len(args)+1))
		args = append(args, *filter.Major)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(j.title) LIKE $%d OR LOWER(j.description) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"title":      true,
		"deadline":   true,
		"created_at": true,
		"updated_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	sortBy = "j." + sortBy

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", jobColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var jobs []models.Job
	if err := r.db.SelectContext(ctx, &jobs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	return jobs, total, nil
}

// Delete removes a posting. The applications foreign key restricts deletion
// while applications reference it.
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM jobs WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		if isForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "job has applications and cannot be deleted")
		}
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}
