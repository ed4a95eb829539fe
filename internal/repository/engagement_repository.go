package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	appErrors "github.com/attachlink/placement-api/pkg/errors"

	"github.com/attachlink/placement-api/internal/models"
)

const projectColumns = `p.id, p.application_id, p.title, p.description, p.planned_start_date, p.planned_end_date, p.actual_start_date, p.actual_end_date, p.status, p.comments, p.created_at`

const projectDetailJoin = `FROM projects p
	JOIN applications ap ON ap.id = p.application_id
	JOIN students s ON s.id = ap.student_id
	JOIN jobs j ON j.id = ap.job_id`

const taskUpdateColumns = `tu.id, tu.task_id, tu.student_id, tu.progress_percent, tu.proof_path, tu.comments, tu.description, tu.status, tu.feedback, tu.submitted_at, tu.reviewed_at, tu.created_at`

// EngagementRepository manages persistence for projects, tasks and the
// student submissions against them.
type EngagementRepository struct {
	db *sqlx.DB
}

// NewEngagementRepository creates a new instance of EngagementRepository.
func NewEngagementRepository(db *sqlx.DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// CreateProject inserts a project. The unique application_id index keeps the
// relation 1:1 even under concurrent creates.
func (r *EngagementRepository) CreateProject(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO projects (id, application_id, title, description, planned_start_date, planned_end_date, actual_start_date, actual_end_date, status, comments, created_at)
		VALUES (:id, :application_id, :title, :description, :planned_start_date, :planned_end_date, :actual_start_date, :actual_end_date, :status, :comments, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, project); err != nil {
		if isUniqueViolation(err) {
			return appErrors.ErrConflict
		}
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// FindProjectDetailByID returns a project joined with its application context.
func (r *EngagementRepository) FindProjectDetailByID(ctx context.Context, id string) (*models.ProjectDetail, error) {
	query := fmt.Sprintf(`SELECT %s, ap.student_id AS student_id, s.full_name AS student_name, ap.job_id AS job_id, j.title AS job_title, j.company_id AS company_id
		%s WHERE p.id = $1 LIMIT 1`, projectColumns, projectDetailJoin)
	var detail models.ProjectDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find project detail: %w", err)
	}
	return &detail, nil
}

// ProjectExistsForApplication reports whether the application already has a
// project.
func (r *EngagementRepository) ProjectExistsForApplication(ctx context.Context, applicationID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM projects WHERE application_id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, applicationID); err != nil {
		return false, fmt.Errorf("check project exists: %w", err)
	}
	return exists, nil
}

// ListProjectsByCompany returns projects under the company's postings, newest
// first.
func (r *EngagementRepository) ListProjectsByCompany(ctx context.Context, companyID string) ([]models.ProjectDetail, error) {
	query := fmt.Sprintf(`SELECT %s, ap.student_id AS student_id, s.full_name AS student_name, ap.job_id AS job_id, j.title AS job_title, j.company_id AS company_id
		%s WHERE j.company_id = $1 ORDER BY p.created_at DESC`, projectColumns, projectDetailJoin)
	var projects []models.ProjectDetail
	if err := r.db.SelectContext(ctx, &projects, query, companyID); err != nil {
		return nil, fmt.Errorf("list company projects: %w", err)
	}
	return projects, nil
}

// ListProjectsByStudent returns the student's projects, newest first.
func (r *EngagementRepository) ListProjectsByStudent(ctx context.Context, studentID string) ([]models.ProjectDetail, error) {
	query := fmt.Sprintf(`SELECT %s, ap.student_id AS student_id, s.full_name AS student_name, ap.job_id AS job_id, j.title AS job_title, j.company_id AS company_id
		%s WHERE ap.student_id = $1 ORDER BY p.created_at DESC`, projectColumns, projectDetailJoin)
	var projects []models.ProjectDetail
	if err := r.db.SelectContext(ctx, &projects, query, studentID); err != nil {
		return nil, fmt.Errorf("list student projects: %w", err)
	}
	return projects, nil
}

// CreateTask inserts a task into a project.
func (r *EngagementRepository) CreateTask(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO tasks (id, project_id, title, description, assigned_by, status, due_date, created_at)
		VALUES (:id, :project_id, :title, :description, :assigned_by, :status, :due_date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// FindTaskByID returns a task by identifier.
func (r *EngagementRepository) FindTaskByID(ctx context.Context, id string) (*models.Task, error) {
	const query = `SELECT id, project_id, title, description, assigned_by, status, due_date, created_at FROM tasks WHERE id = $1 LIMIT 1`
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find task by id: %w", err)
	}
	return &task, nil
}

// ListTasksByProject returns a project's tasks, oldest first.
func (r *EngagementRepository) ListTasksByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	const query = `SELECT id, project_id, title, description, assigned_by, status, due_date, created_at FROM tasks WHERE project_id = $1 ORDER BY created_at ASC`
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, projectID); err != nil {
		return nil, fmt.Errorf("list project tasks: %w", err)
	}
	return tasks, nil
}

// UpsertTaskUpdate writes the student's submission for a task. The unique
// (task_id, student_id) index makes a resubmission overwrite the previous
// row: latest write wins.
func (r *EngagementRepository) UpsertTaskUpdate(ctx context.Context, update *models.TaskUpdate) error {
	if update.ID == "" {
		update.ID = uuid.NewString()
	}
	if update.CreatedAt.IsZero() {
		update.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO task_updates (id, task_id, student_id, progress_percent, proof_path, comments, description, status, feedback, submitted_at, reviewed_at, created_at)
		VALUES (:id, :task_id, :student_id, :progress_percent, :proof_path, :comments, :description, :status, :feedback, :submitted_at, :reviewed_at, :created_at)
		ON CONFLICT (task_id, student_id) DO UPDATE SET
			progress_percent = EXCLUDED.progress_percent,
			proof_path = COALESCE(EXCLUDED.proof_path, task_updates.proof_path),
			comments = EXCLUDED.comments,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			feedback = '',
			submitted_at = EXCLUDED.submitted_at,
			reviewed_at = NULL`
	if _, err := r.db.NamedExecContext(ctx, query, update); err != nil {
		return fmt.Errorf("upsert task update: %w", err)
	}
	return nil
}

// FindTaskUpdate returns the student's submission for a task, if any.
func (r *EngagementRepository) FindTaskUpdate(ctx context.Context, taskID, studentID string) (*models.TaskUpdate, error) {
	query := fmt.Sprintf(`SELECT %s FROM task_updates tu WHERE tu.task_id = $1 AND tu.student_id = $2 LIMIT 1`, taskUpdateColumns)
	var update models.TaskUpdate
	if err := r.db.GetContext(ctx, &update, query, taskID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find task update: %w", err)
	}
	return &update, nil
}

// FindTaskUpdateDetailByID returns a submission joined with task and student
// context.
func (r *EngagementRepository) FindTaskUpdateDetailByID(ctx context.Context, id string) (*models.TaskUpdateDetail, error) {
	query := fmt.Sprintf(`SELECT %s, t.title AS task_title, t.project_id AS project_id, s.full_name AS student_name
		FROM task_updates tu
		JOIN tasks t ON t.id = tu.task_id
		JOIN students s ON s.id = tu.student_id
		WHERE tu.id = $1 LIMIT 1`, taskUpdateColumns)
	var detail models.TaskUpdateDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find task update detail: %w", err)
	}
	return &detail, nil
}

// ListSubmittedUpdatesByCompany returns submissions awaiting review across
// the company's projects, newest first.
func (r *EngagementRepository) ListSubmittedUpdatesByCompany(ctx context.Context, companyID string) ([]models.TaskUpdateDetail, error) {
	query := fmt.Sprintf(`SELECT %s, t.title AS task_title, t.project_id AS project_id, s.full_name AS student_name
		FROM task_updates tu
		JOIN tasks t ON t.id = tu.task_id
		JOIN students s ON s.id = tu.student_id
		JOIN projects p ON p.id = t.project_id
		JOIN applications ap ON ap.id = p.application_id
		JOIN jobs j ON j.id = ap.job_id
		WHERE j.company_id = $1 AND tu.status = $2
		ORDER BY tu.submitted_at DESC`, taskUpdateColumns)
	var updates []models.TaskUpdateDetail
	if err := r.db.SelectContext(ctx, &updates, query, companyID, models.TaskUpdateSubmitted); err != nil {
		return nil, fmt.Errorf("list submitted updates: %w", err)
	}
	return updates, nil
}

// ListTaskUpdatesByProject returns a project's submissions keyed by task.
func (r *EngagementRepository) ListTaskUpdatesByProject(ctx context.Context, projectID string) ([]models.TaskUpdate, error) {
	query := fmt.Sprintf(`SELECT %s FROM task_updates tu JOIN tasks t ON t.id = tu.task_id WHERE t.project_id = $1`, taskUpdateColumns)
	var updates []models.TaskUpdate
	if err := r.db.SelectContext(ctx, &updates, query, projectID); err != nil {
		return nil, fmt.Errorf("list project task updates: %w", err)
	}
	return updates, nil
}

// ReviewTaskUpdate records the company's verdict on a submission. Nil
// progress or comments keep the student's submitted values.
func (r *EngagementRepository) ReviewTaskUpdate(ctx context.Context, id string, status models.TaskUpdateStatus, progress *int, comments *string, feedback string) error {
	const query = `UPDATE task_updates SET status = $2,
		progress_percent = COALESCE($3, progress_percent),
		comments = COALESCE($4, comments),
		feedback = $5, reviewed_at = $6 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, progress, comments, feedback, time.Now().UTC()); err != nil {
		return fmt.Errorf("review task update: %w", err)
	}
	return nil
}
