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
)

const studentColumns = `s.id, s.account_id, s.full_name, s.telephone, s.university, s.date_of_birth, s.major, s.year_of_study, s.location, s.student_id_path, s.national_id_path, s.profile_picture, s.comments, s.is_accepted, s.created_at, s.updated_at`

// StudentRepository manages persistence for student profiles.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new instance of StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a new student profile.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now

	const query = `INSERT INTO students (id, account_id, full_name, telephone, university, date_of_birth, major, year_of_study, location, student_id_path, national_id_path, profile_picture, comments, is_accepted, created_at, updated_at)
		VALUES (:id, :account_id, :full_name, :telephone, :university, :date_of_birth, :major, :year_of_study, :location, :student_id_path, :national_id_path, :profile_picture, :comments, :is_accepted, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// FindByID returns a student profile by identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students s WHERE s.id = $1 LIMIT 1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by id: %w", err)
	}
	return &student, nil
}

// FindByAccountID resolves the profile owned by the given account.
func (r *StudentRepository) FindByAccountID(ctx context.Context, accountID string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students s WHERE s.account_id = $1 LIMIT 1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, accountID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by account: %w", err)
	}
	return &student, nil
}

// FindDetailByID returns the profile joined with its account email.
func (r *StudentRepository) FindDetailByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s, a.email AS email, a.status AS account_status FROM students s JOIN accounts a ON a.id = s.account_id WHERE s.id = $1 LIMIT 1`, studentColumns)
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student detail: %w", err)
	}
	return &detail, nil
}

// Update persists mutable profile fields.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET full_name = :full_name, telephone = :telephone, university = :university, date_of_birth = :date_of_birth, major = :major, year_of_study = :year_of_study, location = :location, comments = :comments, is_accepted = :is_accepted, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// UpdateProfilePicture stores the uploaded picture path.
func (r *StudentRepository) UpdateProfilePicture(ctx context.Context, id, path string) error {
	const query = `UPDATE students SET profile_picture = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, path, time.Now().UTC()); err != nil {
		return fmt.Errorf("update profile picture: %w", err)
	}
	return nil
}

// UpdateIDImages stores the uploaded identity document paths.
func (r *StudentRepository) UpdateIDImages(ctx context.Context, id string, studentIDPath, nationalIDPath *string) error {
	const query = `UPDATE students SET student_id_path = COALESCE($2, student_id_path), national_id_path = COALESCE($3, national_id_path), updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, studentIDPath, nationalIDPath, time.Now().UTC()); err != nil {
		return fmt.Errorf("update id images: %w", err)
	}
	return nil
}

// List returns student details based on filters with total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	baseQuery := `FROM students s JOIN accounts a ON a.id = s.account_id WHERE a.deleted_at IS NULL`
	var conditions []string
	var args []interface{}

	if filter.Major != nil {
		conditions = append(conditions, fmt.Sprintf("s.major = $%d", len(args)+1))
		args = append(args, *filter.Major)
	}
	if filter.Accepted != nil {
		conditions = append(conditions, fmt.Sprintf("s.is_accepted = $%d", len(args)+1))
		args = append(args, *filter.Accepted)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.full_name) LIKE $%d OR LOWER(a.email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"full_name":  true,
		"created_at": true,
		"updated_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	sortBy = "s." + sortBy

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

	listQuery := fmt.Sprintf("SELECT %s, a.email AS email, a.status AS account_status %s ORDER BY %s %s LIMIT %d OFFSET %d", studentColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}

	return students, total, nil
}
