package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/attachlink/placement-api/internal/models"
)

// ResumeRepository manages persistence for structured resumes.
type ResumeRepository struct {
	db *sqlx.DB
}

// NewResumeRepository creates a new instance of ResumeRepository.
func NewResumeRepository(db *sqlx.DB) *ResumeRepository {
	return &ResumeRepository{db: db}
}

// FindByStudent returns the student's resume, if one exists.
func (r *ResumeRepository) FindByStudent(ctx context.Context, studentID string) (*models.StudentResume, error) {
	const query = `SELECT id, student_id, full_name, email, phone, location, summary, education, experience, skills, hobbies, updated_at
		FROM resumes WHERE student_id = $1 LIMIT 1`
	var resume models.StudentResume
	if err := r.db.GetContext(ctx, &resume, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find resume: %w", err)
	}
	return &resume, nil
}

// Upsert creates the student's resume or replaces every section of the
// existing one. The unique student_id index makes the resume 1:1.
func (r *ResumeRepository) Upsert(ctx context.Context, resume *models.StudentResume) error {
	if resume.ID == "" {
		resume.ID = uuid.NewString()
	}
	resume.UpdatedAt = time.Now().UTC()

	const query = `INSERT INTO resumes (id, student_id, full_name, email, phone, location, summary, education, experience, skills, hobbies, updated_at)
		VALUES (:id, :student_id, :full_name, :email, :phone, :location, :summary, :education, :experience, :skills, :hobbies, :updated_at)
		ON CONFLICT (student_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			location = EXCLUDED.location,
			summary = EXCLUDED.summary,
			education = EXCLUDED.education,
			experience = EXCLUDED.experience,
			skills = EXCLUDED.skills,
			hobbies = EXCLUDED.hobbies,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, resume); err != nil {
		return fmt.Errorf("upsert resume: %w", err)
	}
	return nil
}
