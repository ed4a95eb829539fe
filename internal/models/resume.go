package models

import "time"

// StudentResume is the structured resume owned 1:1 by a student.
type StudentResume struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Location  string    `db:"location" json:"location"`
	Summary   string    `db:"summary" json:"summary"`
	Education string    `db:"education" json:"education"`
	Experience string   `db:"experience" json:"experience"`
	Skills    string    `db:"skills" json:"skills"`
	Hobbies   string    `db:"hobbies" json:"hobbies"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsComplete reports whether every required section is filled in. All nine
// fields must be non-empty; an empty string counts as incomplete. A complete
// resume is the precondition for applying to a job.
func (r *StudentResume) IsComplete() bool {
	if r == nil {
		return false
	}
	for _, field := range []string{
		r.FullName,
		r.Education,
		r.Hobbies,
		r.Location,
		r.Phone,
		r.Email,
		r.Experience,
		r.Skills,
		r.Summary,
	} {
		if field == "" {
			return false
		}
	}
	return true
}
