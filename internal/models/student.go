package models

import "time"

// Major is the field of study shared by students and job postings.
type Major string

const (
	MajorCS  Major = "cs"
	MajorIT  Major = "it"
	MajorEng Major = "eng"
	MajorBus Major = "bus"
	MajorEdu Major = "edu"
)

// ValidMajor reports whether the value is a known major.
func ValidMajor(m Major) bool {
	switch m {
	case MajorCS, MajorIT, MajorEng, MajorBus, MajorEdu:
		return true
	}
	return false
}

// Student holds the role profile owned 1:1 by a student account.
type Student struct {
	ID             string     `db:"id" json:"id"`
	AccountID      string     `db:"account_id" json:"account_id"`
	FullName       string     `db:"full_name" json:"full_name"`
	Telephone      string     `db:"telephone" json:"telephone"`
	University     string     `db:"university" json:"university"`
	DateOfBirth    *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Major          Major      `db:"major" json:"major"`
	YearOfStudy    int        `db:"year_of_study" json:"year_of_study"`
	Location       string     `db:"location" json:"location"`
	StudentIDPath  *string    `db:"student_id_path" json:"student_id_path,omitempty"`
	NationalIDPath *string    `db:"national_id_path" json:"national_id_path,omitempty"`
	ProfilePicture *string    `db:"profile_picture" json:"profile_picture,omitempty"`
	Comments       string     `db:"comments" json:"comments"`
	IsAccepted     bool       `db:"is_accepted" json:"is_accepted"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Major     *Major
	Accepted  *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StudentDetail joins the student profile with its account email.
type StudentDetail struct {
	Student
	Email         string        `db:"email" json:"email"`
	AccountStatus AccountStatus `db:"account_status" json:"account_status"`
}
