package models

import "time"

// Company holds the role profile owned 1:1 by a company account.
type Company struct {
	ID            string    `db:"id" json:"id"`
	AccountID     string    `db:"account_id" json:"account_id"`
	CompanyName   string    `db:"company_name" json:"company_name"`
	ContactPerson string    `db:"contact_person" json:"contact_person"`
	ContactNumber string    `db:"contact_number" json:"contact_number"`
	CompanyEmail  string    `db:"company_email" json:"company_email"`
	Website       string    `db:"website" json:"website"`
	Industry      string    `db:"industry" json:"industry"`
	Location      string    `db:"location" json:"location"`
	Description   string    `db:"description" json:"description"`
	LogoPath      *string   `db:"logo_path" json:"logo_path,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// CompanyFilter encapsulates allowed search parameters for listing companies.
type CompanyFilter struct {
	Search    string
	Industry  string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CompanyDetail joins the company profile with its account email.
type CompanyDetail struct {
	Company
	Email         string        `db:"email" json:"email"`
	AccountStatus AccountStatus `db:"account_status" json:"account_status"`
}
