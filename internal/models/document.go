package models

// VerificationStatus is the tri-state for uploaded verification documents.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// CompanyDoc is a verification attachment uploaded by a company.
type CompanyDoc struct {
	ID              string             `db:"id" json:"id"`
	CompanyID       string             `db:"company_id" json:"company_id"`
	DocumentType    string             `db:"document_type" json:"document_type"`
	FileURL         string             `db:"file_url" json:"file_url"`
	Status          VerificationStatus `db:"status" json:"status"`
	RejectionReason string             `db:"rejection_reason" json:"rejection_reason"`
}

// StudentDoc is an attachment uploaded by a student for an application.
type StudentDoc struct {
	ID            string `db:"id" json:"id"`
	StudentID     string `db:"student_id" json:"student_id"`
	ApplicationID string `db:"application_id" json:"application_id"`
	DocumentType  string `db:"document_type" json:"document_type"`
	FileName      string `db:"file_name" json:"file_name"`
	FileURL       string `db:"file_url" json:"file_url"`
}
