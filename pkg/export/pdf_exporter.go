package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// ResumeDocument carries the resume fields handed to the PDF renderer.
// Section order is a contract with consumers: name, email, phone, location,
// summary, education, experience, skills, hobbies.
type ResumeDocument struct {
	FullName   string
	Email      string
	Phone      string
	Location   string
	Summary    string
	Education  string
	Experience string
	Skills     string
	Hobbies    string
}

// PDFExporter renders resumes into a downloadable PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderResume produces the resume PDF. Empty sections are skipped.
func (e *PDFExporter) RenderResume(doc ResumeDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	if doc.FullName != "" {
		pdf.SetFont("Arial", "B", 18)
		pdf.CellFormat(0, 10, doc.FullName, "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "", 11)
	for _, contact := range []struct {
		label string
		value string
	}{
		{"Email", doc.Email},
		{"Phone", doc.Phone},
		{"Location", doc.Location},
	} {
		if contact.value == "" {
			continue
		}
		pdf.CellFormat(0, 6, fmt.Sprintf("%s: %s", contact.label, contact.value), "", 1, "", false, 0, "")
	}
	pdf.Ln(4)

	for _, section := range []struct {
		title string
		body  string
	}{
		{"Summary", doc.Summary},
		{"Education", doc.Education},
		{"Experience", doc.Experience},
		{"Skills", doc.Skills},
		{"Hobbies", doc.Hobbies},
	} {
		if section.body == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, section.title, "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, section.body, "", "", false)
		pdf.Ln(4)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render resume pdf: %w", err)
	}
	return buf.Bytes(), nil
}
