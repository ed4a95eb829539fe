package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/attachlink/placement-api/internal/models"
	appErrors "github.com/attachlink/placement-api/pkg/errors"
	"github.com/attachlink/placement-api/pkg/export"
)

type mockResumeRepo struct {
	resume   *models.StudentResume
	upserted *models.StudentResume
}

func (m *mockResumeRepo) FindByStudent(ctx context.Context, studentID string) (*models.StudentResume, error) {
	if m.resume == nil {
		return nil, sql.ErrNoRows
	}
	return m.resume, nil
}

func (m *mockResumeRepo) Upsert(ctx context.Context, resume *models.StudentResume) error {
	m.upserted = resume
	return nil
}

type mockResumeStudentRepo struct {
	student *models.Student
}

func (m *mockResumeStudentRepo) FindByAccountID(ctx context.Context, accountID string) (*models.Student, error) {
	if m.student == nil || m.student.AccountID != accountID {
		return nil, sql.ErrNoRows
	}
	return m.student, nil
}

func (m *mockResumeStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if m.student == nil || m.student.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.student, nil
}

type fakeRenderer struct {
	doc export.ResumeDocument
}

func (f *fakeRenderer) RenderResume(doc export.ResumeDocument) ([]byte, error) {
	f.doc = doc
	return []byte("%PDF-1.4 fake"), nil
}

func TestResumeServiceGetMine(t *testing.T) {
	repo := &mockResumeRepo{resume: completeResume("stu-1")}
	students := &mockResumeStudentRepo{student: &models.Student{ID: "stu-1", AccountID: "acc-1"}}
	svc := NewResumeService(repo, students, &fakeRenderer{}, validator.New(), zap.NewNop())

	resume, complete, err := svc.GetMine(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.True(t, complete)
	assert.Equal(t, "Jane Doe", resume.FullName)
}

func TestResumeServiceGetMineIncomplete(t *testing.T) {
	resume := completeResume("stu-1")
	resume.Summary = ""
	repo := &mockResumeRepo{resume: resume}
	students := &mockResumeStudentRepo{student: &models.Student{ID: "stu-1", AccountID: "acc-1"}}
	svc := NewResumeService(repo, students, &fakeRenderer{}, validator.New(), zap.NewNop())

	_, complete, err := svc.GetMine(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.False(t, complete)
}

func TestResumeServiceUpsertTrimsContactFields(t *testing.T) {
	repo := &mockResumeRepo{}
	students := &mockResumeStudentRepo{student: &models.Student{ID: "stu-1", AccountID: "acc-1"}}
	svc := NewResumeService(repo, students, &fakeRenderer{}, validator.New(), zap.NewNop())

	resume, err := svc.Upsert(context.Background(), "acc-1", models.ResumeUpsertRequest{
		FullName: "  Jane Doe  ",
		Email:    "jane@example.com",
		Phone:    " 0700000000 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", resume.FullName)
	assert.Equal(t, "0700000000", resume.Phone)
	require.NotNil(t, repo.upserted)
	assert.Equal(t, "stu-1", repo.upserted.StudentID)
	assert.False(t, resume.IsComplete(), "partial saves are allowed")
}

func TestResumeServiceExportPDF(t *testing.T) {
	repo := &mockResumeRepo{resume: completeResume("stu-1")}
	students := &mockResumeStudentRepo{student: &models.Student{ID: "stu-1", AccountID: "acc-1"}}
	renderer := &fakeRenderer{}
	svc := NewResumeService(repo, students, renderer, validator.New(), zap.NewNop())

	payload, filename, err := svc.ExportPDF(context.Background(), "stu-1", models.JWTClaims{AccountID: "acc-1", Role: models.RoleStudent})
	require.NoError(t, err)
	assert.NotEmpty(t, payload)
	assert.True(t, strings.HasPrefix(filename, "resume-jane-doe-"))
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
	assert.Equal(t, "Jane Doe", renderer.doc.FullName)
}

func TestResumeServiceExportPDFOtherStudent(t *testing.T) {
	repo := &mockResumeRepo{resume: completeResume("stu-1")}
	students := &mockResumeStudentRepo{student: &models.Student{ID: "stu-1", AccountID: "acc-1"}}
	svc := NewResumeService(repo, students, &fakeRenderer{}, validator.New(), zap.NewNop())

	_, _, err := svc.ExportPDF(context.Background(), "stu-1", models.JWTClaims{AccountID: "acc-2", Role: models.RoleStudent})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestResumeServiceExportPDFCompanyAllowed(t *testing.T) {
	repo := &mockResumeRepo{resume: completeResume("stu-1")}
	students := &mockResumeStudentRepo{student: &models.Student{ID: "stu-1", AccountID: "acc-1"}}
	svc := NewResumeService(repo, students, &fakeRenderer{}, validator.New(), zap.NewNop())

	_, _, err := svc.ExportPDF(context.Background(), "stu-1", models.JWTClaims{AccountID: "acc-9", Role: models.RoleCompany})
	require.NoError(t, err)
}
