package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attachlink/placement-api/internal/models"
	appErrors "github.com/attachlink/placement-api/pkg/errors"
)

func TestApplicationCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("INSERT INTO applications").WillReturnResult(sqlmock.NewResult(1, 1))

	app := &models.Application{
		StudentID: "stu-1",
		JobID:     "job-1",
		Status:    models.ApplicationPending,
	}
	require.NoError(t, repo.Create(context.Background(), app))
	assert.NotEmpty(t, app.ID)
	assert.False(t, app.AppliedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("INSERT INTO applications").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Application{
		StudentID: "stu-1",
		JobID:     "job-1",
		Status:    models.ApplicationPending,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrAlreadyApplied))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationExistsForStudentJob(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM applications WHERE student_id = $1 AND job_id = $2)")).
		WithArgs("stu-1", "job-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsForStudentJob(context.Background(), "stu-1", "job-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationListByCompany(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "job_id", "full_name", "email", "telephone", "resume_id", "status", "applied_at", "reviewed_at", "reviewed_by", "stage", "comments", "student_name", "job_title", "company_id", "company_name"}).
		AddRow("app-1", "stu-1", "job-1", "Jane Doe", "jane@example.com", nil, nil, string(models.ApplicationPending), now, nil, nil, "screening", "", "Jane Doe", "Backend Intern", "comp-1", "Acme Ltd")
	mock.ExpectQuery(`WHERE 1=1 AND j\.company_id = \$1 ORDER BY ap\.applied_at DESC LIMIT 20 OFFSET 0`).
		WithArgs("comp-1").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM applications ap`).
		WithArgs("comp-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	apps, total, err := repo.List(context.Background(), models.ApplicationFilter{CompanyID: "comp-1"})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Backend Intern", apps[0].JobTitle)
	assert.Equal(t, "Acme Ltd", apps[0].CompanyName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationUpdateStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET status = $2, reviewed_at = $3, reviewed_by = $4, comments = $5 WHERE id = $1")).
		WithArgs("app-1", models.ApplicationAccepted, sqlmock.AnyArg(), "hr@example.com", "welcome aboard").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "app-1", models.ApplicationAccepted, "hr@example.com", "welcome aboard")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationCountByStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM applications WHERE student_id = $1 AND status = $2")).
		WithArgs("stu-1", models.ApplicationAccepted).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	status := models.ApplicationAccepted
	total, err := repo.CountByStudent(context.Background(), "stu-1", &status)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
