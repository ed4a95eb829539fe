package repository

import (
	"context"
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

func boardRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "company_id", "title", "description", "major", "location", "deadline", "status", "openings", "type", "duration", "created_at", "updated_at", "company_name", "already_applied"}).
		AddRow("job-1", "comp-1", "Backend Intern", "Build APIs", string(models.MajorCS), "Nairobi", now, string(models.JobOpen), 2, "onsite", "3_months", now, now, "Acme Ltd", false)
}

func TestJobListBoard(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`NOT EXISTS \(SELECT 1 FROM applications ap WHERE ap\.job_id = j\.id AND ap\.student_id = \$4\)`).
		WithArgs(models.JobOpen, models.MajorCS, today, "stu-1").
		WillReturnRows(boardRows(time.Now()))

	jobs, err := repo.ListBoard(context.Background(), models.BoardFilter{
		StudentID: "stu-1",
		Major:     models.MajorCS,
		Today:     today,
	})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-1", jobs[0].ID)
	assert.Equal(t, "Acme Ltd", jobs[0].CompanyName)
	assert.False(t, jobs[0].AlreadyApplied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobListBoardSearch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`LOWER\(j\.title\) LIKE \$5 OR LOWER\(c\.company_name\) LIKE \$5`).
		WithArgs(models.JobOpen, models.MajorCS, today, "stu-1", "%backend%").
		WillReturnRows(boardRows(time.Now()))

	jobs, err := repo.ListBoard(context.Background(), models.BoardFilter{
		StudentID: "stu-1",
		Major:     models.MajorCS,
		Today:     today,
		Search:    "Backend",
	})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobFindDetailByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "company_id", "title", "description", "major", "location", "deadline", "status", "openings", "type", "duration", "created_at", "updated_at", "company_name"}).
		AddRow("job-1", "comp-1", "Backend Intern", "Build APIs", string(models.MajorCS), "Nairobi", now, string(models.JobOpen), 2, "onsite", "3_months", now, now, "Acme Ltd")
	mock.ExpectQuery(`JOIN companies c ON c\.id = j\.company_id WHERE j\.id = \$1 LIMIT 1`).
		WithArgs("job-1").
		WillReturnRows(rows)

	detail, err := repo.FindDetailByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", detail.CompanyName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobUpdateStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("job-1", models.JobClosed, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "job-1", models.JobClosed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobDeleteWithApplications(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM jobs WHERE id = $1")).
		WithArgs("job-1").
		WillReturnError(&pq.Error{Code: "23503"})

	err := repo.Delete(context.Background(), "job-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobListByCompany(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "company_id", "title", "description", "major", "location", "deadline", "status", "openings", "type", "duration", "created_at", "updated_at"}).
		AddRow("job-1", "comp-1", "Backend Intern", "Build APIs", string(models.MajorCS), "Nairobi", now, string(models.JobOpen), 2, "onsite", "3_months", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs j WHERE 1=1 AND j.company_id = $1 ORDER BY j.created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("comp-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM jobs j WHERE 1=1 AND j.company_id = $1")).
		WithArgs("comp-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	jobs, total, err := repo.List(context.Background(), models.JobFilter{CompanyID: "comp-1"})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
