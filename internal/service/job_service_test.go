package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/attachlink/placement-api/internal/models"
	appErrors "github.com/attachlink/placement-api/pkg/errors"
)

type mockJobCrudRepo struct {
	created    *models.Job
	job        *models.Job
	boardJobs  []models.BoardJob
	boardCalls int
	lastFilter models.BoardFilter
	closed     bool
	deleted    bool
	deleteErr  error
	updatedJob *models.Job
}

func (m *mockJobCrudRepo) Create(ctx context.Context, job *models.Job) error {
	m.created = job
	return nil
}

func (m *mockJobCrudRepo) FindByID(ctx context.Context, id string) (*models.Job, error) {
	if m.job == nil {
		return nil, sql.ErrNoRows
	}
	return m.job, nil
}

func (m *mockJobCrudRepo) FindDetailByID(ctx context.Context, id string) (*models.JobDetail, error) {
	if m.job == nil {
		return nil, sql.ErrNoRows
	}
	return &models.JobDetail{Job: *m.job}, nil
}

func (m *mockJobCrudRepo) Update(ctx context.Context, job *models.Job) error {
	m.updatedJob = job
	return nil
}

func (m *mockJobCrudRepo) UpdateStatus(ctx context.Context, id string, status models.JobStatus) error {
	m.closed = status == models.JobClosed
	return nil
}

func (m *mockJobCrudRepo) ListBoard(ctx context.Context, filter models.BoardFilter) ([]models.BoardJob, error) {
	m.boardCalls++
	m.lastFilter = filter
	return m.boardJobs, nil
}

func (m *mockJobCrudRepo) List(ctx context.Context, filter models.JobFilter) ([]models.Job, int, error) {
	return nil, 0, nil
}

func (m *mockJobCrudRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = true
	return nil
}

type memoryCache struct {
	entries map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.deleted = append(c.deleted, pattern)
	for key := range c.entries {
		delete(c.entries, key)
	}
	return nil
}

func boardStudent() *mockStudentLookup {
	return &mockStudentLookup{student: &models.Student{ID: "stu-1", AccountID: "acc-1", Major: models.MajorCS}}
}

func TestJobServiceCreateDefaults(t *testing.T) {
	repo := &mockJobCrudRepo{}
	svc := NewJobService(repo, boardStudent(), nil, validator.New(), zap.NewNop(), BoardConfig{})

	job, err := svc.Create(context.Background(), "comp-1", models.JobCreateRequest{
		Title: "Intern",
		Major: models.MajorCS,
	})
	require.NoError(t, err)
	assert.Equal(t, models.JobOpen, job.Status)
	assert.Equal(t, 1, job.Openings)
	assert.Equal(t, "comp-1", repo.created.CompanyID)
}

func TestJobServiceCreateUnknownMajor(t *testing.T) {
	svc := NewJobService(&mockJobCrudRepo{}, boardStudent(), nil, validator.New(), zap.NewNop(), BoardConfig{})

	_, err := svc.Create(context.Background(), "comp-1", models.JobCreateRequest{
		Title: "Intern",
		Major: models.Major("astrology"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestJobServiceCreateDraft(t *testing.T) {
	repo := &mockJobCrudRepo{}
	svc := NewJobService(repo, boardStudent(), nil, validator.New(), zap.NewNop(), BoardConfig{})

	job, err := svc.Create(context.Background(), "comp-1", models.JobCreateRequest{
		Title:  "Intern",
		Major:  models.MajorCS,
		Status: models.JobDraft,
	})
	require.NoError(t, err)
	assert.Equal(t, models.JobDraft, job.Status)
}

func TestJobServiceCreateUnknownStatus(t *testing.T) {
	svc := NewJobService(&mockJobCrudRepo{}, boardStudent(), nil, validator.New(), zap.NewNop(), BoardConfig{})

	_, err := svc.Create(context.Background(), "comp-1", models.JobCreateRequest{
		Title:  "Intern",
		Major:  models.MajorCS,
		Status: models.JobStatus("archived"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestJobServiceBoardCacheRoundTrip(t *testing.T) {
	repo := &mockJobCrudRepo{boardJobs: []models.BoardJob{
		{JobDetail: models.JobDetail{Job: models.Job{ID: "job-1", Title: "Intern"}}},
	}}
	cache := newMemoryCache()
	svc := NewJobService(repo, boardStudent(), cache, validator.New(), zap.NewNop(), BoardConfig{CacheEnabled: true, CacheTTL: time.Minute})

	first, err := svc.Board(context.Background(), "acc-1", "")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, repo.boardCalls)
	assert.Equal(t, "stu-1", repo.lastFilter.StudentID)

	second, err := svc.Board(context.Background(), "acc-1", "")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "job-1", second[0].ID)
	assert.Equal(t, 1, repo.boardCalls, "second read should be served from cache")
}

func TestJobServiceBoardSearchKeysSeparately(t *testing.T) {
	repo := &mockJobCrudRepo{}
	cache := newMemoryCache()
	svc := NewJobService(repo, boardStudent(), cache, validator.New(), zap.NewNop(), BoardConfig{CacheEnabled: true, CacheTTL: time.Minute})

	_, err := svc.Board(context.Background(), "acc-1", "")
	require.NoError(t, err)
	_, err = svc.Board(context.Background(), "acc-1", "backend")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.boardCalls)
	assert.Equal(t, "backend", repo.lastFilter.Search)
}

func TestJobServiceBoardCacheDisabled(t *testing.T) {
	repo := &mockJobCrudRepo{}
	cache := newMemoryCache()
	svc := NewJobService(repo, boardStudent(), cache, validator.New(), zap.NewNop(), BoardConfig{CacheEnabled: false})

	_, err := svc.Board(context.Background(), "acc-1", "")
	require.NoError(t, err)
	_, err = svc.Board(context.Background(), "acc-1", "")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.boardCalls)
	assert.Empty(t, cache.entries)
}

func TestJobServiceMutationsInvalidateBoard(t *testing.T) {
	repo := &mockJobCrudRepo{job: &models.Job{ID: "job-1", CompanyID: "comp-1", Major: models.MajorCS}}
	cache := newMemoryCache()
	svc := NewJobService(repo, boardStudent(), cache, validator.New(), zap.NewNop(), BoardConfig{CacheEnabled: true, CacheTTL: time.Minute})

	require.NoError(t, svc.Close(context.Background(), "job-1", "comp-1", false))
	assert.True(t, repo.closed)
	assert.Contains(t, cache.deleted, "board:*")
}

func TestJobServiceInvalidateBoardForStudent(t *testing.T) {
	cache := newMemoryCache()
	svc := NewJobService(&mockJobCrudRepo{}, boardStudent(), cache, validator.New(), zap.NewNop(), BoardConfig{CacheEnabled: true, CacheTTL: time.Minute})

	svc.InvalidateBoardForStudent(context.Background(), "stu-1")
	assert.Contains(t, cache.deleted, "board:stu-1:*")
}

func TestJobServiceOwnership(t *testing.T) {
	repo := &mockJobCrudRepo{job: &models.Job{ID: "job-1", CompanyID: "comp-1", Major: models.MajorCS}}
	svc := NewJobService(repo, boardStudent(), nil, validator.New(), zap.NewNop(), BoardConfig{})

	err := svc.Close(context.Background(), "job-1", "comp-2", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Close(context.Background(), "job-1", "", true))
}

func TestJobServiceDelete(t *testing.T) {
	repo := &mockJobCrudRepo{job: &models.Job{ID: "job-1", CompanyID: "comp-1", Major: models.MajorCS}}
	svc := NewJobService(repo, boardStudent(), nil, validator.New(), zap.NewNop(), BoardConfig{})

	require.NoError(t, svc.Delete(context.Background(), "job-1", "comp-1", false))
	assert.True(t, repo.deleted)
}

func TestJobServiceDeleteWithApplications(t *testing.T) {
	repo := &mockJobCrudRepo{
		job:       &models.Job{ID: "job-1", CompanyID: "comp-1", Major: models.MajorCS},
		deleteErr: appErrors.Clone(appErrors.ErrConflict, "job has applications and cannot be deleted"),
	}
	svc := NewJobService(repo, boardStudent(), nil, validator.New(), zap.NewNop(), BoardConfig{})

	err := svc.Delete(context.Background(), "job-1", "comp-1", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.False(t, repo.deleted)
}
