package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/attachlink/placement-api/internal/models"
	appErrors "github.com/attachlink/placement-api/pkg/errors"
)

type mockEngagementRepo struct {
	projectExists    bool
	createdProject   *models.Project
	projectDetail    *models.ProjectDetail
	task             *models.Task
	createdTask      *models.Task
	tasks            []models.Task
	updates          []models.TaskUpdate
	existingUpdate   *models.TaskUpdate
	upserted         *models.TaskUpdate
	updateDetail     *models.TaskUpdateDetail
	reviewedStatus   models.TaskUpdateStatus
	reviewedProgress *int
	reviewedComments *string
	reviewFeedback   string
}

func (m *mockEngagementRepo) CreateProject(ctx context.Context, project *models.Project) error {
	m.createdProject = project
	return nil
}

func (m *mockEngagementRepo) FindProjectDetailByID(ctx context.Context, id string) (*models.ProjectDetail, error) {
	if m.projectDetail == nil {
		return nil, sql.ErrNoRows
	}
	return m.projectDetail, nil
}

func (m *mockEngagementRepo) ProjectExistsForApplication(ctx context.Context, applicationID string) (bool, error) {
	return m.projectExists, nil
}

func (m *mockEngagementRepo) ListProjectsByCompany(ctx context.Context, companyID string) ([]models.ProjectDetail, error) {
	return nil, nil
}

func (m *mockEngagementRepo) ListProjectsByStudent(ctx context.Context, studentID string) ([]models.ProjectDetail, error) {
	return nil, nil
}

func (m *mockEngagementRepo) CreateTask(ctx context.Context, task *models.Task) error {
	m.createdTask = task
	return nil
}

func (m *mockEngagementRepo) FindTaskByID(ctx context.Context, id string) (*models.Task, error) {
	if m.task == nil {
		return nil, sql.ErrNoRows
	}
	return m.task, nil
}

func (m *mockEngagementRepo) ListTasksByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	return m.tasks, nil
}

func (m *mockEngagementRepo) UpsertTaskUpdate(ctx context.Context, update *models.TaskUpdate) error {
	m.upserted = update
	return nil
}

func (m *mockEngagementRepo) FindTaskUpdate(ctx context.Context, taskID, studentID string) (*models.TaskUpdate, error) {
	if m.existingUpdate == nil {
		return nil, sql.ErrNoRows
	}
	return m.existingUpdate, nil
}

func (m *mockEngagementRepo) FindTaskUpdateDetailByID(ctx context.Context, id string) (*models.TaskUpdateDetail, error) {
	if m.updateDetail == nil {
		return nil, sql.ErrNoRows
	}
	return m.updateDetail, nil
}

func (m *mockEngagementRepo) ListSubmittedUpdatesByCompany(ctx context.Context, companyID string) ([]models.TaskUpdateDetail, error) {
	return nil, nil
}

func (m *mockEngagementRepo) ListTaskUpdatesByProject(ctx context.Context, projectID string) ([]models.TaskUpdate, error) {
	return m.updates, nil
}

func (m *mockEngagementRepo) ReviewTaskUpdate(ctx context.Context, id string, status models.TaskUpdateStatus, progress *int, comments *string, feedback string) error {
	m.reviewedStatus = status
	m.reviewedProgress = progress
	m.reviewedComments = comments
	m.reviewFeedback = feedback
	return nil
}

type mockAppLookup struct {
	detail *models.ApplicationDetail
}

func (m *mockAppLookup) FindDetailByID(ctx context.Context, id string) (*models.ApplicationDetail, error) {
	if m.detail == nil {
		return nil, sql.ErrNoRows
	}
	return m.detail, nil
}

func acceptedApplication() *models.ApplicationDetail {
	return &models.ApplicationDetail{
		Application: models.Application{ID: "app-1", StudentID: "stu-1", JobID: "job-1", Status: models.ApplicationAccepted},
		CompanyID:   "comp-1",
	}
}

func sampleProjectDetail() *models.ProjectDetail {
	return &models.ProjectDetail{
		Project:   models.Project{ID: "proj-1", ApplicationID: "app-1", Title: "Onboarding", Status: models.ProjectStatusActive},
		StudentID: "stu-1",
		CompanyID: "comp-1",
	}
}

func newEngagementFixture(repo *mockEngagementRepo, apps *mockAppLookup, students *mockStudentLookup) *EngagementService {
	return NewEngagementService(repo, apps, students, validator.New(), zap.NewNop())
}

func TestEngagementServiceCreateProject(t *testing.T) {
	repo := &mockEngagementRepo{}
	svc := newEngagementFixture(repo, &mockAppLookup{detail: acceptedApplication()}, &mockStudentLookup{})

	project, err := svc.CreateProject(context.Background(), "comp-1", models.ProjectCreateRequest{
		ApplicationID: "app-1",
		Title:         "Onboarding",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusActive, project.Status)
	assert.NotNil(t, project.ActualStartDate)
	assert.Equal(t, "app-1", repo.createdProject.ApplicationID)
}

func TestEngagementServiceCreateProjectNotAccepted(t *testing.T) {
	app := acceptedApplication()
	app.Status = models.ApplicationPending
	svc := newEngagementFixture(&mockEngagementRepo{}, &mockAppLookup{detail: app}, &mockStudentLookup{})

	_, err := svc.CreateProject(context.Background(), "comp-1", models.ProjectCreateRequest{ApplicationID: "app-1", Title: "Onboarding"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAppNotAccepted.Code, appErrors.FromError(err).Code)
}

func TestEngagementServiceCreateProjectOtherCompany(t *testing.T) {
	svc := newEngagementFixture(&mockEngagementRepo{}, &mockAppLookup{detail: acceptedApplication()}, &mockStudentLookup{})

	_, err := svc.CreateProject(context.Background(), "comp-2", models.ProjectCreateRequest{ApplicationID: "app-1", Title: "Onboarding"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestEngagementServiceCreateProjectDuplicate(t *testing.T) {
	repo := &mockEngagementRepo{projectExists: true}
	svc := newEngagementFixture(repo, &mockAppLookup{detail: acceptedApplication()}, &mockStudentLookup{})

	_, err := svc.CreateProject(context.Background(), "comp-1", models.ProjectCreateRequest{ApplicationID: "app-1", Title: "Onboarding"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestEngagementServiceGetProjectScoped(t *testing.T) {
	repo := &mockEngagementRepo{projectDetail: sampleProjectDetail()}
	svc := newEngagementFixture(repo, &mockAppLookup{}, &mockStudentLookup{})

	_, err := svc.GetProject(context.Background(), "proj-1", models.JWTClaims{Role: models.RoleStudent}, "stu-2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	detail, err := svc.GetProject(context.Background(), "proj-1", models.JWTClaims{Role: models.RoleCompany}, "comp-1")
	require.NoError(t, err)
	assert.Equal(t, "proj-1", detail.ID)
}

func TestEngagementServiceCreateTask(t *testing.T) {
	repo := &mockEngagementRepo{projectDetail: sampleProjectDetail()}
	svc := newEngagementFixture(repo, &mockAppLookup{}, &mockStudentLookup{})

	task, err := svc.CreateTask(
		context.Background(),
		models.JWTClaims{Role: models.RoleCompany, Email: "hr@example.com"},
		"comp-1",
		models.TaskCreateRequest{ProjectID: "proj-1", Title: "Write docs"},
	)
	require.NoError(t, err)
	assert.Equal(t, models.TaskPending, task.Status)
	assert.Equal(t, "hr@example.com", task.AssignedBy)
	assert.NotNil(t, repo.createdTask)
}

func TestEngagementServiceCreateTaskOtherCompany(t *testing.T) {
	repo := &mockEngagementRepo{projectDetail: sampleProjectDetail()}
	svc := newEngagementFixture(repo, &mockAppLookup{}, &mockStudentLookup{})

	_, err := svc.CreateTask(
		context.Background(),
		models.JWTClaims{Role: models.RoleCompany, Email: "hr@example.com"},
		"comp-2",
		models.TaskCreateRequest{ProjectID: "proj-1", Title: "Write docs"},
	)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestEngagementServiceListProjectTasksZipsUpdates(t *testing.T) {
	repo := &mockEngagementRepo{
		projectDetail: sampleProjectDetail(),
		tasks: []models.Task{
			{ID: "task-1", ProjectID: "proj-1", Title: "Write docs"},
			{ID: "task-2", ProjectID: "proj-1", Title: "Review code"},
		},
		updates: []models.TaskUpdate{
			{ID: "upd-1", TaskID: "task-2", StudentID: "stu-1", Status: models.TaskUpdateSubmitted},
		},
	}
	svc := newEngagementFixture(repo, &mockAppLookup{}, &mockStudentLookup{})

	tasks, err := svc.ListProjectTasks(context.Background(), "proj-1", models.JWTClaims{Role: models.RoleCompany}, "comp-1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Nil(t, tasks[0].Update)
	require.NotNil(t, tasks[1].Update)
	assert.Equal(t, "upd-1", tasks[1].Update.ID)
}

func TestEngagementServiceSubmitTaskUpdate(t *testing.T) {
	repo := &mockEngagementRepo{
		projectDetail: sampleProjectDetail(),
		task:          &models.Task{ID: "task-1", ProjectID: "proj-1"},
	}
	students := &mockStudentLookup{student: &models.Student{ID: "stu-1", AccountID: "acc-1"}}
	svc := newEngagementFixture(repo, &mockAppLookup{}, students)

	proof := "tasks/proofs/proof.png"
	update, err := svc.SubmitTaskUpdate(context.Background(), "acc-1", models.TaskUpdateSubmitRequest{
		TaskID:          "task-1",
		ProgressPercent: 60,
		Comments:        "halfway there",
	}, &proof)
	require.NoError(t, err)
	assert.Equal(t, models.TaskUpdateSubmitted, update.Status)
	assert.NotNil(t, update.SubmittedAt)
	require.NotNil(t, repo.upserted)
	assert.Equal(t, &proof, repo.upserted.ProofPath)
}

func TestEngagementServiceResubmitKeepsProof(t *testing.T) {
	previousProof := "tasks/proofs/old.png"
	repo := &mockEngagementRepo{
		projectDetail:  sampleProjectDetail(),
		task:           &models.Task{ID: "task-1", ProjectID: "proj-1"},
		existingUpdate: &models.TaskUpdate{ID: "upd-1", TaskID: "task-1", StudentID: "stu-1", ProofPath: &previousProof},
	}
	students := &mockStudentLookup{student: &models.Student{ID: "stu-1", AccountID: "acc-1"}}
	svc := newEngagementFixture(repo, &mockAppLookup{}, students)

	update, err := svc.SubmitTaskUpdate(context.Background(), "acc-1", models.TaskUpdateSubmitRequest{
		TaskID:          "task-1",
		ProgressPercent: 80,
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, update.ProofPath)
	assert.Equal(t, previousProof, *update.ProofPath)
}

func TestEngagementServiceSubmitTaskUpdateNotAssignee(t *testing.T) {
	repo := &mockEngagementRepo{
		projectDetail: sampleProjectDetail(),
		task:          &models.Task{ID: "task-1", ProjectID: "proj-1"},
	}
	students := &mockStudentLookup{student: &models.Student{ID: "stu-2", AccountID: "acc-2"}}
	svc := newEngagementFixture(repo, &mockAppLookup{}, students)

	_, err := svc.SubmitTaskUpdate(context.Background(), "acc-2", models.TaskUpdateSubmitRequest{
		TaskID:          "task-1",
		ProgressPercent: 10,
	}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotAssignee.Code, appErrors.FromError(err).Code)
}

func TestEngagementServiceReviewTaskUpdate(t *testing.T) {
	repo := &mockEngagementRepo{
		projectDetail: sampleProjectDetail(),
		updateDetail: &models.TaskUpdateDetail{
			TaskUpdate: models.TaskUpdate{ID: "upd-1", TaskID: "task-1", StudentID: "stu-1", Status: models.TaskUpdateSubmitted},
			ProjectID:  "proj-1",
		},
	}
	svc := newEngagementFixture(repo, &mockAppLookup{}, &mockStudentLookup{})

	detail, err := svc.ReviewTaskUpdate(
		context.Background(),
		"upd-1",
		models.TaskUpdateReviewRequest{Status: models.TaskUpdateApproved, Feedback: "good work"},
		models.JWTClaims{Role: models.RoleCompany},
		"comp-1",
	)
	require.NoError(t, err)
	assert.Equal(t, models.TaskUpdateApproved, detail.Status)
	assert.Equal(t, "good work", detail.Feedback)
	assert.NotNil(t, detail.ReviewedAt)
	assert.Equal(t, models.TaskUpdateApproved, repo.reviewedStatus)
	assert.Nil(t, repo.reviewedProgress, "unset progress leaves the submission value")
	assert.Nil(t, repo.reviewedComments)
}

func TestEngagementServiceReviewTaskUpdateCorrectsProgress(t *testing.T) {
	repo := &mockEngagementRepo{
		projectDetail: sampleProjectDetail(),
		updateDetail: &models.TaskUpdateDetail{
			TaskUpdate: models.TaskUpdate{ID: "upd-1", TaskID: "task-1", StudentID: "stu-1", ProgressPercent: 90, Comments: "done", Status: models.TaskUpdateSubmitted},
			ProjectID:  "proj-1",
		},
	}
	svc := newEngagementFixture(repo, &mockAppLookup{}, &mockStudentLookup{})

	progress := 60
	comments := "docs section still missing"
	detail, err := svc.ReviewTaskUpdate(
		context.Background(),
		"upd-1",
		models.TaskUpdateReviewRequest{
			Status:          models.TaskUpdateRejected,
			ProgressPercent: &progress,
			Comments:        &comments,
			Feedback:        "resubmit with docs",
		},
		models.JWTClaims{Role: models.RoleCompany},
		"comp-1",
	)
	require.NoError(t, err)
	assert.Equal(t, 60, detail.ProgressPercent)
	assert.Equal(t, "docs section still missing", detail.Comments)
	require.NotNil(t, repo.reviewedProgress)
	assert.Equal(t, 60, *repo.reviewedProgress)
	require.NotNil(t, repo.reviewedComments)
	assert.Equal(t, "docs section still missing", *repo.reviewedComments)
}

func TestEngagementServiceReviewTaskUpdateOtherCompany(t *testing.T) {
	repo := &mockEngagementRepo{
		projectDetail: sampleProjectDetail(),
		updateDetail: &models.TaskUpdateDetail{
			TaskUpdate: models.TaskUpdate{ID: "upd-1", Status: models.TaskUpdateSubmitted},
			ProjectID:  "proj-1",
		},
	}
	svc := newEngagementFixture(repo, &mockAppLookup{}, &mockStudentLookup{})

	_, err := svc.ReviewTaskUpdate(
		context.Background(),
		"upd-1",
		models.TaskUpdateReviewRequest{Status: models.TaskUpdateRejected},
		models.JWTClaims{Role: models.RoleCompany},
		"comp-2",
	)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
