package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/attachlink/placement-api/internal/models"
	appErrors "github.com/attachlink/placement-api/pkg/errors"
)

type mockSignupAccountRepo struct {
	created        *models.Account
	createErr      error
	activationHash string
	activationExp  time.Time
	auditLogs      []*models.AuditLog
	setTokenCalls  int
}

func (m *mockSignupAccountRepo) Create(ctx context.Context, account *models.Account) error {
	if m.createErr != nil {
		return m.createErr
	}
	account.ID = "acc-1"
	m.created = account
	return nil
}

func (m *mockSignupAccountRepo) SetActivationToken(ctx context.Context, id, tokenHash string, expiry time.Time) error {
	m.setTokenCalls++
	m.activationHash = tokenHash
	m.activationExp = expiry
	return nil
}

func (m *mockSignupAccountRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

type mockSignupStudentRepo struct {
	created *models.Student
}

func (m *mockSignupStudentRepo) Create(ctx context.Context, student *models.Student) error {
	student.ID = "stu-1"
	m.created = student
	return nil
}

type mockSignupCompanyRepo struct {
	created *models.Company
}

func (m *mockSignupCompanyRepo) Create(ctx context.Context, company *models.Company) error {
	company.ID = "comp-1"
	m.created = company
	return nil
}

func newRegistrationFixture() (*RegistrationService, *mockSignupAccountRepo, *mockSignupStudentRepo, *mockSignupCompanyRepo, *mockMailer) {
	accounts := &mockSignupAccountRepo{}
	students := &mockSignupStudentRepo{}
	companies := &mockSignupCompanyRepo{}
	mail := &mockMailer{}
	svc := NewRegistrationService(accounts, students, companies, mail, validator.New(), zap.NewNop(), time.Hour)
	return svc, accounts, students, companies, mail
}

func TestRegisterStudent(t *testing.T) {
	svc, accounts, students, _, mail := newRegistrationFixture()

	resp, err := svc.RegisterStudent(context.Background(), models.StudentSignupRequest{
		Email:    "jane@example.com",
		Password: "secret123",
		FullName: "Jane Doe",
		Major:    models.MajorCS,
	})
	require.NoError(t, err)
	assert.Equal(t, "acc-1", resp.AccountID)
	assert.Equal(t, "stu-1", resp.ProfileID)
	assert.Equal(t, models.AccountInactive, resp.Status)

	require.NotNil(t, accounts.created)
	assert.Equal(t, models.RoleStudent, accounts.created.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(accounts.created.PasswordHash), []byte("secret123")))

	require.NotNil(t, students.created)
	assert.Equal(t, "acc-1", students.created.AccountID)

	assert.Equal(t, 1, accounts.setTokenCalls)
	assert.NotEmpty(t, accounts.activationHash)
	assert.True(t, accounts.activationExp.After(time.Now()))
	assert.Equal(t, []string{"jane@example.com"}, mail.activations)
}

func TestRegisterStudentUnknownMajor(t *testing.T) {
	svc, accounts, _, _, _ := newRegistrationFixture()

	_, err := svc.RegisterStudent(context.Background(), models.StudentSignupRequest{
		Email:    "jane@example.com",
		Password: "secret123",
		FullName: "Jane Doe",
		Major:    models.Major("astrology"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, accounts.created)
}

func TestRegisterStudentShortPassword(t *testing.T) {
	svc, _, _, _, _ := newRegistrationFixture()

	_, err := svc.RegisterStudent(context.Background(), models.StudentSignupRequest{
		Email:    "jane@example.com",
		Password: "short",
		FullName: "Jane Doe",
		Major:    models.MajorCS,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRegisterStudentDuplicateEmail(t *testing.T) {
	svc, accounts, _, _, _ := newRegistrationFixture()
	accounts.createErr = appErrors.Clone(appErrors.ErrDuplicateEmail, "email already registered")

	_, err := svc.RegisterStudent(context.Background(), models.StudentSignupRequest{
		Email:    "jane@example.com",
		Password: "secret123",
		FullName: "Jane Doe",
		Major:    models.MajorCS,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateEmail.Code, appErrors.FromError(err).Code)
}

func TestRegisterCompany(t *testing.T) {
	svc, accounts, _, companies, mail := newRegistrationFixture()

	resp, err := svc.RegisterCompany(context.Background(), models.CompanySignupRequest{
		Email:       "hr@acme.test",
		Password:    "secret123",
		CompanyName: "Acme Ltd",
	})
	require.NoError(t, err)
	assert.Equal(t, "acc-1", resp.AccountID)
	assert.Equal(t, "comp-1", resp.ProfileID)

	require.NotNil(t, accounts.created)
	assert.Equal(t, models.RoleCompany, accounts.created.Role)
	require.NotNil(t, companies.created)
	assert.Equal(t, "Acme Ltd", companies.created.CompanyName)
	assert.Equal(t, []string{"hr@acme.test"}, mail.activations)
}

func TestRegisterCompanyBadContactEmail(t *testing.T) {
	svc, _, _, _, _ := newRegistrationFixture()

	_, err := svc.RegisterCompany(context.Background(), models.CompanySignupRequest{
		Email:        "hr@acme.test",
		Password:     "secret123",
		CompanyName:  "Acme Ltd",
		CompanyEmail: "not-an-email",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
