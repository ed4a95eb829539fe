package service

import (
	"context"
	"database/sql"
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

type mockAccountRepo struct {
	accountByEmail    *models.Account
	accountByID       *models.Account
	findByEmailErr    error
	findByIDErr       error
	refreshTokens     map[string]*models.RefreshToken
	activated         bool
	failedAttempts    int
	lastLoginUpdated  bool
	resetToken        string
	resetExpiry       time.Time
	resetCleared      bool
	passwordHash      string
	revokedAllTokens  bool
	auditLogs         []*models.AuditLog
	updatePasswordErr error
	softDeleted       bool
}

func (m *mockAccountRepo) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	if m.accountByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.accountByEmail, nil
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.accountByID != nil {
		return m.accountByID, nil
	}
	if m.accountByEmail != nil {
		return m.accountByEmail, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAccountRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAccountRepo) IncrementFailedAttempts(ctx context.Context, id string) (int, error) {
	m.failedAttempts++
	return m.failedAttempts, nil
}

func (m *mockAccountRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if m.updatePasswordErr != nil {
		return m.updatePasswordErr
	}
	m.passwordHash = passwordHash
	return nil
}

func (m *mockAccountRepo) Activate(ctx context.Context, id string) error {
	m.activated = true
	return nil
}

func (m *mockAccountRepo) SetResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	m.resetToken = token
	m.resetExpiry = expiry
	return nil
}

func (m *mockAccountRepo) FindByResetToken(ctx context.Context, token string) (*models.Account, error) {
	if m.accountByEmail != nil && m.resetToken == token {
		return m.accountByEmail, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAccountRepo) ClearResetToken(ctx context.Context, id string) error {
	m.resetCleared = true
	return nil
}

func (m *mockAccountRepo) RevokeAccountRefreshTokens(ctx context.Context, accountID string) error {
	m.revokedAllTokens = true
	return nil
}

func (m *mockAccountRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAccountRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAccountRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAccountRepo) SoftDelete(ctx context.Context, id string) error {
	m.softDeleted = true
	return nil
}

func (m *mockAccountRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

type mockMailer struct {
	activations []string
	resets      []string
	resetTokens []string
}

func (m *mockMailer) SendActivation(to, accountID, token string) error {
	m.activations = append(m.activations, to)
	return nil
}

func (m *mockMailer) SendPasswordReset(to, token string) error {
	m.resets = append(m.resets, to)
	m.resetTokens = append(m.resetTokens, token)
	return nil
}

func (m *mockMailer) Send(to, subject, body string) error { return nil }

func newTestAuthService(repo *mockAccountRepo, cfg AuthConfig) *AuthService {
	if cfg.AccessTokenSecret == "" {
		cfg.AccessTokenSecret = "secret"
	}
	if cfg.AccessTokenExpiry == 0 {
		cfg.AccessTokenExpiry = time.Hour
	}
	if cfg.RefreshTokenExpiry == 0 {
		cfg.RefreshTokenExpiry = 24 * time.Hour
	}
	return NewAuthService(repo, &mockMailer{}, validator.New(), zap.NewNop(), cfg)
}

func activeAccount(password string) *models.Account {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return &models.Account{
		ID:           "acc-1",
		Email:        "user@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		Status:       models.AccountActive,
	}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAccountRepo{accountByEmail: activeAccount("password")}
	svc := newTestAuthService(repo, AuthConfig{})

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.True(t, repo.lastLoginUpdated)
	assert.NotEmpty(t, repo.refreshTokens)
	assert.NotEmpty(t, repo.auditLogs)
}

func TestAuthServiceLoginWrongPasswordIncrementsCounter(t *testing.T) {
	repo := &mockAccountRepo{accountByEmail: activeAccount("password")}
	svc := newTestAuthService(repo, AuthConfig{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 1, repo.failedAttempts)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	account := activeAccount("password")
	account.Status = models.AccountInactive
	repo := &mockAccountRepo{accountByEmail: account}
	svc := newTestAuthService(repo, AuthConfig{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginLockedAfterFailures(t *testing.T) {
	account := activeAccount("password")
	account.FailedAttempts = 5
	repo := &mockAccountRepo{accountByEmail: account}
	svc := newTestAuthService(repo, AuthConfig{MaxFailedAttempts: 5})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAccountLocked.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginLockoutDisabledByDefault(t *testing.T) {
	account := activeAccount("password")
	account.FailedAttempts = 50
	repo := &mockAccountRepo{accountByEmail: account}
	svc := newTestAuthService(repo, AuthConfig{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)
}

func TestAuthServiceActivate(t *testing.T) {
	token := "activation-token"
	hash := hashToken(token)
	expiry := time.Now().UTC().Add(time.Hour)
	account := activeAccount("password")
	account.Status = models.AccountInactive
	account.ActivationHash = &hash
	account.TokenExpiry = &expiry
	repo := &mockAccountRepo{accountByID: account}
	svc := newTestAuthService(repo, AuthConfig{})

	err := svc.Activate(context.Background(), models.ActivateRequest{AccountID: account.ID, Token: token})
	require.NoError(t, err)
	assert.True(t, repo.activated)
}

func TestAuthServiceActivateWrongToken(t *testing.T) {
	hash := hashToken("right-token")
	account := activeAccount("password")
	account.Status = models.AccountInactive
	account.ActivationHash = &hash
	repo := &mockAccountRepo{accountByID: account}
	svc := newTestAuthService(repo, AuthConfig{})

	err := svc.Activate(context.Background(), models.ActivateRequest{AccountID: account.ID, Token: "wrong-token"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
	assert.False(t, repo.activated)
}

func TestAuthServiceActivateExpiredToken(t *testing.T) {
	token := "activation-token"
	hash := hashToken(token)
	expiry := time.Now().UTC().Add(-time.Hour)
	account := activeAccount("password")
	account.Status = models.AccountInactive
	account.ActivationHash = &hash
	account.TokenExpiry = &expiry
	repo := &mockAccountRepo{accountByID: account}
	svc := newTestAuthService(repo, AuthConfig{})

	err := svc.Activate(context.Background(), models.ActivateRequest{AccountID: account.ID, Token: token})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceActivateAlreadyActiveIsNoOp(t *testing.T) {
	repo := &mockAccountRepo{accountByID: activeAccount("password")}
	svc := newTestAuthService(repo, AuthConfig{})

	err := svc.Activate(context.Background(), models.ActivateRequest{AccountID: "acc-1", Token: "anything"})
	require.NoError(t, err)
	assert.False(t, repo.activated)
}

func TestAuthServiceRefreshTokenRotates(t *testing.T) {
	account := activeAccount("password")
	repo := &mockAccountRepo{
		accountByID:   account,
		refreshTokens: map[string]*models.RefreshToken{},
	}
	repo.refreshTokens["old-token"] = &models.RefreshToken{
		ID:        "rt-1",
		AccountID: account.ID,
		Token:     "old-token",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	svc := newTestAuthService(repo, AuthConfig{})

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "old-token", res.RefreshToken)
	assert.True(t, repo.refreshTokens["old-token"].Revoked)
}

func TestAuthServiceRefreshTokenRevoked(t *testing.T) {
	account := activeAccount("password")
	repo := &mockAccountRepo{
		accountByID: account,
		refreshTokens: map[string]*models.RefreshToken{
			"old-token": {ID: "rt-1", AccountID: account.ID, Token: "old-token", ExpiresAt: time.Now().UTC().Add(time.Hour), Revoked: true},
		},
	}
	svc := newTestAuthService(repo, AuthConfig{})

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePassword(t *testing.T) {
	account := activeAccount("old-password")
	repo := &mockAccountRepo{accountByID: account}
	svc := newTestAuthService(repo, AuthConfig{})

	err := svc.ChangePassword(context.Background(), account.ID, models.ChangePasswordRequest{
		OldPassword: "old-password",
		NewPassword: "new-password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, repo.passwordHash)
	assert.True(t, repo.revokedAllTokens)
}

func TestAuthServiceForgotPasswordUnknownEmailSilent(t *testing.T) {
	repo := &mockAccountRepo{}
	svc := newTestAuthService(repo, AuthConfig{})

	err := svc.ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "nobody@example.com"})
	require.NoError(t, err)
	assert.Empty(t, repo.resetToken)
}

func TestAuthServiceResetPassword(t *testing.T) {
	account := activeAccount("old-password")
	expiry := time.Now().UTC().Add(time.Hour)
	account.TokenExpiry = &expiry
	repo := &mockAccountRepo{accountByEmail: account, resetToken: "reset-token"}
	svc := newTestAuthService(repo, AuthConfig{})

	err := svc.ResetPassword(context.Background(), models.ResetPasswordRequest{Token: "reset-token", NewPassword: "new-password"})
	require.NoError(t, err)
	assert.True(t, repo.resetCleared)
	assert.True(t, repo.revokedAllTokens)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.passwordHash), []byte("new-password")))
}

func TestValidateToken(t *testing.T) {
	repo := &mockAccountRepo{}
	svc := newTestAuthService(repo, AuthConfig{})
	account := activeAccount("password")

	token, err := svc.generateAccessToken(account)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
	assert.Equal(t, account.Role, claims.Role)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(&mockAccountRepo{}, AuthConfig{})

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}

func TestDeactivateAccount(t *testing.T) {
	repo := &mockAccountRepo{accountByID: activeAccount("password")}
	svc := newTestAuthService(repo, AuthConfig{})

	err := svc.DeactivateAccount(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.True(t, repo.softDeleted)
	assert.True(t, repo.revokedAllTokens)
}

func TestDeactivateAccountUnknown(t *testing.T) {
	repo := &mockAccountRepo{}
	svc := newTestAuthService(repo, AuthConfig{})

	err := svc.DeactivateAccount(context.Background(), "acc-missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.False(t, repo.softDeleted)
}
