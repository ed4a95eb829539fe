package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/attachlink/placement-api/internal/models"
	appErrors "github.com/attachlink/placement-api/pkg/errors"
	"github.com/attachlink/placement-api/pkg/mailer"
)

type registrationAccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	SetActivationToken(ctx context.Context, id, tokenHash string, expiry time.Time) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type registrationStudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
}

type registrationCompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
}

// RegistrationService handles student and company signup. New accounts start
// inactive and become usable once the emailed activation token is consumed.
type RegistrationService struct {
	accounts  registrationAccountRepository
	students  registrationStudentRepository
	companies registrationCompanyRepository
	mailer    mailer.Mailer
	validator *validator.Validate
	logger    *zap.Logger
	tokenTTL  time.Duration
}

// NewRegistrationService constructs a RegistrationService instance.
func NewRegistrationService(
	accounts registrationAccountRepository,
	students registrationStudentRepository,
	companies registrationCompanyRepository,
	mail mailer.Mailer,
	validate *validator.Validate,
	logger *zap.Logger,
	tokenTTL time.Duration,
) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if tokenTTL <= 0 {
		tokenTTL = 48 * time.Hour
	}
	return &RegistrationService{
		accounts:  accounts,
		students:  students,
		companies: companies,
		mailer:    mail,
		validator: validate,
		logger:    logger,
		tokenTTL:  tokenTTL,
	}
}

// RegisterStudent creates an inactive student account with its profile and
// mails the activation link.
func (s *RegistrationService) RegisterStudent(ctx context.Context, req models.StudentSignupRequest) (*models.SignupResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student signup payload")
	}
	if !models.ValidMajor(req.Major) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown major")
	}

	account, err := s.createAccount(ctx, req.Email, req.Password, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		AccountID:   account.ID,
		FullName:    req.FullName,
		Telephone:   req.Telephone,
		University:  req.University,
		DateOfBirth: req.DateOfBirth,
		Major:       req.Major,
		YearOfStudy: req.YearOfStudy,
		Location:    req.Location,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student profile")
	}

	s.issueActivation(ctx, account)

	return &models.SignupResponse{
		AccountID: account.ID,
		ProfileID: student.ID,
		Email:     account.Email,
		Status:    account.Status,
	}, nil
}

// RegisterCompany creates an inactive company account with its profile and
// mails the activation link.
func (s *RegistrationService) RegisterCompany(ctx context.Context, req models.CompanySignupRequest) (*models.SignupResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid company signup payload")
	}

	account, err := s.createAccount(ctx, req.Email, req.Password, models.RoleCompany)
	if err != nil {
		return nil, err
	}

	company := &models.Company{
		AccountID:     account.ID,
		CompanyName:   req.CompanyName,
		ContactPerson: req.ContactPerson,
		ContactNumber: req.ContactNumber,
		CompanyEmail:  req.CompanyEmail,
		Website:       req.Website,
		Industry:      req.Industry,
		Location:      req.Location,
		Description:   req.Description,
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create company profile")
	}

	s.issueActivation(ctx, account)

	return &models.SignupResponse{
		AccountID: account.ID,
		ProfileID: company.ID,
		Email:     account.Email,
		Status:    account.Status,
	}, nil
}

func (s *RegistrationService) createAccount(ctx context.Context, email, password string, role models.AccountRole) (*models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	account := &models.Account{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       models.AccountInactive,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if appErr := appErrors.FromError(err); appErr != nil && appErr.Code == appErrors.ErrDuplicateEmail.Code {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}

	s.auditRegister(ctx, account.ID)
	return account, nil
}

// issueActivation stores the hashed activation token and mails the plain one.
// Delivery failures are logged, not surfaced: the account can still be
// activated through a re-sent link.
func (s *RegistrationService) issueActivation(ctx context.Context, account *models.Account) {
	token, err := generateOpaqueToken()
	if err != nil {
		s.logger.Error("failed to generate activation token", zap.Error(err))
		return
	}

	expiry := time.Now().UTC().Add(s.tokenTTL)
	if err := s.accounts.SetActivationToken(ctx, account.ID, hashToken(token), expiry); err != nil {
		s.logger.Error("failed to store activation token", zap.Error(err))
		return
	}

	if s.mailer == nil {
		return
	}
	if err := s.mailer.SendActivation(account.Email, account.ID, token); err != nil {
		s.logger.Warn("failed to send activation email", zap.String("email", account.Email), zap.Error(err))
	}
}

func (s *RegistrationService) auditRegister(ctx context.Context, accountID string) {
	if err := s.accounts.CreateAuditLog(ctx, &models.AuditLog{
		AccountID:  &accountID,
		Action:     models.AuditActionRegister,
		Resource:   "auth",
		ResourceID: &accountID,
		NewValues:  []byte(`{"status":"registered"}`),
	}); err != nil {
		s.logger.Warn("failed to record register audit log", zap.Error(err))
	}
}
