package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/attachlink/placement-api/internal/models"
)

const companyColumns = `c.id, c.account_id, c.company_name, c.contact_person, c.contact_number, c.company_email, c.website, c.industry, c.location, c.description, c.logo_path, c.created_at, c.updated_at`

// CompanyRepository manages persistence for company profiles.
type CompanyRepository struct {
	db *sqlx.DB
}

// NewCompanyRepository creates a new instance of CompanyRepository.
func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Create inserts a new company profile.
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	if company.ID == "" {
		company.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if company.CreatedAt.IsZero() {
		company.CreatedAt = now
	}
	company.UpdatedAt = now

	const query = `INSERT INTO companies (id, account_id, company_name, contact_person, contact_number, company_email, website, industry, location, description, logo_path, created_at, updated_at)
		VALUES (:id, :account_id, :company_name, :contact_person, :contact_number, :company_email, :website, :industry, :location, :description, :logo_path, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, company); err != nil {
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

// FindByID returns a company profile by identifier.
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*models.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies c WHERE c.id = $1 LIMIT 1`, companyColumns)
	var company models.Company
	if err := r.db.GetContext(ctx, &company, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find company by id: %w", err)
	}
	return &company, nil
}

// FindByAccountID resolves the profile owned by the given account.
func (r *CompanyRepository) FindByAccountID(ctx context.Context, accountID string) (*models.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies c WHERE c.account_id = $1 LIMIT 1`, companyColumns)
	var company models.Company
	if err := r.db.GetContext(ctx, &company, query, accountID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find company by account: %w", err)
	}
	return &company, nil
}

// FindDetailByID returns the profile joined with its account email.
func (r *CompanyRepository) FindDetailByID(ctx context.Context, id string) (*models.CompanyDetail, error) {
	query := fmt.Sprintf(`SELECT %s, a.email AS email, a.status AS account_status FROM companies c JOIN accounts a ON a.id = c.account_id WHERE c.id = $1 LIMIT 1`, companyColumns)
	var detail models.CompanyDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find company detail: %w", err)
	}
	return &detail, nil
}

// Update persists mutable profile fields.
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	company.UpdatedAt = time.Now().UTC()
	const query = `UPDATE companies SET company_name = :company_name, contact_person = :contact_person, contact_number = :contact_number, company_email = :company_email, website = :website, industry = :industry, location = :location, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, company); err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	return nil
}

// UpdateLogo stores the uploaded logo path.
func (r *CompanyRepository) UpdateLogo(ctx context.Context, id, path string) error {
	const query = `UPDATE companies SET logo_path = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, path, time.Now().UTC()); err != nil {
		return fmt.Errorf("update company logo: %w", err)
	}
	return nil
}

// List returns company details based on filters with total count.
func (r *CompanyRepository) List(ctx context.Context, filter models.CompanyFilter) ([]models.CompanyDetail, int, error) {
	baseQuery := `FROM companies c JOIN accounts a ON a.id = c.account_id WHERE a.deleted_at IS NULL`
	var conditions []string
	var args []interface{}

	if filter.Industry != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(c.industry) = $%d", len(args)+1))
		args = append(args, strings.ToLower(filter.Industry))
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(c.company_name) LIKE $%d OR LOWER(a.email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"company_name": true,
		"created_at":   true,
		"updated_at":   true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	sortBy = "c." + sortBy

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s, a.email AS email, a.status AS account_status %s ORDER BY %s %s LIMIT %d OFFSET %d", companyColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var companies []models.CompanyDetail
	if err := r.db.SelectContext(ctx, &companies, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count companies: %w", err)
	}

	return companies, total, nil
}
