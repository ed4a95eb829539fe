package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/attachlink/placement-api/internal/models"
	"github.com/attachlink/placement-api/internal/service"
	appErrors "github.com/attachlink/placement-api/pkg/errors"
	"github.com/attachlink/placement-api/pkg/response"
)

// ApplicationHandler wires HTTP endpoints to the application service.
type ApplicationHandler struct {
	service   *service.ApplicationService
	students  *service.StudentService
	companies *service.CompanyService
	documents *service.DocumentService
	uploader  *Uploader
}

// NewApplicationHandler creates a new handler.
func NewApplicationHandler(
	svc *service.ApplicationService,
	students *service.StudentService,
	companies *service.CompanyService,
	documents *service.DocumentService,
	uploader *Uploader,
) *ApplicationHandler {
	return &ApplicationHandler{service: svc, students: students, companies: companies, documents: documents, uploader: uploader}
}

// Apply godoc
// @Summary Apply to a job posting
// @Description Requires a complete resume; a student can apply to a job once
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body models.ApplyRequest true "Apply payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Apply(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid apply payload"))
		return
	}

	app, err := h.service.Apply(c.Request.Context(), claims.AccountID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, app)
}

// Get godoc
// @Summary Get an application
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	profileID, err := h.callerProfileID(c, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	detail, err := h.service.Get(c.Request.Context(), c.Param("id"), *claims, profileID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// List godoc
// @Summary List applications in the caller's scope
// @Description Students see their own; companies see those against their postings; admins see all
// @Tags Applications
// @Produce json
// @Param status query string false "Filter by status"
// @Param jobId query string false "Filter by job"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.ApplicationFilter{JobID: c.Query("jobId")}
	if raw := c.Query("status"); raw != "" {
		status := models.ApplicationStatus(raw)
		filter.Status = &status
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	switch claims.Role {
	case models.RoleStudent:
		student, err := h.students.GetByAccount(c.Request.Context(), claims.AccountID)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.StudentID = student.ID
	case models.RoleCompany:
		company, err := h.companies.GetByAccount(c.Request.Context(), claims.AccountID)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.CompanyID = company.ID
	}

	apps, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, apps, pagination)
}

// Decide godoc
// @Summary Review an application
// @Description Move an application through pending -> reviewed -> accepted/rejected
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body models.ApplicationDecisionRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /applications/{id}/decision [patch]
func (h *ApplicationHandler) Decide(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ApplicationDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}

	companyID := ""
	if claims.Role == models.RoleCompany {
		company, err := h.companies.GetByAccount(c.Request.Context(), claims.AccountID)
		if err != nil {
			response.Error(c, err)
			return
		}
		companyID = company.ID
	}

	detail, err := h.service.Decide(c.Request.Context(), c.Param("id"), req, *claims, companyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// ExportCSV godoc
// @Summary Export the company's applications as CSV
// @Tags Applications
// @Produce text/csv
// @Param status query string false "Filter by status"
// @Success 200 {file} binary
// @Router /applications/export [get]
func (h *ApplicationHandler) ExportCSV(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	company, err := h.companies.GetByAccount(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	var status *models.ApplicationStatus
	if raw := c.Query("status"); raw != "" {
		parsed := models.ApplicationStatus(raw)
		status = &parsed
	}

	payload, filename, err := h.service.ExportCompanyCSV(c.Request.Context(), company.ID, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}

// UploadDocument godoc
// @Summary Attach a document to one of the caller's applications
// @Tags Applications
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Application ID"
// @Param document_type formData string true "Document type"
// @Param file formData file true "Document file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /applications/{id}/documents [post]
func (h *ApplicationHandler) UploadDocument(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	student, err := h.students.GetByAccount(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	path, err := h.uploader.saveFormFile(c, "file", "applications/docs")
	if err != nil {
		response.Error(c, err)
		return
	}

	doc, err := h.documents.RegisterStudentDoc(
		c.Request.Context(),
		student.ID,
		c.Param("id"),
		c.PostForm("document_type"),
		c.PostForm("file_name"),
		path,
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, doc)
}

// ListDocuments godoc
// @Summary List the caller's application documents
// @Tags Applications
// @Produce json
// @Param applicationId query string false "Scope to one application"
// @Success 200 {object} response.Envelope
// @Router /applications/documents [get]
func (h *ApplicationHandler) ListDocuments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	student, err := h.students.GetByAccount(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	docs, err := h.documents.ListStudentDocs(c.Request.Context(), student.ID, c.Query("applicationId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, docs, nil)
}

func (h *ApplicationHandler) callerProfileID(c *gin.Context, claims *models.JWTClaims) (string, error) {
	switch claims.Role {
	case models.RoleStudent:
		student, err := h.students.GetByAccount(c.Request.Context(), claims.AccountID)
		if err != nil {
			return "", err
		}
		return student.ID, nil
	case models.RoleCompany:
		company, err := h.companies.GetByAccount(c.Request.Context(), claims.AccountID)
		if err != nil {
			return "", err
		}
		return company.ID, nil
	}
	return "", nil
}
