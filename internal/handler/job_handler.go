package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/attachlink/placement-api/internal/models"
	"github.com/attachlink/placement-api/internal/service"
	appErrors "github.com/attachlink/placement-api/pkg/errors"
	"github.com/attachlink/placement-api/pkg/response"
)

// JobHandler wires HTTP endpoints to the job service.
type JobHandler struct {
	service   *service.JobService
	companies *service.CompanyService
}

// NewJobHandler creates a new handler.
func NewJobHandler(svc *service.JobService, companies *service.CompanyService) *JobHandler {
	return &JobHandler{service: svc, companies: companies}
}

// Create godoc
// @Summary Create a job posting
// @Tags Jobs
// @Accept json
// @Produce json
// @Param payload body models.JobCreateRequest true "Job payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /jobs [post]
func (h *JobHandler) Create(c *gin.Context) {
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

	var req models.JobCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid job payload"))
		return
	}

	job, err := h.service.Create(c.Request.Context(), company.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, job)
}

// Get godoc
// @Summary Get a job posting
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// Update godoc
// @Summary Update a job posting
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param payload body models.JobUpdateRequest true "Job payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /jobs/{id} [put]
func (h *JobHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.JobUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid job payload"))
		return
	}

	companyID, isAdmin, err := h.callerCompany(c, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	job, err := h.service.Update(c.Request.Context(), c.Param("id"), req, companyID, isAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, job, nil)
}

// Close godoc
// @Summary Close a job posting
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /jobs/{id}/close [patch]
func (h *JobHandler) Close(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	companyID, isAdmin, err := h.callerCompany(c, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Close(c.Request.Context(), c.Param("id"), companyID, isAdmin); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Delete godoc
// @Summary Delete a job posting
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /jobs/{id} [delete]
func (h *JobHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	companyID, isAdmin, err := h.callerCompany(c, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), companyID, isAdmin); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// List godoc
// @Summary List job postings
// @Description Companies see their own postings; admins see all
// @Tags Jobs
// @Produce json
// @Param status query string false "Filter by status"
// @Param major query string false "Filter by major"
// @Param search query string false "Search title or description"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.JobFilter{
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.JobStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("major"); raw != "" {
		major := models.Major(raw)
		filter.Major = &major
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	if claims.Role == models.RoleCompany {
		company, err := h.companies.GetByAccount(c.Request.Context(), claims.AccountID)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.CompanyID = company.ID
	}

	jobs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, jobs, pagination)
}

// Board godoc
// @Summary List the student job board
// @Description Open postings for the student's major with an unexpired deadline, excluding already-applied jobs
// @Tags Jobs
// @Produce json
// @Param search query string false "Free-text search"
// @Success 200 {object} response.Envelope
// @Router /jobs/board [get]
func (h *JobHandler) Board(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	jobs, err := h.service.Board(c.Request.Context(), claims.AccountID, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, jobs, nil)
}

func (h *JobHandler) callerCompany(c *gin.Context, claims *models.JWTClaims) (string, bool, error) {
	if claims.Role == models.RoleAdmin {
		return "", true, nil
	}
	company, err := h.companies.GetByAccount(c.Request.Context(), claims.AccountID)
	if err != nil {
		return "", false, err
	}
	return company.ID, false, nil
}
