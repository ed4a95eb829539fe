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

// CompanyHandler wires HTTP endpoints to the company and document services.
type CompanyHandler struct {
	service   *service.CompanyService
	documents *service.DocumentService
	uploader  *Uploader
}

// NewCompanyHandler creates a new handler.
func NewCompanyHandler(svc *service.CompanyService, documents *service.DocumentService, uploader *Uploader) *CompanyHandler {
	return &CompanyHandler{service: svc, documents: documents, uploader: uploader}
}

// Me godoc
// @Summary Get own company profile
// @Tags Companies
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /companies/me [get]
func (h *CompanyHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	company, err := h.service.GetByAccount(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, company, nil)
}

// Get godoc
// @Summary Get a company profile
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /companies/{id} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	detail, err := h.service.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// Update godoc
// @Summary Update a company profile
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID"
// @Param payload body models.CompanyUpdateRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /companies/{id} [put]
func (h *CompanyHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CompanyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	company, err := h.service.Update(c.Request.Context(), c.Param("id"), req, *claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, company, nil)
}

// List godoc
// @Summary List company profiles
// @Tags Companies
// @Produce json
// @Param industry query string false "Filter by industry"
// @Param search query string false "Search name or email"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	filter := models.CompanyFilter{
		Search:    c.Query("search"),
		Industry:  c.Query("industry"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	companies, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, companies, pagination)
}

// UploadLogo godoc
// @Summary Upload own company logo
// @Tags Companies
// @Accept multipart/form-data
// @Produce json
// @Param logo formData file true "Logo image"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /companies/me/logo [post]
func (h *CompanyHandler) UploadLogo(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	path, err := h.uploader.saveFormFile(c, "logo", "companies/logos")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.UpdateLogo(c.Request.Context(), claims.AccountID, path); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"path": path}, nil)
}

// UploadDocument godoc
// @Summary Upload a company verification document
// @Tags Companies
// @Accept multipart/form-data
// @Produce json
// @Param document_type formData string true "Document type"
// @Param file formData file true "Document file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /companies/me/documents [post]
func (h *CompanyHandler) UploadDocument(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	company, err := h.service.GetByAccount(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	path, err := h.uploader.saveFormFile(c, "file", "companies/docs")
	if err != nil {
		response.Error(c, err)
		return
	}

	doc, err := h.documents.RegisterCompanyDoc(c.Request.Context(), company.ID, c.PostForm("document_type"), path)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, doc)
}

// ListDocuments godoc
// @Summary List own verification documents
// @Tags Companies
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /companies/me/documents [get]
func (h *CompanyHandler) ListDocuments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	company, err := h.service.GetByAccount(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	docs, err := h.documents.ListCompanyDocs(c.Request.Context(), company.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, docs, nil)
}

// VerifyDocument godoc
// @Summary Verify or reject a company document
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body models.CompanyDocVerdictRequest true "Verdict payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/company/{id}/verify [patch]
func (h *CompanyHandler) VerifyDocument(c *gin.Context) {
	var req models.CompanyDocVerdictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid verdict payload"))
		return
	}

	doc, err := h.documents.VerifyCompanyDoc(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, doc, nil)
}
