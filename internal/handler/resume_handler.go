package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attachlink/placement-api/internal/models"
	"github.com/attachlink/placement-api/internal/service"
	appErrors "github.com/attachlink/placement-api/pkg/errors"
	"github.com/attachlink/placement-api/pkg/response"
)

// ResumeHandler wires HTTP endpoints to the resume service.
type ResumeHandler struct {
	service *service.ResumeService
}

// NewResumeHandler creates a new handler.
func NewResumeHandler(svc *service.ResumeService) *ResumeHandler {
	return &ResumeHandler{service: svc}
}

// GetMine godoc
// @Summary Get own resume
// @Tags Resumes
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /resumes/me [get]
func (h *ResumeHandler) GetMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	resume, complete, err := h.service.GetMine(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, resume, nil, map[string]interface{}{"complete": complete})
}

// Upsert godoc
// @Summary Create or replace own resume
// @Description Partial saves are allowed; completeness is enforced at apply time
// @Tags Resumes
// @Accept json
// @Produce json
// @Param payload body models.ResumeUpsertRequest true "Resume payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /resumes/me [put]
func (h *ResumeHandler) Upsert(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ResumeUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resume payload"))
		return
	}

	resume, err := h.service.Upsert(c.Request.Context(), claims.AccountID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, resume, nil, map[string]interface{}{"complete": resume.IsComplete()})
}

// ExportPDF godoc
// @Summary Download a resume as PDF
// @Tags Resumes
// @Produce application/pdf
// @Param studentId path string true "Student ID"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /resumes/{studentId}/pdf [get]
func (h *ResumeHandler) ExportPDF(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	payload, filename, err := h.service.ExportPDF(c.Request.Context(), c.Param("studentId"), *claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}
