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

// StudentHandler wires HTTP endpoints to the student service.
type StudentHandler struct {
	service  *service.StudentService
	uploader *Uploader
}

// NewStudentHandler creates a new handler.
func NewStudentHandler(svc *service.StudentService, uploader *Uploader) *StudentHandler {
	return &StudentHandler{service: svc, uploader: uploader}
}

// Me godoc
// @Summary Get own student profile
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/me [get]
func (h *StudentHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	student, err := h.service.GetByAccount(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, student, nil)
}

// Get godoc
// @Summary Get a student profile
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.service.GetDetail(c.Request.Context(), c.Param("id"), *claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// Update godoc
// @Summary Update a student profile
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.StudentUpdateRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.StudentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	student, err := h.service.Update(c.Request.Context(), c.Param("id"), req, *claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, student, nil)
}

// SetAccepted godoc
// @Summary Set the acceptance flag on a student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body map[string]bool true "Accepted flag"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/accept [patch]
func (h *StudentHandler) SetAccepted(c *gin.Context) {
	var payload struct {
		Accepted bool `json:"accepted"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	student, err := h.service.SetAccepted(c.Request.Context(), c.Param("id"), payload.Accepted)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, student, nil)
}

// List godoc
// @Summary List student profiles
// @Tags Students
// @Produce json
// @Param major query string false "Filter by major"
// @Param accepted query bool false "Filter by acceptance flag"
// @Param search query string false "Search name or email"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	if raw := c.Query("major"); raw != "" {
		major := models.Major(raw)
		filter.Major = &major
	}
	if raw := c.Query("accepted"); raw != "" {
		if accepted, err := strconv.ParseBool(raw); err == nil {
			filter.Accepted = &accepted
		}
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	students, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, students, pagination)
}

// UploadProfilePicture godoc
// @Summary Upload own profile picture
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param picture formData file true "Profile picture"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/me/picture [post]
func (h *StudentHandler) UploadProfilePicture(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	path, err := h.uploader.saveFormFile(c, "picture", "students/pictures")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.UpdateProfilePicture(c.Request.Context(), claims.AccountID, path); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"path": path}, nil)
}

// UploadIDImages godoc
// @Summary Upload own identity documents
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param student_id formData file false "Student ID image"
// @Param national_id formData file false "National ID image"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/me/id-images [post]
func (h *StudentHandler) UploadIDImages(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var studentIDPath, nationalIDPath *string
	if path, err := h.uploader.saveOptionalFormFile(c, "student_id", "students/ids"); err != nil {
		response.Error(c, err)
		return
	} else if path != "" {
		studentIDPath = &path
	}
	if path, err := h.uploader.saveOptionalFormFile(c, "national_id", "students/ids"); err != nil {
		response.Error(c, err)
		return
	} else if path != "" {
		nationalIDPath = &path
	}

	if err := h.service.UpdateIDImages(c.Request.Context(), claims.AccountID, studentIDPath, nationalIDPath); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"student_id_path": studentIDPath, "national_id_path": nationalIDPath}, nil)
}
