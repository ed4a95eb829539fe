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

// EngagementHandler wires HTTP endpoints to the engagement service.
type EngagementHandler struct {
	service   *service.EngagementService
	students  *service.StudentService
	companies *service.CompanyService
	uploader  *Uploader
}

// NewEngagementHandler creates a new handler.
func NewEngagementHandler(
	svc *service.EngagementService,
	students *service.StudentService,
	companies *service.CompanyService,
	uploader *Uploader,
) *EngagementHandler {
	return &EngagementHandler{service: svc, students: students, companies: companies, uploader: uploader}
}

// CreateProject godoc
// @Summary Open a project on an accepted application
// @Description An application carries at most one project
// @Tags Engagement
// @Accept json
// @Produce json
// @Param payload body models.ProjectCreateRequest true "Project payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /projects [post]
func (h *EngagementHandler) CreateProject(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ProjectCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid project payload"))
		return
	}

	company, err := h.companies.GetByAccount(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	project, err := h.service.CreateProject(c.Request.Context(), company.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, project)
}

// GetProject godoc
// @Summary Get a project
// @Tags Engagement
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /projects/{id} [get]
func (h *EngagementHandler) GetProject(c *gin.Context) {
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

	detail, err := h.service.GetProject(c.Request.Context(), c.Param("id"), *claims, profileID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// ListProjects godoc
// @Summary List the caller's projects
// @Description Companies see projects on their jobs; students see projects they are placed on
// @Tags Engagement
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /projects [get]
func (h *EngagementHandler) ListProjects(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	switch claims.Role {
	case models.RoleStudent:
		projects, err := h.service.ListStudentProjects(c.Request.Context(), claims.AccountID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, projects, nil)
	case models.RoleCompany:
		company, err := h.companies.GetByAccount(c.Request.Context(), claims.AccountID)
		if err != nil {
			response.Error(c, err)
			return
		}
		projects, err := h.service.ListCompanyProjects(c.Request.Context(), company.ID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, projects, nil)
	default:
		response.Error(c, appErrors.ErrForbidden)
	}
}

// CreateTask godoc
// @Summary Add a task to a project
// @Tags Engagement
// @Accept json
// @Produce json
// @Param payload body models.TaskCreateRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /tasks [post]
func (h *EngagementHandler) CreateTask(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid task payload"))
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

	task, err := h.service.CreateTask(c.Request.Context(), *claims, companyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, task)
}

// ListProjectTasks godoc
// @Summary List a project's tasks with their latest submissions
// @Tags Engagement
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /projects/{id}/tasks [get]
func (h *EngagementHandler) ListProjectTasks(c *gin.Context) {
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

	tasks, err := h.service.ListProjectTasks(c.Request.Context(), c.Param("id"), *claims, profileID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, tasks, nil)
}

// SubmitTaskUpdate godoc
// @Summary Submit progress on an assigned task
// @Description Resubmitting replaces the previous submission and returns it for re-review
// @Tags Engagement
// @Accept multipart/form-data
// @Produce json
// @Param task_id formData string true "Task ID"
// @Param progress_percent formData int true "Progress percentage"
// @Param comments formData string false "Comments"
// @Param description formData string false "Work description"
// @Param proof formData file false "Proof of work"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /task-updates [post]
func (h *EngagementHandler) SubmitTaskUpdate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	progress, err := strconv.Atoi(c.DefaultPostForm("progress_percent", "0"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid progress value"))
		return
	}
	req := models.TaskUpdateSubmitRequest{
		TaskID:          c.PostForm("task_id"),
		ProgressPercent: progress,
		Comments:        c.PostForm("comments"),
		Description:     c.PostForm("description"),
	}

	var proofPath *string
	if path, err := h.uploader.saveOptionalFormFile(c, "proof", "tasks/proofs"); err != nil {
		response.Error(c, err)
		return
	} else if path != "" {
		proofPath = &path
	}

	update, err := h.service.SubmitTaskUpdate(c.Request.Context(), claims.AccountID, req, proofPath)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, update, nil)
}

// ReviewTaskUpdate godoc
// @Summary Approve or reject a task submission
// @Tags Engagement
// @Accept json
// @Produce json
// @Param id path string true "Task update ID"
// @Param payload body models.TaskUpdateReviewRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /task-updates/{id}/review [patch]
func (h *EngagementHandler) ReviewTaskUpdate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.TaskUpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
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

	detail, err := h.service.ReviewTaskUpdate(c.Request.Context(), c.Param("id"), req, *claims, companyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// ListSubmittedUpdates godoc
// @Summary List submissions awaiting the company's review
// @Tags Engagement
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /task-updates/submitted [get]
func (h *EngagementHandler) ListSubmittedUpdates(c *gin.Context) {
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

	updates, err := h.service.ListSubmittedUpdates(c.Request.Context(), company.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, updates, nil)
}

func (h *EngagementHandler) callerProfileID(c *gin.Context, claims *models.JWTClaims) (string, error) {
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
