package controller

import (
	"strconv"

	"hospital_training_portal/internal/service"
	"hospital_training_portal/internal/upstream"
	"hospital_training_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	Admin *service.AdminService
}

func NewAdminController(admin *service.AdminService) *AdminController {
	return &AdminController{Admin: admin}
}

func (c *AdminController) ListUsers(ctx *gin.Context) {
	users, err := c.Admin.ListUsers(ctx.Request.Context())
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, users)
}

func (c *AdminController) GetUser(ctx *gin.Context) {
	user, err := c.Admin.GetUser(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

func (c *AdminController) CreateUser(ctx *gin.Context) {
	var payload upstream.CreateUserPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.Admin.CreateUser(ctx.Request.Context(), payload)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, user)
}

func (c *AdminController) UpdateUser(ctx *gin.Context) {
	var payload upstream.UpdateUserPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.Admin.UpdateUser(ctx.Request.Context(), ctx.Param("id"), payload)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

func (c *AdminController) DeleteUser(ctx *gin.Context) {
	if err := c.Admin.DeleteUser(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

func (c *AdminController) ListAreas(ctx *gin.Context) {
	areas, err := c.Admin.ListAreas(ctx.Request.Context())
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, areas)
}

func (c *AdminController) ListRoles(ctx *gin.Context) {
	roles, err := c.Admin.ListRoles(ctx.Request.Context())
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, roles)
}

// trainingUploadFromForm lifts the multipart form into the upstream
// upload shape. Files are streamed, not buffered into the handler.
func trainingUploadFromForm(ctx *gin.Context) (upstream.TrainingUpload, error) {
	var upload upstream.TrainingUpload

	if v, ok := ctx.GetPostForm("title"); ok {
		upload.Title = &v
	}
	if v, ok := ctx.GetPostForm("description"); ok {
		upload.Description = &v
	}
	if v, ok := ctx.GetPostForm("duration_minutes"); ok {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return upload, util.NewValidationError("duration_minutes", "must be a positive number")
		}
		upload.DurationMinutes = &minutes
	}

	for _, field := range []string{"video", "image"} {
		header, err := ctx.FormFile(field)
		if err != nil {
			continue
		}
		f, err := header.Open()
		if err != nil {
			return upload, err
		}
		media := &upstream.MediaFile{FieldName: field, FileName: header.Filename, Reader: f}
		if field == "video" {
			upload.Video = media
		} else {
			upload.Image = media
		}
	}
	return upload, nil
}

func (c *AdminController) CreateTraining(ctx *gin.Context) {
	upload, err := trainingUploadFromForm(ctx)
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	training, err := c.Admin.CreateTraining(ctx.Request.Context(), upload)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, training)
}

func (c *AdminController) UpdateTraining(ctx *gin.Context) {
	upload, err := trainingUploadFromForm(ctx)
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	training, err := c.Admin.UpdateTraining(ctx.Request.Context(), ctx.Param("id"), upload)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, training)
}

func (c *AdminController) DeleteTraining(ctx *gin.Context) {
	if err := c.Admin.DeleteTraining(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

func (c *AdminController) ListAssignments(ctx *gin.Context) {
	if areaID := ctx.Query("area_id"); areaID != "" {
		assignments, err := c.Admin.AssignmentsByArea(ctx.Request.Context(), areaID)
		if err != nil {
			util.FromError(ctx, err)
			return
		}
		util.Success(ctx, assignments)
		return
	}

	assignments, err := c.Admin.ListAssignments(ctx.Request.Context())
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, assignments)
}

type AssignRequest struct {
	TrainingID string `json:"training_id" binding:"required"`
	AreaID     string `json:"id_area" binding:"required"`
}

func (c *AdminController) AssignTraining(ctx *gin.Context) {
	var req AssignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assignment, err := c.Admin.AssignTraining(ctx.Request.Context(), req.TrainingID, req.AreaID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, assignment)
}

func (c *AdminController) QuestionTypes(ctx *gin.Context) {
	types, err := c.Admin.QuestionTypes(ctx.Request.Context())
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, types)
}

type BuildQuestionnaireRequest struct {
	TrainingID string                  `json:"training_id" binding:"required"`
	Questions  []service.QuestionDraft `json:"questions" binding:"required"`
}

// BuildQuestionnaire runs the builder wizard server-side: questionnaire,
// then questions, then options. On a mid-sequence upstream failure the
// partial build is returned along with the error message so nothing
// already created is hidden from the admin.
func (c *AdminController) BuildQuestionnaire(ctx *gin.Context) {
	var req BuildQuestionnaireRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	built, err := c.Admin.BuildQuestionnaire(ctx.Request.Context(), req.TrainingID, req.Questions)
	if err != nil {
		if built != nil {
			util.Error(ctx, 502, "questionnaire partially created: "+err.Error())
			return
		}
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, built)
}
