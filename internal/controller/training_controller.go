package controller

import (
	"hospital_training_portal/internal/service"
	"hospital_training_portal/internal/session"
	"hospital_training_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type TrainingController struct {
	Sessions  *session.Manager
	Trainings *service.TrainingService
}

func NewTrainingController(sessions *session.Manager, trainings *service.TrainingService) *TrainingController {
	return &TrainingController{Sessions: sessions, Trainings: trainings}
}

func (c *TrainingController) List(ctx *gin.Context) {
	trainings, err := c.Trainings.ListTrainings(ctx.Request.Context())
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, trainings)
}

func (c *TrainingController) Get(ctx *gin.Context) {
	training, err := c.Trainings.GetTraining(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, training)
}

// Mine lists the session user's assigned trainings with their progress.
func (c *TrainingController) Mine(ctx *gin.Context) {
	user, err := c.Sessions.CurrentUser()
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	items, err := c.Trainings.UserTrainings(ctx.Request.Context(), user.ID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

// Progress answers the dashboard summary for the session user.
func (c *TrainingController) Progress(ctx *gin.Context) {
	user, err := c.Sessions.CurrentUser()
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	stats, err := c.Trainings.ProgressFor(ctx.Request.Context(), user.ID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
