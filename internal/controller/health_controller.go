package controller

import (
	"hospital_training_portal/internal/session"
	"hospital_training_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	Sessions *session.Manager
}

func NewHealthController(sessions *session.Manager) *HealthController {
	return &HealthController{Sessions: sessions}
}

func (c *HealthController) Health(ctx *gin.Context) {
	util.Success(ctx, gin.H{
		"status":  "ok",
		"session": c.Sessions.State(),
	})
}
