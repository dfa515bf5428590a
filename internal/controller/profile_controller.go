package controller

import (
	"hospital_training_portal/internal/service"
	"hospital_training_portal/internal/session"
	"hospital_training_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	Sessions *session.Manager
	Profile  *service.ProfileService
}

func NewProfileController(sessions *session.Manager, profile *service.ProfileService) *ProfileController {
	return &ProfileController{Sessions: sessions, Profile: profile}
}

func (c *ProfileController) Get(ctx *gin.Context) {
	user, err := c.Sessions.CurrentUser()
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (c *ProfileController) Update(ctx *gin.Context) {
	user, err := c.Sessions.CurrentUser()
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	var req UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	updated, err := c.Profile.UpdateProfile(ctx.Request.Context(), user.ID, req.FirstName, req.LastName)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, updated)
}

type ChangePasswordRequest struct {
	LastPassword string `json:"last_password" binding:"required"`
	NewPassword  string `json:"new_password" binding:"required"`
}

func (c *ProfileController) ChangePassword(ctx *gin.Context) {
	user, err := c.Sessions.CurrentUser()
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	var req ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Profile.ChangePassword(ctx.Request.Context(), user.ID, req.LastPassword, req.NewPassword); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"changed": true})
}
