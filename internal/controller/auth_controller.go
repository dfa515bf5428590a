package controller

import (
	"hospital_training_portal/internal/service"
	"hospital_training_portal/internal/session"
	"hospital_training_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Sessions *session.Manager
	Quizzes  *service.QuizService
}

func NewAuthController(sessions *session.Manager, quizzes *service.QuizService) *AuthController {
	return &AuthController{Sessions: sessions, Quizzes: quizzes}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates against the upstream and answers with the user
// and the role-based home path the UI should redirect to.
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.Sessions.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"user":     user,
		"redirect": user.HomePath(),
	})
}

// Logout always succeeds from the caller's point of view; the session is
// gone locally no matter what the upstream said.
func (c *AuthController) Logout(ctx *gin.Context) {
	c.Quizzes.DiscardAttempts()
	c.Sessions.Logout(ctx.Request.Context())
	util.Success(ctx, gin.H{"redirect": "/login"})
}

// Session reconciles the cached session with the upstream and reports
// the resulting state, so the UI knows whether to show the app or the
// login screen.
func (c *AuthController) Session(ctx *gin.Context) {
	state := c.Sessions.CheckAuth(ctx.Request.Context())
	if state != session.StateAuthenticated {
		util.Success(ctx, gin.H{"state": state})
		return
	}

	user, err := c.Sessions.CurrentUser()
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"state":    state,
		"user":     user,
		"redirect": user.HomePath(),
	})
}

// Refresh forces a token renewal, mostly for diagnostics; the background
// refresher handles the normal case.
func (c *AuthController) Refresh(ctx *gin.Context) {
	if !c.Sessions.Refresh(ctx.Request.Context()) {
		util.Unauthorized(ctx)
		return
	}
	util.Success(ctx, gin.H{"refreshed": true})
}
