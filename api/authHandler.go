package api

import (
	"context"
	"net/http"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/config"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/utils"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string             `json:"token"`
	User  models.UserProfile `json:"user"`
}

// Login exchanges credentials for a JWT carrying the user's role and segment
// scope.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	var user models.UserProfile
	err := h.Workflow.Store.WithRetry(c.Request.Context(), "Login", func(ctx context.Context) error {
		return h.Workflow.Store.DB().WithContext(ctx).
			Where("email = ? AND is_active = ?", req.Email, true).
			First(&user).Error
	})
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err := utils.ComparePassword(user.PasswordHash, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	var scope []string
	if user.Role == models.UserRoleStoreStaff && user.SegmentId != nil {
		scope = []string{*user.SegmentId}
	}
	token, err := utils.JwtGenerate(user.ID, user.DisplayName, string(user.Role), scope)
	if err != nil {
		config.LogError(h.Workflow.Logger, "authHandler.go", "Login", "signing token", user.ID, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{Token: token, User: user})
}
