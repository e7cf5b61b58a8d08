package handlers

import (
	"net/http"
	"strings"

	"github.com/consultdesk/consultdesk/internal/apperr"
	"github.com/consultdesk/consultdesk/internal/auth"
	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/consultdesk/consultdesk/internal/utils"
	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
		Title:    u.Title,
	}
}

func (h *Handler) Login(ctx *gin.Context) {
	var body LoginRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err, "login")
		return
	}

	user, err := h.store.UserByUsername(ctx.Request.Context(), strings.TrimSpace(body.Username))

	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
			return
		}
		respondError(ctx, err, "Failed to log in")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, body.Password) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Username)

	if err != nil {
		respondError(ctx, err, "Failed to log in")
		return
	}

	log.Infof("User %s logged in", user.Username)
	ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: newUserResponse(user)})
}

func (h *Handler) Me(ctx *gin.Context) {
	current, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	user, err := h.store.UserByID(ctx.Request.Context(), current.ID)

	if err != nil {
		respondError(ctx, err, "Failed to load user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}
