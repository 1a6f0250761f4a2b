package handler

import (
	"errors"
	"net/http"
	"strconv"

	"star_studio/internal/logging"
	"star_studio/internal/middleware"
	"star_studio/internal/model"
	"star_studio/internal/service"

	"github.com/gin-gonic/gin"
)

const passwordUpdatedMsg = "Password updated successfully"

// AccountHandler handles account requests
type AccountHandler struct {
	service service.AccountService
	logger  logging.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(s service.AccountService, logger logging.Logger) *AccountHandler {
	return &AccountHandler{service: s, logger: logger}
}

func (h *AccountHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		PhoneNumber:     req.PhoneNumber,
	})
	if err != nil {
		h.writeError(c, err, http.StatusUnauthorized, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, model.RegisterResponse{
		User:  model.NewUserResponse(user),
		Token: token.Key,
	})
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err, http.StatusUnauthorized, "Failed to login")
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{
		UserID:      user.ID,
		Name:        user.Username,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Token:       token.Key,
	})
}

func (h *AccountHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.writeError(c, err, http.StatusUnauthorized, "Failed to retrieve users")
		return
	}

	resp := make([]model.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, model.NewUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AccountHandler) ChangePassword(c *gin.Context) {
	userID, err := middleware.AuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// A wrong old password is a form error here, the caller is already authenticated.
	if _, err := h.service.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		h.writeError(c, err, http.StatusBadRequest, "Failed to change password")
		return
	}

	c.JSON(http.StatusOK, model.ChangePasswordResponse{
		StatusCode: http.StatusOK,
		Message:    passwordUpdatedMsg,
	})
}

func (h *AccountHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), id); err != nil {
		h.writeError(c, err, http.StatusUnauthorized, "Failed to delete user")
		return
	}
	c.Status(http.StatusNoContent)
}

// writeError maps service errors to 4xx responses. Anything unrecognised is
// logged and reported as a 500 with fallback as the message.
func (h *AccountHandler) writeError(c *gin.Context, err error, credentialsStatus int, fallback string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUniqueness):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		status = credentialsStatus
	case errors.Is(err, service.ErrUserNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		h.logger.Error(c.Request.Context(), fallback, "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": fallback})
		return
	}

	var fe *service.FieldError
	if errors.As(err, &fe) {
		c.JSON(status, gin.H{"error": fe.Message, "field": fe.Field})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// RegisterAccountRoutes registers the account routes. protected guards
// every route that needs a token.
func (h *AccountHandler) RegisterAccountRoutes(rg gin.IRouter, protected gin.HandlerFunc) {
	rg.POST("/register/", h.Register)
	rg.POST("/login/", h.Login)

	authGroup := rg.Group("", protected)
	{
		authGroup.GET("/users/list/", h.ListUsers)
		authGroup.PUT("/change-password/", h.ChangePassword)
		authGroup.PATCH("/change-password/", h.ChangePassword)
		authGroup.DELETE("/delete-user/:id/", h.DeleteUser)
	}
}
