package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playerfinder/playerfinder/internal/users"
)

// UserHandler manages user account endpoints.
type UserHandler struct {
	users *users.Service
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(svc *users.Service) *UserHandler {
	return &UserHandler{users: svc}
}

// createUserRequest defines the request body for registration.
type createUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=4"`
	Avatar   string `json:"avatar" binding:"omitempty,url"`
}

// updateUserRequest defines the request body for profile updates.
type updateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=4"`
	Avatar   string `json:"avatar" binding:"omitempty,url"`
}

// Create registers a new user.
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if !bindJSON(c, &body) {
		return
	}
	user, errRegister := h.users.Register(c.Request.Context(), users.RegisterInput{
		Email:    body.Email,
		Username: body.Username,
		Password: body.Password,
		Avatar:   body.Avatar,
	})
	if errRegister != nil {
		RenderError(c, errRegister)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": presentUser(user)})
}

// Update changes the authenticated user's profile.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}
	var body updateUserRequest
	if !bindJSON(c, &body) {
		return
	}
	user, errUpdate := h.users.Update(c.Request.Context(), currentUserID(c), id, users.UpdateInput{
		Email:    body.Email,
		Password: body.Password,
		Avatar:   body.Avatar,
	})
	if errUpdate != nil {
		RenderError(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": presentUser(user)})
}
