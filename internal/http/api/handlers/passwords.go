package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playerfinder/playerfinder/internal/passwords"
)

// PasswordHandler manages the forgot/reset password flow.
type PasswordHandler struct {
	passwords *passwords.Service
}

// NewPasswordHandler constructs a PasswordHandler.
func NewPasswordHandler(svc *passwords.Service) *PasswordHandler {
	return &PasswordHandler{passwords: svc}
}

type forgotPasswordRequest struct {
	Email            string `json:"email" binding:"required,email"`
	ResetPasswordURL string `json:"resetPasswordUrl" binding:"required,url"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=4"`
}

// Forgot issues a reset token and emails it.
func (h *PasswordHandler) Forgot(c *gin.Context) {
	var body forgotPasswordRequest
	if !bindJSON(c, &body) {
		return
	}
	if errForgot := h.passwords.Forgot(c.Request.Context(), body.Email, body.ResetPasswordURL); errForgot != nil {
		RenderError(c, errForgot)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reset sets a new password from a reset token.
func (h *PasswordHandler) Reset(c *gin.Context) {
	var body resetPasswordRequest
	if !bindJSON(c, &body) {
		return
	}
	if errReset := h.passwords.Reset(c.Request.Context(), body.Token, body.Password); errReset != nil {
		RenderError(c, errReset)
		return
	}
	c.Status(http.StatusNoContent)
}
