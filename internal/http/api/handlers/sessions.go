package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playerfinder/playerfinder/internal/sessions"
)

// SessionHandler manages login and logout.
type SessionHandler struct {
	sessions *sessions.Service
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(svc *sessions.Service) *SessionHandler {
	return &SessionHandler{sessions: svc}
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Create logs a user in and returns a bearer token.
func (h *SessionHandler) Create(c *gin.Context) {
	var body loginRequest
	if !bindJSON(c, &body) {
		return
	}
	session, errLogin := h.sessions.Login(c.Request.Context(), body.Email, body.Password)
	if errLogin != nil {
		RenderError(c, errLogin)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user": presentUser(session.User),
		"token": gin.H{
			"type":      sessions.TokenType,
			"token":     session.Token.Token,
			"expiresAt": session.Token.ExpiresAt,
		},
	})
}

// Delete revokes the token used for the request.
func (h *SessionHandler) Delete(c *gin.Context) {
	if errLogout := h.sessions.Logout(c.Request.Context(), currentTokenID(c)); errLogout != nil {
		RenderError(c, errLogout)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
