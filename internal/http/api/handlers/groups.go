package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/playerfinder/playerfinder/internal/apperr"
	"github.com/playerfinder/playerfinder/internal/groups"
)

// GroupHandler manages group endpoints.
type GroupHandler struct {
	groups *groups.Service
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(svc *groups.Service) *GroupHandler {
	return &GroupHandler{groups: svc}
}

// createGroupRequest defines the request body for group creation.
type createGroupRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Schedule    string  `json:"schedule" binding:"required"`
	Location    string  `json:"location" binding:"required"`
	Chronic     string  `json:"chronic" binding:"required"`
	Master      *uint64 `json:"master"`
}

// updateGroupRequest defines the request body for partial group updates.
type updateGroupRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1"`
	Description *string `json:"description" binding:"omitempty,min=1"`
	Schedule    *string `json:"schedule" binding:"omitempty,min=1"`
	Location    *string `json:"location" binding:"omitempty,min=1"`
	Chronic     *string `json:"chronic" binding:"omitempty,min=1"`
}

// Create creates a group owned by the caller.
func (h *GroupHandler) Create(c *gin.Context) {
	var body createGroupRequest
	if !bindJSON(c, &body) {
		return
	}
	group, errCreate := h.groups.Create(c.Request.Context(), currentUserID(c), groups.CreateInput{
		Name:        body.Name,
		Description: body.Description,
		Schedule:    body.Schedule,
		Location:    body.Location,
		Chronic:     body.Chronic,
		Master:      body.Master,
	})
	if errCreate != nil {
		RenderError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"group": presentGroup(group)})
}

// List returns groups, optionally filtered by player and text.
func (h *GroupHandler) List(c *gin.Context) {
	filter := groups.ListFilter{Text: c.Query("text")}
	if rawUser := strings.TrimSpace(c.Query("user")); rawUser != "" {
		userID, errParse := strconv.ParseUint(rawUser, 10, 64)
		if errParse != nil {
			RenderError(c, apperr.Validation([]apperr.FieldError{{
				Field:   "user",
				Rule:    "number",
				Message: "user must be a number",
			}}, "validation failed"))
			return
		}
		filter.UserID = userID
	}

	list, errList := h.groups.List(c.Request.Context(), filter)
	if errList != nil {
		RenderError(c, errList)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": presentGroups(list)})
}

// Get returns one group.
func (h *GroupHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id", "group")
	if !ok {
		return
	}
	group, errGet := h.groups.Get(c.Request.Context(), id)
	if errGet != nil {
		RenderError(c, errGet)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": presentGroup(group)})
}

// Update changes descriptive fields of a group.
func (h *GroupHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "group")
	if !ok {
		return
	}
	var body updateGroupRequest
	if !bindJSON(c, &body) {
		return
	}
	group, errUpdate := h.groups.Update(c.Request.Context(), currentUserID(c), id, groups.UpdateInput{
		Name:        body.Name,
		Description: body.Description,
		Schedule:    body.Schedule,
		Location:    body.Location,
		Chronic:     body.Chronic,
	})
	if errUpdate != nil {
		RenderError(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": presentGroup(group)})
}

// Delete removes a group with its membership and requests.
func (h *GroupHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "group")
	if !ok {
		return
	}
	if errDelete := h.groups.Delete(c.Request.Context(), currentUserID(c), id); errDelete != nil {
		RenderError(c, errDelete)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "group deleted"})
}

// RemovePlayer takes a player out of a group.
func (h *GroupHandler) RemovePlayer(c *gin.Context) {
	groupID, ok := parseID(c, "id", "group")
	if !ok {
		return
	}
	userID, ok := parseID(c, "userId", "user")
	if !ok {
		return
	}
	if errRemove := h.groups.RemovePlayer(c.Request.Context(), currentUserID(c), groupID, userID); errRemove != nil {
		RenderError(c, errRemove)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "player removed"})
}
