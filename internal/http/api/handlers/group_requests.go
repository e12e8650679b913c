package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playerfinder/playerfinder/internal/groups"
)

// GroupRequestHandler manages join requests.
type GroupRequestHandler struct {
	groups *groups.Service
}

// NewGroupRequestHandler constructs a GroupRequestHandler.
func NewGroupRequestHandler(svc *groups.Service) *GroupRequestHandler {
	return &GroupRequestHandler{groups: svc}
}

// Create asks to join a group as the caller.
func (h *GroupRequestHandler) Create(c *gin.Context) {
	groupID, ok := parseID(c, "id", "group")
	if !ok {
		return
	}
	request, errCreate := h.groups.CreateRequest(c.Request.Context(), groupID, currentUserID(c))
	if errCreate != nil {
		RenderError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"groupRequest": presentGroupRequest(request)})
}

// List returns pending requests for groups mastered by ?master=ID.
func (h *GroupRequestHandler) List(c *gin.Context) {
	requests, errList := h.groups.ListPendingRequests(c.Request.Context(), c.Query("master"))
	if errList != nil {
		RenderError(c, errList)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groupRequests": presentGroupRequests(requests)})
}

// Accept approves a pending request and seats the requester.
func (h *GroupRequestHandler) Accept(c *gin.Context) {
	groupID, ok := parseID(c, "id", "group")
	if !ok {
		return
	}
	requestID, ok := parseID(c, "requestId", "group request")
	if !ok {
		return
	}
	request, errAccept := h.groups.AcceptRequest(c.Request.Context(), currentUserID(c), groupID, requestID)
	if errAccept != nil {
		RenderError(c, errAccept)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groupRequest": presentGroupRequest(request)})
}

// Reject deletes a pending request.
func (h *GroupRequestHandler) Reject(c *gin.Context) {
	groupID, ok := parseID(c, "id", "group")
	if !ok {
		return
	}
	requestID, ok := parseID(c, "requestId", "group request")
	if !ok {
		return
	}
	if errReject := h.groups.RejectRequest(c.Request.Context(), currentUserID(c), groupID, requestID); errReject != nil {
		RenderError(c, errReject)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "group request rejected"})
}
