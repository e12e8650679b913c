package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playerfinder/playerfinder/internal/models"
	"github.com/samber/lo"
)

func presentUser(user *models.User) gin.H {
	if user == nil {
		return nil
	}
	var avatar any
	if user.Avatar != "" {
		avatar = user.Avatar
	}
	return gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"username":  user.Username,
		"avatar":    avatar,
		"createdAt": user.CreatedAt,
		"updatedAt": user.UpdatedAt,
	}
}

func presentGroup(group *models.Group) gin.H {
	if group == nil {
		return nil
	}
	body := gin.H{
		"id":          group.ID,
		"name":        group.Name,
		"description": group.Description,
		"schedule":    group.Schedule,
		"location":    group.Location,
		"chronic":     group.Chronic,
		"master":      group.Master,
		"createdAt":   group.CreatedAt,
		"updatedAt":   group.UpdatedAt,
		"players": lo.Map(group.Players, func(player models.User, _ int) gin.H {
			return presentUser(&player)
		}),
	}
	if group.MasterUser != nil {
		body["masterUser"] = presentUser(group.MasterUser)
	}
	return body
}

func presentGroups(groups []models.Group) []gin.H {
	return lo.Map(groups, func(group models.Group, _ int) gin.H {
		return presentGroup(&group)
	})
}

func presentGroupRequest(request *models.GroupRequest) gin.H {
	if request == nil {
		return nil
	}
	body := gin.H{
		"id":        request.ID,
		"groupId":   request.GroupID,
		"userId":    request.UserID,
		"status":    request.Status,
		"createdAt": request.CreatedAt,
		"updatedAt": request.UpdatedAt,
	}
	if request.Group != nil {
		body["group"] = presentGroup(request.Group)
	}
	if request.User != nil {
		body["user"] = presentUser(request.User)
	}
	return body
}

func presentGroupRequests(requests []models.GroupRequest) []gin.H {
	return lo.Map(requests, func(request models.GroupRequest, _ int) gin.H {
		return presentGroupRequest(&request)
	})
}
