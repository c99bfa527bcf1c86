package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/projectmanager/internal/server/models"
	"github.com/dmitrijs2005/projectmanager/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (s *Server) listUsers(c *gin.Context) {
	var q userListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.badRequest(c, err)
		return
	}

	filter := models.UserFilter{
		Name:          q.Name,
		Email:         q.Email,
		Role:          models.Role(q.Role),
		EmailVerified: q.EmailVerified,
		Page:          q.page(),
	}
	list, err := s.svc.Users.ListUsers(c.Request.Context(), principal(c), filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(list, filter.Page, toUser))
}

func (s *Server) getUser(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	user, err := s.svc.Users.GetUser(c.Request.Context(), principal(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUser(user))
}

func (s *Server) updateUser(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req userUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	user, err := s.svc.Users.UpdateUser(c.Request.Context(), principal(c), id, services.UserUpdate{Name: req.Name})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUser(user))
}

func (s *Server) deleteUser(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	if err := s.svc.Users.DeleteUser(c.Request.Context(), principal(c), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}
