package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/projectmanager/internal/server/models"
	"github.com/dmitrijs2005/projectmanager/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (s *Server) createProject(c *gin.Context) {
	var req projectCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	project, err := s.svc.Projects.CreateProject(c.Request.Context(), principal(c), req.Name, req.Description)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProject(project))
}

func (s *Server) listProjects(c *gin.Context) {
	var q projectListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.badRequest(c, err)
		return
	}

	filter := models.ProjectFilter{Name: q.Name, Description: q.Description, MemberID: q.UserID, Page: q.page()}
	list, err := s.svc.Projects.ListProjects(c.Request.Context(), principal(c), filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(list, filter.Page, toProject))
}

func (s *Server) getProject(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	project, err := s.svc.Projects.GetProject(c.Request.Context(), principal(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProject(project))
}

func (s *Server) updateProject(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req projectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	upd := services.ProjectUpdate{Name: req.Name, Description: req.Description}
	project, err := s.svc.Projects.UpdateProject(c.Request.Context(), principal(c), id, upd)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProject(project))
}

func (s *Server) deleteProject(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	if err := s.svc.Projects.DeleteProject(c.Request.Context(), principal(c), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) addProjectMember(c *gin.Context) {
	s.changeMembership(c, s.svc.Projects.AddMember)
}

func (s *Server) removeProjectMember(c *gin.Context) {
	s.changeMembership(c, s.svc.Projects.RemoveMember)
}

type membershipFunc func(ctx context.Context, p models.Principal, projectID, userID string) (*models.Project, error)

func (s *Server) changeMembership(c *gin.Context, change membershipFunc) {
	projectID, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := s.pathID(c, "userId")
	if !ok {
		return
	}

	project, err := change(c.Request.Context(), principal(c), projectID, userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProject(project))
}
