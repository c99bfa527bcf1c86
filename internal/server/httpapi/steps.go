package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/projectmanager/internal/server/models"
	"github.com/dmitrijs2005/projectmanager/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (s *Server) createStep(c *gin.Context) {
	projectID, ok := s.pathID(c, "projectId")
	if !ok {
		return
	}
	var req stepCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	step, err := s.svc.Steps.CreateStep(c.Request.Context(), principal(c), projectID, req.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toStep(step))
}

func (s *Server) listSteps(c *gin.Context) {
	projectID, ok := s.pathID(c, "projectId")
	if !ok {
		return
	}
	var q stepListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.badRequest(c, err)
		return
	}

	filter := models.StepFilter{Name: q.Name, Page: q.page()}
	list, err := s.svc.Steps.ListSteps(c.Request.Context(), principal(c), projectID, filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(list, filter.Page, toStep))
}

func (s *Server) getStep(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	step, err := s.svc.Steps.GetStep(c.Request.Context(), principal(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toStep(step))
}

func (s *Server) updateStep(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req stepUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	step, err := s.svc.Steps.UpdateStep(c.Request.Context(), principal(c), id, services.StepUpdate{Name: req.Name})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toStep(step))
}

func (s *Server) deleteStep(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	if err := s.svc.Steps.DeleteStep(c.Request.Context(), principal(c), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}
