package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/projectmanager/internal/server/models"
	"github.com/dmitrijs2005/projectmanager/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (s *Server) createTask(c *gin.Context) {
	var req taskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	task, err := s.svc.Tasks.CreateTask(c.Request.Context(), principal(c), req.StepID, req.Title, req.Description, req.AssignedTo)
	if task == nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusCreated, toTask(task), err)
}

func (s *Server) listTasks(c *gin.Context) {
	projectID, ok := s.pathID(c, "projectId")
	if !ok {
		return
	}
	var q taskListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.badRequest(c, err)
		return
	}

	filter := models.TaskFilter{
		Title:       q.Title,
		Description: q.Description,
		AssigneeID:  q.AssignedTo,
		StepID:      q.StepID,
		Status:      models.TaskStatus(q.Status),
		Page:        q.page(),
	}
	list, err := s.svc.Tasks.ListTasks(c.Request.Context(), principal(c), projectID, filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(list, filter.Page, toTask))
}

func (s *Server) getTask(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	task, err := s.svc.Tasks.GetTask(c.Request.Context(), principal(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toTask(task))
}

func (s *Server) updateTask(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req taskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	upd := services.TaskUpdate{Title: req.Title, Description: req.Description, AssigneeID: req.AssignedTo}
	task, err := s.svc.Tasks.UpdateTask(c.Request.Context(), principal(c), id, upd)
	if task == nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, toTask(task), err)
}

func (s *Server) deleteTask(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	if err := s.svc.Tasks.DeleteTask(c.Request.Context(), principal(c), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// advanceTask moves the task to its next status; the body is ignored.
func (s *Server) advanceTask(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	task, err := s.svc.Tasks.AdvanceTask(c.Request.Context(), principal(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toTask(task))
}
