package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/common"
	"github.com/dmitrijs2005/projectmanager/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type errorResponse struct {
	Error string `json:"error"`
}

// deliveryFailureResponse is returned when the write succeeded but the
// follow-up email could not be sent.
type deliveryFailureResponse struct {
	Error    string `json:"error"`
	Resource any    `json:"resource"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type userResponse struct {
	ID            string      `json:"id"`
	Email         string      `json:"email"`
	Name          string      `json:"name"`
	Role          models.Role `json:"role"`
	EmailVerified bool        `json:"emailVerified"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

type projectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UserIDs     []string  `json:"userIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type stepResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ProjectID string    `json:"projectId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type taskResponse struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	AssignedToID *string           `json:"assignedToId"`
	StepID       string            `json:"stepId"`
	Status       models.TaskStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

type pageResponse[T any] struct {
	Content []T `json:"content"`
	Page    int `json:"page"`
	Size    int `json:"size"`
}

func newPage[M, T any](items []M, page models.Page, conv func(M) T) pageResponse[T] {
	page = page.Normalize()
	out := make([]T, 0, len(items))
	for _, it := range items {
		out = append(out, conv(it))
	}
	return pageResponse[T]{Content: out, Page: page.Number, Size: page.Size}
}

func toUser(u *models.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func toProject(p *models.Project) projectResponse {
	ids := p.MemberIDs
	if ids == nil {
		ids = []string{}
	}
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		UserIDs:     ids,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toStep(s *models.Step) stepResponse {
	return stepResponse{ID: s.ID, Name: s.Name, ProjectID: s.ProjectID, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt}
}

func toTask(t *models.Task) taskResponse {
	return taskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		AssignedToID: t.AssigneeID,
		StepID:       t.StepID,
		Status:       t.Status,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrDeliveryFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error. Internal failures are logged and their
// details withheld from the client.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		msg = common.ErrorInternal.Error()
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

// respond writes body with status, or the error. A delivery failure after a
// successful write still carries the stored resource.
func (s *Server) respond(c *gin.Context, status int, body any, err error) {
	if err == nil {
		c.JSON(status, body)
		return
	}
	if errors.Is(err, common.ErrDeliveryFailure) {
		s.logger.Error(c.Request.Context(), "email delivery failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusBadGateway, deliveryFailureResponse{Error: err.Error(), Resource: body})
		return
	}
	s.fail(c, err)
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

// pathID reads a UUID path parameter, answering 400 when it is malformed.
func (s *Server) pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid " + name + ": " + id})
		return "", false
	}
	return id, true
}
