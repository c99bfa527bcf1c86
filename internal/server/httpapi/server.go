// Package httpapi exposes the services over HTTP/JSON using gin.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/logging"
	"github.com/dmitrijs2005/projectmanager/internal/server/models"
	"github.com/dmitrijs2005/projectmanager/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// TokenVerifier decodes access tokens into principals.
type TokenVerifier interface {
	VerifyAccess(token string) (models.Principal, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	RequestPasswordReset(ctx context.Context, email, baseURL string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type UserService interface {
	Register(ctx context.Context, name, email, password, baseURL string) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) (*models.User, error)
	GetUser(ctx context.Context, p models.Principal, id string) (*models.User, error)
	UpdateUser(ctx context.Context, p models.Principal, id string, upd services.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, p models.Principal, id string) error
	ListUsers(ctx context.Context, p models.Principal, filter models.UserFilter) ([]*models.User, error)
}

type ProjectService interface {
	CreateProject(ctx context.Context, p models.Principal, name, description string) (*models.Project, error)
	GetProject(ctx context.Context, p models.Principal, id string) (*models.Project, error)
	UpdateProject(ctx context.Context, p models.Principal, id string, upd services.ProjectUpdate) (*models.Project, error)
	DeleteProject(ctx context.Context, p models.Principal, id string) error
	ListProjects(ctx context.Context, p models.Principal, filter models.ProjectFilter) ([]*models.Project, error)
	AddMember(ctx context.Context, p models.Principal, projectID, userID string) (*models.Project, error)
	RemoveMember(ctx context.Context, p models.Principal, projectID, userID string) (*models.Project, error)
}

type StepService interface {
	CreateStep(ctx context.Context, p models.Principal, projectID, name string) (*models.Step, error)
	GetStep(ctx context.Context, p models.Principal, id string) (*models.Step, error)
	UpdateStep(ctx context.Context, p models.Principal, id string, upd services.StepUpdate) (*models.Step, error)
	DeleteStep(ctx context.Context, p models.Principal, id string) error
	ListSteps(ctx context.Context, p models.Principal, projectID string, filter models.StepFilter) ([]*models.Step, error)
}

type TaskService interface {
	CreateTask(ctx context.Context, p models.Principal, stepID, title, description string, assigneeID *string) (*models.Task, error)
	GetTask(ctx context.Context, p models.Principal, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, p models.Principal, id string, upd services.TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, p models.Principal, id string) error
	ListTasks(ctx context.Context, p models.Principal, projectID string, filter models.TaskFilter) ([]*models.Task, error)
	AdvanceTask(ctx context.Context, p models.Principal, id string) (*models.Task, error)
}

// Services groups the business operations served over HTTP.
type Services struct {
	Auth     AuthService
	Users    UserService
	Projects ProjectService
	Steps    StepService
	Tasks    TaskService
}

type Server struct {
	address string
	baseURL string
	tokens  TokenVerifier
	svc     Services
	logger  logging.Logger
	engine  *gin.Engine
}

// NewServer builds the router. baseURL prefixes links in emails; when empty
// it is derived from the request Host header, which the client controls.
func NewServer(address, baseURL string, l logging.Logger, tokens TokenVerifier, svc Services) *Server {
	s := &Server{
		address: address,
		baseURL: baseURL,
		tokens:  tokens,
		svc:     svc,
		logger:  l.With("module", "http_server"),
	}
	if baseURL == "" {
		s.logger.Warn(context.Background(),
			"base URL is not set; verification and password reset links will use the request Host header")
	}
	registerValidators()
	s.engine = s.routes()
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", s.register)
		authGroup.POST("/login", s.login)
		authGroup.POST("/refresh", s.refresh)
		authGroup.POST("/logout", s.logout)
		authGroup.GET("/verify", s.verifyEmail)
		authGroup.POST("/password-reset-request", s.requestPasswordReset)
		authGroup.POST("/reset-password", s.resetPassword)
	}

	protected := api.Group("")
	protected.Use(s.authenticate())

	users := protected.Group("/users")
	{
		users.GET("", s.listUsers)
		users.GET("/:id", s.getUser)
		users.PUT("/:id", s.updateUser)
		users.DELETE("/:id", s.deleteUser)
	}

	projects := protected.Group("/projects")
	{
		projects.POST("", s.createProject)
		projects.GET("", s.listProjects)
		projects.GET("/:id", s.getProject)
		projects.PUT("/:id", s.updateProject)
		projects.DELETE("/:id", s.deleteProject)
		projects.POST("/:id/users/:userId", s.addProjectMember)
		projects.DELETE("/:id/users/:userId", s.removeProjectMember)
	}

	steps := protected.Group("/steps")
	{
		steps.POST("/project/:projectId", s.createStep)
		steps.GET("/project/:projectId", s.listSteps)
		steps.GET("/:id", s.getStep)
		steps.PUT("/:id", s.updateStep)
		steps.DELETE("/:id", s.deleteStep)
	}

	tasks := protected.Group("/tasks")
	{
		tasks.POST("", s.createTask)
		tasks.GET("/project/:projectId", s.listTasks)
		tasks.GET("/:id", s.getTask)
		tasks.PUT("/:id", s.updateTask)
		tasks.DELETE("/:id", s.deleteTask)
		tasks.PUT("/:id/status", s.advanceTask)
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listen)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// linkBase is the prefix for links sent by email.
func (s *Server) linkBase(c *gin.Context) string {
	if s.baseURL != "" {
		return s.baseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
