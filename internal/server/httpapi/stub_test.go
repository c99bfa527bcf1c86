package httpapi

import (
	"context"

	"github.com/dmitrijs2005/projectmanager/internal/server/models"
	"github.com/dmitrijs2005/projectmanager/internal/server/services"
)

// stubAPI implements every service interface. Unset hooks return zero values.
type stubAPI struct {
	login    func(email, password string) (*services.TokenPair, error)
	refresh  func(token string) (*services.TokenPair, error)
	logout   func(token string) error
	reqReset func(email, baseURL string) error
	reset    func(token, password string) error

	register    func(name, email, password, baseURL string) (*models.User, error)
	verifyEmail func(token string) (*models.User, error)
	getUser     func(p models.Principal, id string) (*models.User, error)
	updateUser  func(p models.Principal, id string, upd services.UserUpdate) (*models.User, error)
	deleteUser  func(p models.Principal, id string) error
	listUsers   func(p models.Principal, f models.UserFilter) ([]*models.User, error)

	createProject func(p models.Principal, name, description string) (*models.Project, error)
	getProject    func(p models.Principal, id string) (*models.Project, error)
	listProjects  func(p models.Principal, f models.ProjectFilter) ([]*models.Project, error)
	addMember     func(p models.Principal, projectID, userID string) (*models.Project, error)

	createStep func(p models.Principal, projectID, name string) (*models.Step, error)
	getStep    func(p models.Principal, id string) (*models.Step, error)

	createTask  func(p models.Principal, stepID, title, description string, assigneeID *string) (*models.Task, error)
	updateTask  func(p models.Principal, id string, upd services.TaskUpdate) (*models.Task, error)
	listTasks   func(p models.Principal, projectID string, f models.TaskFilter) ([]*models.Task, error)
	advanceTask func(p models.Principal, id string) (*models.Task, error)
}

func (s *stubAPI) Login(_ context.Context, email, password string) (*services.TokenPair, error) {
	if s.login == nil {
		return &services.TokenPair{}, nil
	}
	return s.login(email, password)
}

func (s *stubAPI) Refresh(_ context.Context, token string) (*services.TokenPair, error) {
	if s.refresh == nil {
		return &services.TokenPair{}, nil
	}
	return s.refresh(token)
}

func (s *stubAPI) Logout(_ context.Context, token string) error {
	if s.logout == nil {
		return nil
	}
	return s.logout(token)
}

func (s *stubAPI) RequestPasswordReset(_ context.Context, email, baseURL string) error {
	if s.reqReset == nil {
		return nil
	}
	return s.reqReset(email, baseURL)
}

func (s *stubAPI) ResetPassword(_ context.Context, token, password string) error {
	if s.reset == nil {
		return nil
	}
	return s.reset(token, password)
}

func (s *stubAPI) Register(_ context.Context, name, email, password, baseURL string) (*models.User, error) {
	return s.register(name, email, password, baseURL)
}

func (s *stubAPI) VerifyEmail(_ context.Context, token string) (*models.User, error) {
	return s.verifyEmail(token)
}

func (s *stubAPI) GetUser(_ context.Context, p models.Principal, id string) (*models.User, error) {
	return s.getUser(p, id)
}

func (s *stubAPI) UpdateUser(_ context.Context, p models.Principal, id string, upd services.UserUpdate) (*models.User, error) {
	return s.updateUser(p, id, upd)
}

func (s *stubAPI) DeleteUser(_ context.Context, p models.Principal, id string) error {
	if s.deleteUser == nil {
		return nil
	}
	return s.deleteUser(p, id)
}

func (s *stubAPI) ListUsers(_ context.Context, p models.Principal, f models.UserFilter) ([]*models.User, error) {
	return s.listUsers(p, f)
}

func (s *stubAPI) CreateProject(_ context.Context, p models.Principal, name, description string) (*models.Project, error) {
	return s.createProject(p, name, description)
}

func (s *stubAPI) GetProject(_ context.Context, p models.Principal, id string) (*models.Project, error) {
	return s.getProject(p, id)
}

func (s *stubAPI) UpdateProject(context.Context, models.Principal, string, services.ProjectUpdate) (*models.Project, error) {
	return &models.Project{}, nil
}

func (s *stubAPI) DeleteProject(context.Context, models.Principal, string) error { return nil }

func (s *stubAPI) ListProjects(_ context.Context, p models.Principal, f models.ProjectFilter) ([]*models.Project, error) {
	return s.listProjects(p, f)
}

func (s *stubAPI) AddMember(_ context.Context, p models.Principal, projectID, userID string) (*models.Project, error) {
	return s.addMember(p, projectID, userID)
}

func (s *stubAPI) RemoveMember(context.Context, models.Principal, string, string) (*models.Project, error) {
	return &models.Project{}, nil
}

func (s *stubAPI) CreateStep(_ context.Context, p models.Principal, projectID, name string) (*models.Step, error) {
	return s.createStep(p, projectID, name)
}

func (s *stubAPI) GetStep(_ context.Context, p models.Principal, id string) (*models.Step, error) {
	return s.getStep(p, id)
}

func (s *stubAPI) UpdateStep(context.Context, models.Principal, string, services.StepUpdate) (*models.Step, error) {
	return &models.Step{}, nil
}

func (s *stubAPI) DeleteStep(context.Context, models.Principal, string) error { return nil }

func (s *stubAPI) ListSteps(context.Context, models.Principal, string, models.StepFilter) ([]*models.Step, error) {
	return nil, nil
}

func (s *stubAPI) CreateTask(_ context.Context, p models.Principal, stepID, title, description string, assigneeID *string) (*models.Task, error) {
	return s.createTask(p, stepID, title, description, assigneeID)
}

func (s *stubAPI) GetTask(context.Context, models.Principal, string) (*models.Task, error) {
	return &models.Task{}, nil
}

func (s *stubAPI) UpdateTask(_ context.Context, p models.Principal, id string, upd services.TaskUpdate) (*models.Task, error) {
	return s.updateTask(p, id, upd)
}

func (s *stubAPI) DeleteTask(context.Context, models.Principal, string) error { return nil }

func (s *stubAPI) ListTasks(_ context.Context, p models.Principal, projectID string, f models.TaskFilter) ([]*models.Task, error) {
	return s.listTasks(p, projectID, f)
}

func (s *stubAPI) AdvanceTask(_ context.Context, p models.Principal, id string) (*models.Task, error) {
	return s.advanceTask(p, id)
}
