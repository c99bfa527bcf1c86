package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/common"
	"github.com/dmitrijs2005/projectmanager/internal/logging"
	"github.com/dmitrijs2005/projectmanager/internal/server/authz"
	"github.com/dmitrijs2005/projectmanager/internal/server/models"
)

// TaskUpdate carries the mutable task fields. Nil means unchanged; a task
// cannot be unassigned through an update. Status moves only through Advance.
type TaskUpdate struct {
	Title       *string
	Description *string
	AssigneeID  *string
}

// TaskService manages tasks. Access follows task → step → project membership.
type TaskService struct {
	Deps
	notifier Notifier
	now      func() time.Time
	logger   logging.Logger
}

func NewTaskService(d Deps, notifier Notifier) *TaskService {
	return &TaskService{Deps: d, notifier: notifier, now: d.clockFunc(), logger: d.moduleLogger("tasks")}
}

// projectOfStep resolves the live project owning stepID and checks p.
func (s *TaskService) projectOfStep(ctx context.Context, p models.Principal, stepID, action string) (*models.Project, error) {
	step, err := s.Repos.Steps(s.DB).FindByID(ctx, stepID)
	if err != nil {
		return nil, notFoundAs(err, "step not found with ID: "+stepID, "find step")
	}
	return memberProject(ctx, s.Deps, s.DB, p, step.ProjectID, action)
}

func (s *TaskService) memberTask(ctx context.Context, p models.Principal, id, action string) (*models.Task, *models.Project, error) {
	task, err := s.Repos.Tasks(s.DB).FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundAs(err, "task not found with ID: "+id, "find task")
	}
	project, err := s.projectOfStep(ctx, p, task.StepID, action)
	if err != nil {
		return nil, nil, err
	}
	return task, project, nil
}

// checkAssignee enforces that the assignee is a member of project right now
// and returns the assignee's account.
func (s *TaskService) checkAssignee(ctx context.Context, project *models.Project, assigneeID string) (*models.User, error) {
	if !authz.IsMember(assigneeID, project) {
		return nil, fmt.Errorf("%w: assigned user must be a member of the project", common.ErrorBadRequest)
	}
	user, err := s.Repos.Users(s.DB).FindByID(ctx, assigneeID)
	if err != nil {
		return nil, notFoundAs(err, "user not found with ID: "+assigneeID, "find user")
	}
	return user, nil
}

// CreateTask stores a TODO task in stepID. When an assignee is given an
// assignment email is sent after the task is stored; a delivery failure is
// returned alongside the saved task.
func (s *TaskService) CreateTask(ctx context.Context, p models.Principal, stepID, title, description string, assigneeID *string) (*models.Task, error) {
	project, err := s.projectOfStep(ctx, p, stepID, "create tasks in this project")
	if err != nil {
		return nil, err
	}

	var assignee *models.User
	if assigneeID != nil {
		if assignee, err = s.checkAssignee(ctx, project, *assigneeID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	task := &models.Task{
		Title:       title,
		Description: description,
		AssigneeID:  assigneeID,
		StepID:      stepID,
		Status:      models.TaskStatusTodo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repos.Tasks(s.DB).Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.logger.Info(ctx, "task created", "task_id", task.ID, "project_id", project.ID)

	if assignee != nil {
		return task, s.notifier.SendTaskAssignment(ctx, assignee.Email, task.Title, project.Name)
	}
	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, p models.Principal, id string) (*models.Task, error) {
	task, _, err := s.memberTask(ctx, p, id, "view this task")
	return task, err
}

// UpdateTask changes title, description or assignee. A new assignee gets an
// email once the change is stored.
func (s *TaskService) UpdateTask(ctx context.Context, p models.Principal, id string, upd TaskUpdate) (*models.Task, error) {
	task, project, err := s.memberTask(ctx, p, id, "update this task")
	if err != nil {
		return nil, err
	}

	var newAssignee *models.User
	if upd.AssigneeID != nil {
		if newAssignee, err = s.checkAssignee(ctx, project, *upd.AssigneeID); err != nil {
			return nil, err
		}
		if task.AssigneeID != nil && *task.AssigneeID == *upd.AssigneeID {
			newAssignee = nil
		}
		task.AssigneeID = upd.AssigneeID
	}
	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	task.UpdatedAt = s.now()

	repo := s.Repos.Tasks(s.DB)
	if err := repo.Update(ctx, task); err != nil {
		return nil, notFoundAs(err, "task not found with ID: "+id, "update task")
	}
	s.logger.Info(ctx, "task updated", "task_id", id)

	// status may have moved since the read
	if task, err = repo.FindByID(ctx, id); err != nil {
		return nil, notFoundAs(err, "task not found with ID: "+id, "find task")
	}

	if newAssignee != nil {
		return task, s.notifier.SendTaskAssignment(ctx, newAssignee.Email, task.Title, project.Name)
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, p models.Principal, id string) error {
	if _, _, err := s.memberTask(ctx, p, id, "delete this task"); err != nil {
		return err
	}

	if err := s.Repos.Tasks(s.DB).SoftDelete(ctx, id, s.now()); err != nil {
		return notFoundAs(err, "task not found with ID: "+id, "delete task")
	}

	s.logger.Info(ctx, "task logically deleted", "task_id", id)
	return nil
}

func (s *TaskService) ListTasks(ctx context.Context, p models.Principal, projectID string, filter models.TaskFilter) ([]*models.Task, error) {
	if _, err := memberProject(ctx, s.Deps, s.DB, p, projectID, "view tasks in this project"); err != nil {
		return nil, err
	}

	list, err := s.Repos.Tasks(s.DB).ListByProject(ctx, projectID, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return list, nil
}

// AdvanceTask moves the task one status forward. DONE is terminal and
// yields BadRequest without touching the task. The write only applies while
// the task is still in the status that was read, so of two concurrent
// advances from the same status exactly one succeeds.
func (s *TaskService) AdvanceTask(ctx context.Context, p models.Principal, id string) (*models.Task, error) {
	task, _, err := s.memberTask(ctx, p, id, "update this task status")
	if err != nil {
		return nil, err
	}

	from := task.Status
	if err := task.Advance(); err != nil {
		return nil, err
	}
	task.UpdatedAt = s.now()

	repo := s.Repos.Tasks(s.DB)
	if err := repo.SetStatus(ctx, id, from, task.Status, task.UpdatedAt); err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("update task status: %w", err)
		}
		current, ferr := repo.FindByID(ctx, id)
		if ferr != nil {
			return nil, notFoundAs(ferr, "task not found with ID: "+id, "find task")
		}
		if _, nerr := current.Status.Next(); nerr != nil {
			return nil, nerr
		}
		return nil, fmt.Errorf("%w: task status changed from %s to %s meanwhile", common.ErrorBadRequest, from, current.Status)
	}

	s.logger.Info(ctx, "task status updated", "task_id", id, "status", task.Status)
	return task, nil
}
