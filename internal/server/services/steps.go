package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/logging"
	"github.com/dmitrijs2005/projectmanager/internal/server/models"
)

// StepUpdate carries the mutable step fields. Nil means unchanged.
type StepUpdate struct {
	Name *string
}

// StepService manages steps. A step has no ACL of its own: access follows
// membership of the owning project.
type StepService struct {
	Deps
	now    func() time.Time
	logger logging.Logger
}

func NewStepService(d Deps) *StepService {
	return &StepService{Deps: d, now: d.clockFunc(), logger: d.moduleLogger("steps")}
}

// memberStep loads a live step and checks p against its project.
func (s *StepService) memberStep(ctx context.Context, p models.Principal, id, action string) (*models.Step, *models.Project, error) {
	step, err := s.Repos.Steps(s.DB).FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundAs(err, "step not found with ID: "+id, "find step")
	}
	project, err := memberProject(ctx, s.Deps, s.DB, p, step.ProjectID, action)
	if err != nil {
		return nil, nil, err
	}
	return step, project, nil
}

func (s *StepService) CreateStep(ctx context.Context, p models.Principal, projectID, name string) (*models.Step, error) {
	if _, err := memberProject(ctx, s.Deps, s.DB, p, projectID, "create steps in this project"); err != nil {
		return nil, err
	}

	now := s.now()
	step := &models.Step{Name: name, ProjectID: projectID, CreatedAt: now, UpdatedAt: now}
	if err := s.Repos.Steps(s.DB).Create(ctx, step); err != nil {
		return nil, fmt.Errorf("create step: %w", err)
	}

	s.logger.Info(ctx, "step created", "step_id", step.ID, "project_id", projectID)
	return step, nil
}

func (s *StepService) GetStep(ctx context.Context, p models.Principal, id string) (*models.Step, error) {
	step, _, err := s.memberStep(ctx, p, id, "view this step")
	return step, err
}

func (s *StepService) UpdateStep(ctx context.Context, p models.Principal, id string, upd StepUpdate) (*models.Step, error) {
	step, _, err := s.memberStep(ctx, p, id, "update this step")
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		step.Name = *upd.Name
	}
	step.UpdatedAt = s.now()

	if err := s.Repos.Steps(s.DB).Update(ctx, step); err != nil {
		return nil, notFoundAs(err, "step not found with ID: "+id, "update step")
	}

	s.logger.Info(ctx, "step updated", "step_id", id)
	return step, nil
}

func (s *StepService) DeleteStep(ctx context.Context, p models.Principal, id string) error {
	if _, _, err := s.memberStep(ctx, p, id, "delete this step"); err != nil {
		return err
	}

	if err := s.Repos.Steps(s.DB).SoftDelete(ctx, id, s.now()); err != nil {
		return notFoundAs(err, "step not found with ID: "+id, "delete step")
	}

	s.logger.Info(ctx, "step logically deleted", "step_id", id)
	return nil
}

func (s *StepService) ListSteps(ctx context.Context, p models.Principal, projectID string, filter models.StepFilter) ([]*models.Step, error) {
	if _, err := memberProject(ctx, s.Deps, s.DB, p, projectID, "view steps in this project"); err != nil {
		return nil, err
	}

	list, err := s.Repos.Steps(s.DB).ListByProject(ctx, projectID, filter)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	return list, nil
}
