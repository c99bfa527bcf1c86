package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/dbx"
	"github.com/dmitrijs2005/projectmanager/internal/logging"
	"github.com/dmitrijs2005/projectmanager/internal/server/authz"
	"github.com/dmitrijs2005/projectmanager/internal/server/models"
)

// ProjectUpdate carries the mutable project fields. Nil means unchanged.
type ProjectUpdate struct {
	Name        *string
	Description *string
}

// ProjectService manages projects and their membership. Any member may do
// anything to a project, including changing who the members are.
type ProjectService struct {
	Deps
	now    func() time.Time
	logger logging.Logger
}

func NewProjectService(d Deps) *ProjectService {
	return &ProjectService{Deps: d, now: d.clockFunc(), logger: d.moduleLogger("projects")}
}

// memberProject loads a live project and checks that p belongs to it.
// Existence is checked first, so a missing project is NotFound for everyone.
func memberProject(ctx context.Context, d Deps, db dbx.DBTX, p models.Principal, id, action string) (*models.Project, error) {
	project, err := d.Repos.Projects(db).FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "project not found with ID: "+id, "find project")
	}
	if err := authz.RequireMember(p, project, action); err != nil {
		return nil, err
	}
	return project, nil
}

// CreateProject stores a project whose only member is its creator.
func (s *ProjectService) CreateProject(ctx context.Context, p models.Principal, name, description string) (*models.Project, error) {
	if _, err := s.Repos.Users(s.DB).FindByID(ctx, p.UserID); err != nil {
		return nil, notFoundAs(err, "user not found with ID: "+p.UserID, "find user")
	}

	now := s.now()
	project := &models.Project{
		Name:        name,
		Description: description,
		MemberIDs:   []string{p.UserID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := dbx.WithTx(ctx, s.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.Repos.Projects(tx).Create(ctx, project)
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.logger.Info(ctx, "project created", "project_id", project.ID)
	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, p models.Principal, id string) (*models.Project, error) {
	return memberProject(ctx, s.Deps, s.DB, p, id, "view this project")
}

func (s *ProjectService) UpdateProject(ctx context.Context, p models.Principal, id string, upd ProjectUpdate) (*models.Project, error) {
	project, err := memberProject(ctx, s.Deps, s.DB, p, id, "update this project")
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		project.Name = *upd.Name
	}
	if upd.Description != nil {
		project.Description = *upd.Description
	}
	project.UpdatedAt = s.now()

	if err := s.Repos.Projects(s.DB).Update(ctx, project); err != nil {
		return nil, notFoundAs(err, "project not found with ID: "+id, "update project")
	}

	s.logger.Info(ctx, "project updated", "project_id", id)
	return project, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, p models.Principal, id string) error {
	if _, err := memberProject(ctx, s.Deps, s.DB, p, id, "delete this project"); err != nil {
		return err
	}

	if err := s.Repos.Projects(s.DB).SoftDelete(ctx, id, s.now()); err != nil {
		return notFoundAs(err, "project not found with ID: "+id, "delete project")
	}

	s.logger.Info(ctx, "project logically deleted", "project_id", id)
	return nil
}

// ListProjects only ever returns projects p is a member of.
func (s *ProjectService) ListProjects(ctx context.Context, p models.Principal, filter models.ProjectFilter) ([]*models.Project, error) {
	list, err := s.Repos.Projects(s.DB).List(ctx, p.UserID, filter)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return list, nil
}

// AddMember adds an existing user to the project. Adding a current member
// changes nothing.
func (s *ProjectService) AddMember(ctx context.Context, p models.Principal, projectID, userID string) (*models.Project, error) {
	project, err := memberProject(ctx, s.Deps, s.DB, p, projectID, "modify this project")
	if err != nil {
		return nil, err
	}

	if _, err := s.Repos.Users(s.DB).FindByID(ctx, userID); err != nil {
		return nil, notFoundAs(err, "user not found with ID: "+userID, "find user")
	}

	if err := s.Repos.Projects(s.DB).AddMember(ctx, projectID, userID); err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	if !project.HasMember(userID) {
		project.MemberIDs = append(project.MemberIDs, userID)
	}

	s.logger.Info(ctx, "project member added", "project_id", projectID, "user_id", userID)
	return project, nil
}

// RemoveMember drops userID from the project. Removing a non-member or the
// last member is allowed; existing task assignments are left alone.
func (s *ProjectService) RemoveMember(ctx context.Context, p models.Principal, projectID, userID string) (*models.Project, error) {
	project, err := memberProject(ctx, s.Deps, s.DB, p, projectID, "modify this project")
	if err != nil {
		return nil, err
	}

	if err := s.Repos.Projects(s.DB).RemoveMember(ctx, projectID, userID); err != nil {
		return nil, fmt.Errorf("remove member: %w", err)
	}

	members := project.MemberIDs[:0]
	for _, id := range project.MemberIDs {
		if id != userID {
			members = append(members, id)
		}
	}
	project.MemberIDs = members

	s.logger.Info(ctx, "project member removed", "project_id", projectID, "user_id", userID)
	return project, nil
}
