// Package projects stores projects and their member sets.
package projects

import (
	"context"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/server/models"
)

type Repository interface {
	// Create inserts the project and its initial members.
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id string) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	SoftDelete(ctx context.Context, id string, now time.Time) error
	// AddMember is a no-op when the user is already a member.
	AddMember(ctx context.Context, projectID, userID string) error
	// RemoveMember is a no-op when the user is not a member.
	RemoveMember(ctx context.Context, projectID, userID string) error
	// List returns live projects that viewerID belongs to, narrowed by filter.
	List(ctx context.Context, viewerID string, filter models.ProjectFilter) ([]*models.Project, error)
}
