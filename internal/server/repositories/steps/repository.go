// Package steps stores the ordered stages of a project.
package steps

import (
	"context"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, step *models.Step) error
	FindByID(ctx context.Context, id string) (*models.Step, error)
	Update(ctx context.Context, step *models.Step) error
	SoftDelete(ctx context.Context, id string, now time.Time) error
	ListByProject(ctx context.Context, projectID string, filter models.StepFilter) ([]*models.Step, error)
}
