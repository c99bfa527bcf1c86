// Package tasks stores tasks. Project scoping goes through the owning step.
package tasks

import (
	"context"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id string) (*models.Task, error)
	// Update persists title, description and assignee. Status is left alone.
	Update(ctx context.Context, task *models.Task) error
	// SetStatus moves the task from one status to another. It reports
	// common.ErrorNotFound when the task is gone or no longer in from.
	SetStatus(ctx context.Context, id string, from, to models.TaskStatus, now time.Time) error
	SoftDelete(ctx context.Context, id string, now time.Time) error
	ListByProject(ctx context.Context, projectID string, filter models.TaskFilter) ([]*models.Task, error)
}
