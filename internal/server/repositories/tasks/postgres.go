package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/common"
	"github.com/dmitrijs2005/projectmanager/internal/dbx"
	"github.com/dmitrijs2005/projectmanager/internal/server/models"
	"github.com/google/uuid"
)

const taskColumns = `t.id, t.title, t.description, t.assignee_id, t.step_id, t.status, t.deleted, t.created_at, t.updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*models.Task, error) {
	t := &models.Task{}
	var assignee sql.NullString
	err := s.Scan(&t.ID, &t.Title, &t.Description, &assignee, &t.StepID, &t.Status, &t.Deleted, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if assignee.Valid {
		t.AssigneeID = &assignee.String
	}
	return t, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO tasks (id, title, description, assignee_id, step_id, status, deleted, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, nullable(task.AssigneeID), task.StepID,
		task.Status, task.Deleted, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = $1 AND t.deleted = false`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Update(ctx context.Context, task *models.Task) error {
	query :=
		`UPDATE tasks
		 SET title = $2, description = $3, assignee_id = $4, updated_at = $5
		 WHERE id = $1 AND deleted = false`

	res, err := r.db.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, nullable(task.AssigneeID), task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id string, from, to models.TaskStatus, now time.Time) error {
	query :=
		`UPDATE tasks
		 SET status = $3, updated_at = $4
		 WHERE id = $1 AND status = $2 AND deleted = false`

	res, err := r.db.ExecContext(ctx, query, id, from, to, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id string, now time.Time) error {
	query := `UPDATE tasks SET deleted = true, updated_at = $2 WHERE id = $1 AND deleted = false`

	res, err := r.db.ExecContext(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string, filter models.TaskFilter) ([]*models.Task, error) {
	var c dbx.Conditions
	c.Raw("t.deleted = false")
	c.Raw("s.deleted = false")
	c.Add("s.project_id = %s", projectID)
	c.Contains("t.title", filter.Title)
	c.Contains("t.description", filter.Description)
	if filter.AssigneeID != "" {
		c.Add("t.assignee_id = %s", filter.AssigneeID)
	}
	if filter.StepID != "" {
		c.Add("t.step_id = %s", filter.StepID)
	}
	if filter.Status != "" {
		c.Add("t.status = %s", filter.Status)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks t JOIN steps s ON s.id = t.step_id` + c.Where() +
		` ORDER BY t.created_at, t.id LIMIT ` + c.Bind(filter.Page.Limit()) + ` OFFSET ` + c.Bind(filter.Page.Offset())

	rows, err := r.db.QueryContext(ctx, query, c.Args()...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
