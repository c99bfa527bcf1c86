package steps

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

const stepColumns = `id, name, project_id, deleted, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, step *models.Step) error {
	if step.ID == "" {
		step.ID = uuid.NewString()
	}

	query := `INSERT INTO steps (` + stepColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		step.ID, step.Name, step.ProjectID, step.Deleted, step.CreatedAt, step.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Step, error) {
	query := `SELECT ` + stepColumns + ` FROM steps WHERE id = $1 AND deleted = false`

	s := &models.Step{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&s.ID, &s.Name, &s.ProjectID, &s.Deleted, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Update(ctx context.Context, step *models.Step) error {
	query := `UPDATE steps SET name = $2, updated_at = $3 WHERE id = $1 AND deleted = false`

	res, err := r.db.ExecContext(ctx, query, step.ID, step.Name, step.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id string, now time.Time) error {
	query := `UPDATE steps SET deleted = true, updated_at = $2 WHERE id = $1 AND deleted = false`

	res, err := r.db.ExecContext(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string, filter models.StepFilter) ([]*models.Step, error) {
	var c dbx.Conditions
	c.Raw("deleted = false")
	c.Add("project_id = %s", projectID)
	c.Contains("name", filter.Name)

	query := `SELECT ` + stepColumns + ` FROM steps` + c.Where() +
		` ORDER BY created_at, id LIMIT ` + c.Bind(filter.Page.Limit()) + ` OFFSET ` + c.Bind(filter.Page.Offset())

	rows, err := r.db.QueryContext(ctx, query, c.Args()...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Step
	for rows.Next() {
		s := &models.Step{}
		if err := rows.Scan(&s.ID, &s.Name, &s.ProjectID, &s.Deleted, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
