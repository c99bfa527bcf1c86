package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/common"
	"github.com/dmitrijs2005/projectmanager/internal/dbx"
	"github.com/dmitrijs2005/projectmanager/internal/server/models"
	"github.com/google/uuid"
)

const selectProject = `SELECT p.id, p.name, p.description, p.deleted, p.created_at, p.updated_at,
	COALESCE((SELECT string_agg(m.user_id::text, ',' ORDER BY m.user_id)
	          FROM project_members m WHERE m.project_id = p.id), '')
	FROM projects p`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*models.Project, error) {
	p := &models.Project{}
	var members string
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Deleted, &p.CreatedAt, &p.UpdatedAt, &members); err != nil {
		return nil, err
	}
	if members != "" {
		p.MemberIDs = strings.Split(members, ",")
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO projects (id, name, description, deleted, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		project.ID, project.Name, project.Description, project.Deleted, project.CreatedAt, project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	for _, userID := range project.MemberIDs {
		if err := r.AddMember(ctx, project.ID, userID); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	query := selectProject + ` WHERE p.id = $1 AND p.deleted = false`

	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, project *models.Project) error {
	query :=
		`UPDATE projects SET name = $2, description = $3, updated_at = $4
		 WHERE id = $1 AND deleted = false`

	res, err := r.db.ExecContext(ctx, query, project.ID, project.Name, project.Description, project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id string, now time.Time) error {
	query := `UPDATE projects SET deleted = true, updated_at = $2 WHERE id = $1 AND deleted = false`

	res, err := r.db.ExecContext(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) AddMember(ctx context.Context, projectID, userID string) error {
	query :=
		`INSERT INTO project_members (project_id, user_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, projectID, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	query := `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`

	if _, err := r.db.ExecContext(ctx, query, projectID, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, viewerID string, filter models.ProjectFilter) ([]*models.Project, error) {
	var c dbx.Conditions
	c.Raw("p.deleted = false")
	c.Add("EXISTS (SELECT 1 FROM project_members v WHERE v.project_id = p.id AND v.user_id = %s)", viewerID)
	if filter.MemberID != "" {
		c.Add("EXISTS (SELECT 1 FROM project_members f WHERE f.project_id = p.id AND f.user_id = %s)", filter.MemberID)
	}
	c.Contains("p.name", filter.Name)
	c.Contains("p.description", filter.Description)

	query := selectProject + c.Where() +
		` ORDER BY p.created_at, p.id LIMIT ` + c.Bind(filter.Page.Limit()) + ` OFFSET ` + c.Bind(filter.Page.Offset())

	rows, err := r.db.QueryContext(ctx, query, c.Args()...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
