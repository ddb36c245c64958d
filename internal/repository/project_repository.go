package repository

import (
	"context"
	"errors"
	"fmt"

	"devhub/internal/database"
	"devhub/internal/database/postgres"
	"devhub/internal/domain/project"
	"devhub/internal/pkg/strlist"

	"github.com/google/uuid"
)

const projectColumns = `pr.id, pr.profile_id, pr.name, pr.description, pr.technologies,
	pr.demo_url, pr.code_url, pr.created_at, pr.updated_at`

type PostgresProjectRepository struct {
	db database.DB
}

func NewPostgresProjectRepository(db database.DB) *PostgresProjectRepository {
	return &PostgresProjectRepository{db: db}
}

var _ project.Repository = (*PostgresProjectRepository)(nil)

func (r *PostgresProjectRepository) Create(ctx context.Context, ownerID uuid.UUID, f project.Fields) (project.Project, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO projects AS pr (profile_id, name, description, technologies, demo_url, code_url)
		 SELECT p.id, $2, $3, $4, $5, $6 FROM profiles p WHERE p.user_id = $1
		 RETURNING `+projectColumns,
		ownerID, f.Name, f.Description, strlist.Encode(f.Technologies), f.DemoURL, f.CodeURL,
	)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return project.Project{}, project.ErrProfileRequired
		}
		if postgres.IsForeignKeyViolation(err) {
			return project.Project{}, project.ErrProfileRequired
		}
		return project.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

func (r *PostgresProjectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]project.Project, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+projectColumns+`
		 FROM projects pr
		 JOIN profiles p ON p.id = pr.profile_id
		 WHERE p.user_id = $1
		 ORDER BY pr.created_at DESC, pr.id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]project.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

func (r *PostgresProjectRepository) ListByProfileIDs(ctx context.Context, profileIDs []uuid.UUID) (map[uuid.UUID][]project.Project, error) {
	out := make(map[uuid.UUID][]project.Project, len(profileIDs))
	if len(profileIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+projectColumns+`
		 FROM projects pr
		 WHERE pr.profile_id = ANY($1)
		 ORDER BY pr.created_at DESC, pr.id ASC`,
		profileIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects by profile: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out[p.ProfileID] = append(out[p.ProfileID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects by profile: %w", err)
	}
	return out, nil
}

func (r *PostgresProjectRepository) Update(ctx context.Context, ownerID, id uuid.UUID, f project.Fields) (project.Project, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE projects pr SET
		   name = $3,
		   description = $4,
		   technologies = $5,
		   demo_url = $6,
		   code_url = $7,
		   updated_at = now()
		 FROM profiles p
		 WHERE pr.id = $1 AND pr.profile_id = p.id AND p.user_id = $2
		 RETURNING `+projectColumns,
		id, ownerID, f.Name, f.Description, strlist.Encode(f.Technologies), f.DemoURL, f.CodeURL,
	)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return project.Project{}, err
		}
		return project.Project{}, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

func (r *PostgresProjectRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	n, err := r.db.Exec(ctx,
		`DELETE FROM projects pr
		 USING profiles p
		 WHERE pr.id = $1 AND pr.profile_id = p.id AND p.user_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n == 0 {
		return project.ErrNotFound
	}
	return nil
}

func scanProject(row database.Row) (project.Project, error) {
	var p project.Project
	var techs string
	err := row.Scan(
		&p.ID, &p.ProfileID, &p.Name, &p.Description, &techs,
		&p.DemoURL, &p.CodeURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, fmt.Errorf("scan project: %w", err)
	}
	p.Technologies = strlist.Decode(techs)
	return p, nil
}
