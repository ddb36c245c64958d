package repository

import (
	"context"
	"fmt"
	"strings"

	"devhub/internal/database"
	"devhub/internal/database/postgres"
	"devhub/internal/domain/profile"
	"devhub/internal/pkg/strlist"

	"github.com/google/uuid"
)

const profileColumns = `p.id, p.user_id, p.name, p.title, p.bio, p.location, p.experience,
	p.email, p.phone, p.github_url, p.linkedin_url, p.picture, p.skills,
	p.created_at, p.updated_at, u.name, u.email`

const ensureProfileSQL = `INSERT INTO profiles (user_id, name, email)
	SELECT u.id, u.name, u.email FROM users u WHERE u.id = $1
	ON CONFLICT (user_id) DO NOTHING`

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

var _ profile.Repository = (*PostgresProfileRepository)(nil)

func (r *PostgresProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (profile.Profile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+profileColumns+`
		 FROM profiles p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.user_id = $1`,
		userID,
	)
	return scanProfile(row)
}

func (r *PostgresProfileRepository) List(ctx context.Context, f profile.ListFilter) ([]profile.Profile, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	q := strings.TrimSpace(f.Query)
	skill := strings.TrimSpace(f.Skill)

	var qPattern, skillPattern string
	if q != "" {
		qPattern = "%" + escapeLike(q) + "%"
	}
	if skill != "" {
		skillPattern = "%" + escapeLike(skillToken(skill)) + "%"
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+profileColumns+`
		 FROM profiles p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.name <> ''
		   AND ($1 = '' OR p.name ILIKE $1 OR p.title ILIKE $1 OR p.location ILIKE $1
		        OR p.bio ILIKE $1 OR p.skills ILIKE $1)
		   AND ($2 = '' OR p.skills ILIKE $2
		        OR (p.skills NOT LIKE '[%' AND lower($5::text) = ANY (
		            SELECT lower(btrim(s)) FROM unnest(string_to_array(p.skills, ',')) AS s)))
		 ORDER BY p.created_at DESC, p.id ASC
		 LIMIT $3 OFFSET $4`,
		qPattern, skillPattern, limit, offset, skill,
	)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	out := make([]profile.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

func (r *PostgresProfileRepository) Create(ctx context.Context, userID uuid.UUID, f profile.Fields) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx,
		`INSERT INTO profiles (user_id, name, title, bio, location, experience, email, phone, github_url, linkedin_url, skills)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		append([]any{userID}, fieldArgs(f)...)...,
	).Scan(&id)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return uuid.Nil, profile.ErrAlreadyExists
		}
		return uuid.Nil, fmt.Errorf("insert profile: %w", err)
	}
	return id, nil
}

func (r *PostgresProfileRepository) Upsert(ctx context.Context, userID uuid.UUID, f profile.Fields) (uuid.UUID, bool, error) {
	var id uuid.UUID
	var created bool
	err := r.db.QueryRow(ctx,
		`INSERT INTO profiles (user_id, name, title, bio, location, experience, email, phone, github_url, linkedin_url, skills)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (user_id) DO UPDATE SET
		   name = EXCLUDED.name,
		   title = EXCLUDED.title,
		   bio = EXCLUDED.bio,
		   location = EXCLUDED.location,
		   experience = EXCLUDED.experience,
		   email = EXCLUDED.email,
		   phone = EXCLUDED.phone,
		   github_url = EXCLUDED.github_url,
		   linkedin_url = EXCLUDED.linkedin_url,
		   skills = EXCLUDED.skills,
		   updated_at = now()
		 RETURNING id, (xmax = 0)`,
		append([]any{userID}, fieldArgs(f)...)...,
	).Scan(&id, &created)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("upsert profile: %w", err)
	}
	return id, created, nil
}

func (r *PostgresProfileRepository) EnsureExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	n, err := r.db.Exec(ctx, ensureProfileSQL, userID)
	if err != nil {
		return false, fmt.Errorf("ensure profile: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresProfileRepository) ReplacePicture(ctx context.Context, userID uuid.UUID, filename string) (uuid.UUID, string, error) {
	var profileID uuid.UUID
	var previous string

	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx, ensureProfileSQL, userID); err != nil {
			return fmt.Errorf("ensure profile: %w", err)
		}

		var pic *string
		err := tx.QueryRow(ctx,
			`SELECT id, picture FROM profiles WHERE user_id = $1 FOR UPDATE`,
			userID,
		).Scan(&profileID, &pic)
		if err != nil {
			if postgres.IsNoRows(err) {
				return profile.ErrNotFound
			}
			return fmt.Errorf("lock profile: %w", err)
		}
		if pic != nil {
			previous = *pic
		}

		if _, err := tx.Exec(ctx,
			`UPDATE profiles SET picture = $2, updated_at = now() WHERE id = $1`,
			profileID, filename,
		); err != nil {
			return fmt.Errorf("set picture: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, "", err
	}
	return profileID, previous, nil
}

func (r *PostgresProfileRepository) ClearPicture(ctx context.Context, userID uuid.UUID) (string, error) {
	var previous string

	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		var id uuid.UUID
		var pic *string
		err := tx.QueryRow(ctx,
			`SELECT id, picture FROM profiles WHERE user_id = $1 FOR UPDATE`,
			userID,
		).Scan(&id, &pic)
		if err != nil {
			if postgres.IsNoRows(err) {
				return profile.ErrNotFound
			}
			return fmt.Errorf("lock profile: %w", err)
		}
		if pic == nil || *pic == "" {
			return profile.ErrNoPicture
		}
		previous = *pic

		if _, err := tx.Exec(ctx,
			`UPDATE profiles SET picture = NULL, updated_at = now() WHERE id = $1`,
			id,
		); err != nil {
			return fmt.Errorf("clear picture: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}

func (r *PostgresProfileRepository) Delete(ctx context.Context, userID uuid.UUID) (profile.Profile, error) {
	var p profile.Profile
	var pic *string
	err := r.db.QueryRow(ctx,
		`DELETE FROM profiles WHERE user_id = $1 RETURNING id, user_id, picture`,
		userID,
	).Scan(&p.ID, &p.UserID, &pic)
	if err != nil {
		if postgres.IsNoRows(err) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, fmt.Errorf("delete profile: %w", err)
	}
	if pic != nil {
		p.Picture = *pic
	}
	return p, nil
}

func fieldArgs(f profile.Fields) []any {
	return []any{
		f.Name, f.Title, f.Bio, f.Location, f.Experience,
		f.Email, f.Phone, f.GithubURL, f.LinkedinURL, strlist.Encode(f.Skills),
	}
}

func scanProfile(row database.Row) (profile.Profile, error) {
	var p profile.Profile
	var pic *string
	var skills string
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Title, &p.Bio, &p.Location, &p.Experience,
		&p.Email, &p.Phone, &p.GithubURL, &p.LinkedinURL, &pic, &skills,
		&p.CreatedAt, &p.UpdatedAt, &p.Owner.Name, &p.Owner.Email,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, fmt.Errorf("scan profile: %w", err)
	}
	if pic != nil {
		p.Picture = *pic
	}
	p.Skills = strlist.Decode(skills)
	p.Owner.ID = p.UserID
	return p, nil
}

// skillToken renders skill the way it appears inside the stored JSON array,
// quotes included, so a filter for "Go" does not match "Golang". Rows still
// holding the legacy comma-separated format are matched per item instead.
func skillToken(skill string) string {
	enc := strlist.Encode([]string{skill})
	return strings.TrimSuffix(strings.TrimPrefix(enc, "["), "]")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
