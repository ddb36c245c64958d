package seeder

import (
	"context"
	"fmt"

	"devhub/internal/database"
	"devhub/internal/database/postgres"
	"devhub/internal/pkg/strlist"

	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "secret123"

type demoProject struct {
	Name         string
	Description  string
	Technologies []string
	DemoURL      string
	CodeURL      string
}

type demoDeveloper struct {
	Name       string
	Email      string
	Title      string
	Bio        string
	Location   string
	Experience int
	GithubURL  string
	Skills     []string
	Projects   []demoProject
}

var demoDevelopers = []demoDeveloper{
	{
		Name:       "Ana Putri",
		Email:      "ana@devhub.local",
		Title:      "Backend Engineer",
		Bio:        "Builds APIs and data pipelines.",
		Location:   "Jakarta",
		Experience: 5,
		GithubURL:  "https://github.com/ana-devhub",
		Skills:     []string{"Go", "PostgreSQL", "Redis"},
		Projects: []demoProject{
			{
				Name:         "Order Service",
				Description:  "Event driven order processing.",
				Technologies: []string{"Go", "Kafka", "PostgreSQL"},
				CodeURL:      "https://github.com/ana-devhub/orders",
			},
		},
	},
	{
		Name:       "Budi Santoso",
		Email:      "budi@devhub.local",
		Title:      "Frontend Developer",
		Bio:        "Design systems and accessible UI.",
		Location:   "Bandung",
		Experience: 3,
		Skills:     []string{"TypeScript", "React", "CSS"},
		Projects: []demoProject{
			{
				Name:         "Portfolio Kit",
				Description:  "Static portfolio generator.",
				Technologies: []string{"TypeScript", "Vite"},
				DemoURL:      "https://portfolio-kit.example.com",
			},
		},
	},
	{
		Name:       "Citra Lestari",
		Email:      "citra@devhub.local",
		Title:      "DevOps Engineer",
		Location:   "Surabaya",
		Experience: 7,
		Skills:     []string{"Kubernetes", "Terraform", "Go"},
	},
}

// DevelopersSeeder inserts demo accounts with profiles and projects. Accounts
// that already exist are left untouched.
type DevelopersSeeder struct{}

func (DevelopersSeeder) Name() string { return "developers" }

func (DevelopersSeeder) Run(ctx context.Context, db database.DB) error {
	required := map[string][]string{
		"users":    {"id", "name", "email", "password_hash"},
		"profiles": {"user_id", "name", "skills", "picture"},
		"projects": {"profile_id", "technologies"},
	}
	for table, cols := range required {
		if err := RequireColumns(ctx, db, table, cols...); err != nil {
			return err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, d := range demoDevelopers {
			if err := seedDeveloper(ctx, tx, d, string(hash)); err != nil {
				return fmt.Errorf("%s: %w", d.Email, err)
			}
		}
		return nil
	})
}

func seedDeveloper(ctx context.Context, tx database.Tx, d demoDeveloper, hash string) error {
	var userID string
	err := tx.QueryRow(
		ctx,
		`INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3)
		 ON CONFLICT ((lower(email))) DO NOTHING
		 RETURNING id`,
		d.Name, d.Email, hash,
	).Scan(&userID)
	if postgres.IsNoRows(err) {
		// the account exists already
		return nil
	}
	if err != nil {
		return err
	}

	var profileID string
	if err := tx.QueryRow(
		ctx,
		`INSERT INTO profiles (user_id, name, title, bio, location, experience, email, github_url, skills)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		userID, d.Name, d.Title, d.Bio, d.Location, d.Experience, d.Email, d.GithubURL, strlist.Encode(d.Skills),
	).Scan(&profileID); err != nil {
		return err
	}

	for _, p := range d.Projects {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO projects (profile_id, name, description, technologies, demo_url, code_url)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			profileID, p.Name, p.Description, strlist.Encode(p.Technologies), p.DemoURL, p.CodeURL,
		); err != nil {
			return err
		}
	}
	return nil
}
