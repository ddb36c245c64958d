// Package seeder loads demo data into a migrated database.
package seeder

import (
	"context"

	"devhub/internal/database"
)

// Seeder inserts one data set. Implementations must be safe to run against a
// database that was already seeded.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
