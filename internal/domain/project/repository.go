package project

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("project not found")
	ErrProfileRequired = errors.New("owner has no profile")
)

type Repository interface {
	// Create inserts a project under the profile owned by ownerID and fails
	// with ErrProfileRequired when that user has no profile.
	Create(ctx context.Context, ownerID uuid.UUID, f Fields) (Project, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Project, error)
	ListByProfileIDs(ctx context.Context, profileIDs []uuid.UUID) (map[uuid.UUID][]Project, error)
	// Update and Delete only touch projects owned by ownerID; anything else
	// reports ErrNotFound.
	Update(ctx context.Context, ownerID, id uuid.UUID, f Fields) (Project, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
