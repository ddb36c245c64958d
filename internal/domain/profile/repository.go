package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("profile not found")
	ErrAlreadyExists = errors.New("profile already exists")
	ErrNoPicture     = errors.New("profile has no picture")
)

type Repository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (Profile, error)
	List(ctx context.Context, f ListFilter) ([]Profile, error)

	// Create inserts a new profile and fails with ErrAlreadyExists when the
	// user already owns one.
	Create(ctx context.Context, userID uuid.UUID, f Fields) (uuid.UUID, error)
	// Upsert creates or fully overwrites the editable fields of the user's
	// profile. created is true when a new row was inserted.
	Upsert(ctx context.Context, userID uuid.UUID, f Fields) (id uuid.UUID, created bool, err error)
	// EnsureExists creates a placeholder profile from the user's name and
	// email when none exists.
	EnsureExists(ctx context.Context, userID uuid.UUID) (created bool, err error)

	// ReplacePicture attaches filename to the user's profile, creating the
	// profile when missing, and returns the previously attached filename.
	ReplacePicture(ctx context.Context, userID uuid.UUID, filename string) (profileID uuid.UUID, previous string, err error)
	// ClearPicture detaches the picture and returns its filename.
	ClearPicture(ctx context.Context, userID uuid.UUID) (previous string, err error)

	// Delete removes the profile together with its projects.
	Delete(ctx context.Context, userID uuid.UUID) (Profile, error)
}
