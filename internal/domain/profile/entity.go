package profile

import (
	"time"

	"github.com/google/uuid"
)

// Owner is the user account a profile belongs to.
type Owner struct {
	ID    uuid.UUID
	Name  string
	Email string
}

type Profile struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Title       string
	Bio         string
	Location    string
	Experience  int
	Email       string
	Phone       string
	GithubURL   string
	LinkedinURL string
	Picture     string
	Skills      []string
	Owner       Owner
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasPicture reports whether a picture file is attached.
func (p Profile) HasPicture() bool {
	return p.Picture != ""
}

// Fields are the owner-editable attributes of a profile.
type Fields struct {
	Name        string
	Title       string
	Bio         string
	Location    string
	Experience  int
	Email       string
	Phone       string
	GithubURL   string
	LinkedinURL string
	Skills      []string
}

type ListFilter struct {
	Query  string
	Skill  string
	Limit  int
	Offset int
}
