package dto

import (
	"time"

	ucprofile "devhub/internal/usecase/profile"

	"github.com/google/uuid"
)

type OwnerResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type DeveloperResponse struct {
	ID                uuid.UUID         `json:"id"`
	UserID            uuid.UUID         `json:"user_id"`
	Name              string            `json:"name"`
	Title             string            `json:"title"`
	Bio               string            `json:"bio"`
	Location          string            `json:"location"`
	Experience        int               `json:"experience"`
	Email             string            `json:"email"`
	Phone             string            `json:"phone"`
	GithubURL         string            `json:"github_url"`
	LinkedinURL       string            `json:"linkedin_url"`
	ProfilePicture    *string           `json:"profile_picture"`
	ProfilePictureURL *string           `json:"profile_picture_url"`
	Skills            []string          `json:"skills"`
	User              OwnerResponse     `json:"user"`
	Projects          []ProjectResponse `json:"projects"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

type SaveProfileResponse struct {
	DeveloperID uuid.UUID `json:"developer_id"`
	Created     bool      `json:"created"`
}

type PictureResponse struct {
	ProfilePicture    string    `json:"profile_picture"`
	ProfilePictureURL string    `json:"profile_picture_url"`
	DeveloperID       uuid.UUID `json:"developer_id"`
}

func NewDeveloperResponse(d ucprofile.Developer) DeveloperResponse {
	p := d.Profile
	res := DeveloperResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Title:       p.Title,
		Bio:         p.Bio,
		Location:    p.Location,
		Experience:  p.Experience,
		Email:       p.Email,
		Phone:       p.Phone,
		GithubURL:   p.GithubURL,
		LinkedinURL: p.LinkedinURL,
		Skills:      p.Skills,
		User:        OwnerResponse{ID: p.Owner.ID, Name: p.Owner.Name, Email: p.Owner.Email},
		Projects:    NewProjectResponses(d.Projects),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if res.Skills == nil {
		res.Skills = []string{}
	}
	if p.HasPicture() {
		name, url := p.Picture, d.PictureURL
		res.ProfilePicture = &name
		res.ProfilePictureURL = &url
	}
	return res
}

func NewDeveloperResponses(ds []ucprofile.Developer) []DeveloperResponse {
	out := make([]DeveloperResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, NewDeveloperResponse(d))
	}
	return out
}
