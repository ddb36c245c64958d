package dto

import (
	"time"

	"devhub/internal/domain/project"

	"github.com/google/uuid"
)

type ProjectResponse struct {
	ID           uuid.UUID `json:"id"`
	DeveloperID  uuid.UUID `json:"developer_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Technologies []string  `json:"technologies"`
	DemoURL      string    `json:"demo_url"`
	CodeURL      string    `json:"code_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateProjectResponse struct {
	ProjectID uuid.UUID `json:"project_id"`
}

func NewProjectResponse(p project.Project) ProjectResponse {
	techs := p.Technologies
	if techs == nil {
		techs = []string{}
	}
	return ProjectResponse{
		ID:           p.ID,
		DeveloperID:  p.ProfileID,
		Name:         p.Name,
		Description:  p.Description,
		Technologies: techs,
		DemoURL:      p.DemoURL,
		CodeURL:      p.CodeURL,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func NewProjectResponses(ps []project.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewProjectResponse(p))
	}
	return out
}
