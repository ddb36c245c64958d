package project

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID           uuid.UUID
	ProfileID    uuid.UUID
	Name         string
	Description  string
	Technologies []string
	DemoURL      string
	CodeURL      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Fields struct {
	Name         string
	Description  string
	Technologies []string
	DemoURL      string
	CodeURL      string
}
