package client

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the authenticated state kept between runs.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (s Session) Valid() bool { return s.Token != "" }

type Owner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Developer struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Name              string    `json:"name"`
	Title             string    `json:"title"`
	Bio               string    `json:"bio"`
	Location          string    `json:"location"`
	Experience        int       `json:"experience"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	GithubURL         string    `json:"github_url"`
	LinkedinURL       string    `json:"linkedin_url"`
	ProfilePicture    *string   `json:"profile_picture"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
	Skills            []string  `json:"skills"`
	User              Owner     `json:"user"`
	Projects          []Project `json:"projects"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type Project struct {
	ID           string    `json:"id"`
	DeveloperID  string    `json:"developer_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Technologies []string  `json:"technologies"`
	DemoURL      string    `json:"demo_url"`
	CodeURL      string    `json:"code_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ProfileInput struct {
	Name        string   `json:"name"`
	Title       string   `json:"title,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	Location    string   `json:"location,omitempty"`
	Experience  int      `json:"experience"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	GithubURL   string   `json:"github_url,omitempty"`
	LinkedinURL string   `json:"linkedin_url,omitempty"`
	Skills      []string `json:"skills"`
}

type ProjectInput struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	DemoURL      string   `json:"demo_url,omitempty"`
	CodeURL      string   `json:"code_url,omitempty"`
}

type SaveResult struct {
	DeveloperID string `json:"developer_id"`
	Created     bool   `json:"created"`
}

type Picture struct {
	ProfilePicture    string `json:"profile_picture"`
	ProfilePictureURL string `json:"profile_picture_url"`
	DeveloperID       string `json:"developer_id"`
}

type ListOptions struct {
	Query  string
	Skill  string
	Limit  int
	Offset int
}

// EventType names a change pushed by the server.
type EventType string

const (
	EventProfileUpdated EventType = "profile.updated"
	EventProfileDeleted EventType = "profile.deleted"
	EventPictureUpdated EventType = "picture.updated"
	EventPictureRemoved EventType = "picture.removed"
	EventProjectCreated EventType = "project.created"
	EventProjectUpdated EventType = "project.updated"
	EventProjectDeleted EventType = "project.deleted"
)

type Event struct {
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
	ProjectID string    `json:"project_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
