package project

import (
	"context"
	"errors"
	"strings"

	"devhub/internal/domain/project"
	"devhub/internal/events"
	applog "devhub/internal/pkg/logger"
	"devhub/internal/pkg/strlist"
	"devhub/internal/usecase/directory"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("project not found")
	ErrProfileRequired = errors.New("create a profile before adding projects")
	ErrInternal        = errors.New("internal error")
)

type Fields struct {
	Name         string   `validate:"required,max=200"`
	Description  string   `validate:"required,max=5000"`
	Technologies []string `validate:"max=50,dive,max=60"`
	DemoURL      string   `validate:"omitempty,http_url,max=500"`
	CodeURL      string   `validate:"omitempty,http_url,max=500"`
}

type Usecase interface {
	Add(ctx context.Context, ownerID uuid.UUID, f Fields) (project.Project, error)
	ListMine(ctx context.Context, ownerID uuid.UUID) ([]project.Project, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, f Fields) (project.Project, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type Service struct {
	projects project.Repository
	cache    directory.Cache
	events   events.Publisher
	logger   *zap.Logger
	validate *validator.Validate
}

func NewService(projects project.Repository, cache directory.Cache, publisher events.Publisher, logger *zap.Logger) *Service {
	logger = applog.OrNop(logger)
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		projects: projects,
		cache:    cache,
		events:   publisher,
		logger:   logger.Named("project"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

var _ Usecase = (*Service)(nil)

// Add creates a project under the caller's profile.
func (s *Service) Add(ctx context.Context, ownerID uuid.UUID, f Fields) (project.Project, error) {
	pf, err := s.normalize(f)
	if err != nil {
		return project.Project{}, err
	}

	p, err := s.projects.Create(ctx, ownerID, pf)
	if err != nil {
		return project.Project{}, s.mapError(err)
	}

	s.changed(ctx, events.ProjectEvent(events.ProjectCreated, ownerID, p.ID))
	return p, nil
}

func (s *Service) ListMine(ctx context.Context, ownerID uuid.UUID) ([]project.Project, error) {
	ps, err := s.projects.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.mapError(err)
	}
	if ps == nil {
		ps = []project.Project{}
	}
	return ps, nil
}

// Update overwrites every editable field of a project the caller owns.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, f Fields) (project.Project, error) {
	pf, err := s.normalize(f)
	if err != nil {
		return project.Project{}, err
	}

	p, err := s.projects.Update(ctx, ownerID, id, pf)
	if err != nil {
		return project.Project{}, s.mapError(err)
	}

	s.changed(ctx, events.ProjectEvent(events.ProjectUpdated, ownerID, id))
	return p, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.projects.Delete(ctx, ownerID, id); err != nil {
		return s.mapError(err)
	}
	s.changed(ctx, events.ProjectEvent(events.ProjectDeleted, ownerID, id))
	return nil
}

func (s *Service) normalize(f Fields) (project.Fields, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.DemoURL = strings.TrimSpace(f.DemoURL)
	f.CodeURL = strings.TrimSpace(f.CodeURL)
	f.Technologies = strlist.Normalize(f.Technologies)

	if err := s.validate.Struct(f); err != nil {
		return project.Fields{}, ErrInvalidInput
	}

	return project.Fields{
		Name:         f.Name,
		Description:  f.Description,
		Technologies: f.Technologies,
		DemoURL:      f.DemoURL,
		CodeURL:      f.CodeURL,
	}, nil
}

func (s *Service) changed(ctx context.Context, e events.Event) {
	directory.Invalidate(ctx, s.cache, e.UserID, s.logger)
	s.events.Publish(ctx, e)
}

func (s *Service) mapError(err error) error {
	switch {
	case errors.Is(err, project.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, project.ErrProfileRequired):
		return ErrProfileRequired
	default:
		s.logger.Error("project repository failed", zap.Error(err))
		return errors.Join(ErrInternal, err)
	}
}
