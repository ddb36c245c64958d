package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"devhub/internal/domain/picture"
	"devhub/internal/domain/profile"
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
	ErrNotFound        = errors.New("profile not found")
	ErrAlreadyExists   = errors.New("profile already exists")
	ErrNoPicture       = errors.New("profile has no picture")
	ErrPictureTooLarge = errors.New("picture too large")
	ErrInvalidPicture  = errors.New("invalid picture")
	ErrInternal        = errors.New("internal error")
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// Developer is a profile as shown in the directory.
type Developer struct {
	Profile    profile.Profile
	PictureURL string
	Projects   []project.Project
}

type ListParams struct {
	Query  string
	Skill  string
	Limit  int
	Offset int
}

type Fields struct {
	Name        string   `validate:"required,max=120"`
	Title       string   `validate:"max=120"`
	Bio         string   `validate:"max=5000"`
	Location    string   `validate:"max=120"`
	Experience  int      `validate:"gte=0,lte=80"`
	Email       string   `validate:"omitempty,email,max=254"`
	Phone       string   `validate:"max=40"`
	GithubURL   string   `validate:"omitempty,http_url,max=500"`
	LinkedinURL string   `validate:"omitempty,http_url,max=500"`
	Skills      []string `validate:"max=100,dive,max=60"`
}

type Usecase interface {
	Get(ctx context.Context, userID uuid.UUID) (Developer, error)
	List(ctx context.Context, params ListParams) ([]Developer, error)
	Me(ctx context.Context, userID uuid.UUID) (Developer, error)
	Provision(ctx context.Context, userID uuid.UUID) (bool, error)
	Create(ctx context.Context, userID uuid.UUID, f Fields) (uuid.UUID, error)
	Upsert(ctx context.Context, userID uuid.UUID, f Fields) (uuid.UUID, bool, error)
	Delete(ctx context.Context, userID uuid.UUID) error
	UploadPicture(ctx context.Context, userID uuid.UUID, in PictureInput) (PictureResult, error)
	RemovePicture(ctx context.Context, userID uuid.UUID) error
}

type Deps struct {
	Profiles  profile.Repository
	Projects  project.Repository
	Pictures  picture.Storage
	Discarder picture.Discarder
	Cache     directory.Cache
	CacheTTL  time.Duration
	Events    events.Publisher
	Logger    *zap.Logger
}

type PictureLimits struct {
	MaxBytes     int64
	AllowedTypes []string
}

type Service struct {
	profiles  profile.Repository
	projects  project.Repository
	pictures  picture.Storage
	discarder picture.Discarder
	cache     directory.Cache
	cacheTTL  time.Duration
	events    events.Publisher
	logger    *zap.Logger
	validate  *validator.Validate

	limits  PictureLimits
	newName func(ext string) string
}

func NewService(d Deps, limits PictureLimits) *Service {
	d.Logger = applog.OrNop(d.Logger)
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if limits.MaxBytes <= 0 {
		limits.MaxBytes = 5 * 1024 * 1024
	}
	if len(limits.AllowedTypes) == 0 {
		limits.AllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	}
	return &Service{
		profiles:  d.Profiles,
		projects:  d.Projects,
		pictures:  d.Pictures,
		discarder: d.Discarder,
		cache:     d.Cache,
		cacheTTL:  d.CacheTTL,
		events:    d.Events,
		logger:    d.Logger.Named("profile"),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		limits:    limits,
		newName: func(ext string) string {
			return "profile-" + uuid.NewString() + ext
		},
	}
}

var _ Usecase = (*Service)(nil)

func (s *Service) Get(ctx context.Context, userID uuid.UUID) (Developer, error) {
	key := directory.ProfileKey(userID)
	var cached Developer
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return Developer{}, mapRepoError(err)
	}

	devs, err := s.enrich(ctx, []profile.Profile{p})
	if err != nil {
		return Developer{}, err
	}

	s.cacheSet(ctx, key, devs[0])
	return devs[0], nil
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Developer, error) {
	if params.Limit < 0 || params.Limit > maxListLimit || params.Offset < 0 {
		return nil, ErrInvalidInput
	}
	if params.Limit == 0 {
		params.Limit = defaultListLimit
	}

	key := directory.ListKey(params.Query, params.Skill, params.Limit, params.Offset)
	var cached []Developer
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	ps, err := s.profiles.List(ctx, profile.ListFilter{
		Query:  params.Query,
		Skill:  params.Skill,
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		s.logger.Error("list profiles failed", zap.Error(err))
		return nil, ErrInternal
	}

	devs, err := s.enrich(ctx, ps)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, key, devs)
	return devs, nil
}

// Provision creates the placeholder profile of userID when none exists and
// reports whether it did. A created profile invalidates cached listings and
// publishes profile.updated.
func (s *Service) Provision(ctx context.Context, userID uuid.UUID) (bool, error) {
	created, err := s.profiles.EnsureExists(ctx, userID)
	if err != nil {
		return false, err
	}
	if created {
		s.changed(ctx, events.ProfileEvent(events.ProfileUpdated, userID))
	}
	return created, nil
}

// Me returns the caller's own profile, creating a placeholder first when the
// caller has none.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (Developer, error) {
	if _, err := s.Provision(ctx, userID); err != nil {
		s.logger.Warn("auto-create profile failed", zap.String("user_id", userID.String()), zap.Error(err))
	}

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return Developer{}, mapRepoError(err)
	}
	devs, err := s.enrich(ctx, []profile.Profile{p})
	if err != nil {
		return Developer{}, err
	}
	return devs[0], nil
}

// Create adds a profile for userID and fails with ErrAlreadyExists when the
// user already has one.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, f Fields) (uuid.UUID, error) {
	pf, err := s.normalize(f)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := s.profiles.Create(ctx, userID, pf)
	if err != nil {
		return uuid.Nil, mapRepoError(err)
	}

	s.changed(ctx, events.ProfileEvent(events.ProfileUpdated, userID))
	return id, nil
}

// Upsert creates the profile of userID or overwrites its editable fields.
// Skills are replaced as a whole.
func (s *Service) Upsert(ctx context.Context, userID uuid.UUID, f Fields) (uuid.UUID, bool, error) {
	pf, err := s.normalize(f)
	if err != nil {
		return uuid.Nil, false, err
	}

	id, created, err := s.profiles.Upsert(ctx, userID, pf)
	if err != nil {
		return uuid.Nil, false, mapRepoError(err)
	}

	s.changed(ctx, events.ProfileEvent(events.ProfileUpdated, userID))
	return id, created, nil
}

// Delete removes the caller's profile and projects, then discards the picture.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID) error {
	p, err := s.profiles.Delete(ctx, userID)
	if err != nil {
		return mapRepoError(err)
	}
	s.discard(p.Picture)
	s.changed(ctx, events.ProfileEvent(events.ProfileDeleted, userID))
	return nil
}

func (s *Service) normalize(f Fields) (profile.Fields, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Title = strings.TrimSpace(f.Title)
	f.Bio = strings.TrimSpace(f.Bio)
	f.Location = strings.TrimSpace(f.Location)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Phone = strings.TrimSpace(f.Phone)
	f.GithubURL = strings.TrimSpace(f.GithubURL)
	f.LinkedinURL = strings.TrimSpace(f.LinkedinURL)
	f.Skills = strlist.Normalize(f.Skills)

	if err := s.validate.Struct(f); err != nil {
		return profile.Fields{}, ErrInvalidInput
	}

	return profile.Fields{
		Name:        f.Name,
		Title:       f.Title,
		Bio:         f.Bio,
		Location:    f.Location,
		Experience:  f.Experience,
		Email:       f.Email,
		Phone:       f.Phone,
		GithubURL:   f.GithubURL,
		LinkedinURL: f.LinkedinURL,
		Skills:      f.Skills,
	}, nil
}

func (s *Service) enrich(ctx context.Context, ps []profile.Profile) ([]Developer, error) {
	ids := make([]uuid.UUID, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.ID)
	}

	byProfile, err := s.projects.ListByProfileIDs(ctx, ids)
	if err != nil {
		s.logger.Error("list projects failed", zap.Error(err))
		return nil, ErrInternal
	}

	out := make([]Developer, 0, len(ps))
	for _, p := range ps {
		projects := byProfile[p.ID]
		if projects == nil {
			projects = []project.Project{}
		}
		out = append(out, Developer{
			Profile:    p,
			PictureURL: s.pictureURL(p.Picture),
			Projects:   projects,
		})
	}
	return out, nil
}

func (s *Service) pictureURL(name string) string {
	if name == "" || s.pictures == nil {
		return ""
	}
	return s.pictures.URL(name)
}

// changed invalidates cached directory data and notifies subscribers.
func (s *Service) changed(ctx context.Context, e events.Event) {
	directory.Invalidate(ctx, s.cache, e.UserID, s.logger)
	s.events.Publish(ctx, e)
}

func (s *Service) discard(name string) {
	if name == "" || s.discarder == nil {
		return
	}
	s.discarder.Discard(name)
}

func (s *Service) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.GetJSON(ctx, key, out)
	if err != nil {
		s.logger.Debug("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *Service) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, v, s.cacheTTL); err != nil {
		s.logger.Debug("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, profile.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, profile.ErrAlreadyExists):
		return ErrAlreadyExists
	case errors.Is(err, profile.ErrNoPicture):
		return ErrNoPicture
	default:
		return errors.Join(ErrInternal, err)
	}
}
