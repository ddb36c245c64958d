package auth

import (
	"context"
	"errors"
	"strings"

	"devhub/internal/domain/user"
	"devhub/internal/pkg/jwt"
	applog "devhub/internal/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInternal               = errors.New("internal error")
)

type RegisterInput struct {
	Name     string `validate:"required,max=120"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string
	Password string
}

// Session is what a successful register or login hands back to the client.
type Session struct {
	Token string
	User  user.User
}

// ProfileProvisioner creates the placeholder profile of a new account.
type ProfileProvisioner interface {
	Provision(ctx context.Context, userID uuid.UUID) (bool, error)
}

type Usecase interface {
	Register(ctx context.Context, in RegisterInput) (Session, error)
	Login(ctx context.Context, in LoginInput) (Session, error)
}

type Service struct {
	users    user.Repository
	tokens   jwt.Service
	profiles ProfileProvisioner
	logger   *zap.Logger
	validate *validator.Validate
	cost     int
}

func NewService(users user.Repository, tokens jwt.Service, profiles ProfileProvisioner, logger *zap.Logger) *Service {
	logger = applog.OrNop(logger)
	return &Service{
		users:    users,
		tokens:   tokens,
		profiles: profiles,
		logger:   logger.Named("auth"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		cost:     bcrypt.DefaultCost,
	}
}

var _ Usecase = (*Service)(nil)

func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return Session{}, ErrInvalidInput
	}

	exists, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return Session{}, ErrInternal
	}
	if exists {
		return Session{}, ErrEmailAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return Session{}, ErrInternal
	}

	u := user.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return Session{}, ErrEmailAlreadyRegistered
		}
		return Session{}, ErrInternal
	}

	created, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return Session{}, ErrInternal
	}

	token, err := s.tokens.GenerateToken(created.ID, created.Email)
	if err != nil {
		return Session{}, ErrInternal
	}

	s.provisionProfile(ctx, created.ID)

	return Session{Token: token, User: sanitizeUser(created)}, nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return Session{}, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(u.ID, u.Email)
	if err != nil {
		return Session{}, ErrInternal
	}
	return Session{Token: token, User: sanitizeUser(u)}, nil
}

// provisionProfile is best-effort: registration succeeds even when the
// placeholder profile cannot be created.
func (s *Service) provisionProfile(ctx context.Context, userID uuid.UUID) {
	if s.profiles == nil {
		return
	}
	if _, err := s.profiles.Provision(ctx, userID); err != nil {
		s.logger.Warn("auto-create profile failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
