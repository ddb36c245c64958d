package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"devhub/internal/domain/user"
	"devhub/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]user.User
	failAll error
	// raceOnCreate simulates a concurrent registration winning the insert.
	raceOnCreate bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[uuid.UUID]user.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	if r.raceOnCreate {
		return user.ErrEmailTaken
	}
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.byID[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return user.User{}, r.failAll
	}
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if r.failAll != nil {
		return false, r.failAll
	}
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

type fakeProvisioner struct {
	calls []uuid.UUID
	err   error
}

func (p *fakeProvisioner) Provision(_ context.Context, id uuid.UUID) (bool, error) {
	p.calls = append(p.calls, id)
	return p.err == nil, p.err
}

func newTestService(repo user.Repository, prov ProfileProvisioner) *Service {
	s := NewService(repo, jwt.NewHMACService("test-secret", time.Hour, "devhub"), prov, nil)
	s.cost = bcrypt.MinCost
	return s
}

func TestRegister_IssuesTokenAndProvisionsProfile(t *testing.T) {
	repo := newFakeUserRepo()
	prov := &fakeProvisioner{}
	s := newTestService(repo, prov)

	sess, err := s.Register(context.Background(), RegisterInput{Name: "Ana", Email: " Ana@X.com ", Password: "secret"})
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	require.Equal(t, "ana@x.com", sess.User.Email)
	require.Equal(t, "Ana", sess.User.Name)
	require.Empty(t, sess.User.PasswordHash)
	require.Equal(t, []uuid.UUID{sess.User.ID}, prov.calls)

	claims, err := s.tokens.ValidateToken(sess.Token)
	require.NoError(t, err)
	require.Equal(t, sess.User.ID, claims.UserID)
	require.Equal(t, "ana@x.com", claims.Email)
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	repo := newFakeUserRepo()
	s := newTestService(repo, nil)

	_, err := s.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret"})
	require.NoError(t, err)

	_, err = s.Register(context.Background(), RegisterInput{Name: "Other", Email: "ANA@x.com", Password: "secret2"})
	require.ErrorIs(t, err, ErrEmailAlreadyRegistered)
	require.Equal(t, 1, repo.count())
}

func TestRegister_ConcurrentInsertConflicts(t *testing.T) {
	repo := newFakeUserRepo()
	repo.raceOnCreate = true
	s := newTestService(repo, nil)

	_, err := s.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret"})
	require.ErrorIs(t, err, ErrEmailAlreadyRegistered)
}

func TestRegister_ProvisionFailureIsNotFatal(t *testing.T) {
	prov := &fakeProvisioner{err: errors.New("db down")}
	s := newTestService(newFakeUserRepo(), prov)

	sess, err := s.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret"})
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	require.Len(t, prov.calls, 1)
}

func TestRegister_InvalidInput(t *testing.T) {
	s := newTestService(newFakeUserRepo(), nil)
	cases := []RegisterInput{
		{Name: "", Email: "ana@x.com", Password: "secret"},
		{Name: "Ana", Email: "not-an-email", Password: "secret"},
		{Name: "Ana", Email: "ana@x.com", Password: "short"},
		{Name: "   ", Email: "ana@x.com", Password: "secret"},
	}
	for _, in := range cases {
		_, err := s.Register(context.Background(), in)
		require.ErrorIs(t, err, ErrInvalidInput, "%+v", in)
	}
}

func TestRegister_RepositoryFailure(t *testing.T) {
	repo := newFakeUserRepo()
	repo.failAll = errors.New("boom")
	s := newTestService(repo, nil)

	_, err := s.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret"})
	require.ErrorIs(t, err, ErrInternal)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	s := newTestService(repo, nil)
	reg, err := s.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret"})
	require.NoError(t, err)

	sess, err := s.Login(context.Background(), LoginInput{Email: "ANA@x.com", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, sess.User.ID)
	require.NotEmpty(t, sess.Token)
	require.Empty(t, sess.User.PasswordHash)
}

func TestLogin_UnknownEmailAndWrongPasswordLookTheSame(t *testing.T) {
	repo := newFakeUserRepo()
	s := newTestService(repo, nil)
	_, err := s.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "secret"})
	require.NoError(t, err)

	_, errWrong := s.Login(context.Background(), LoginInput{Email: "ana@x.com", Password: "nope"})
	_, errUnknown := s.Login(context.Background(), LoginInput{Email: "bob@x.com", Password: "secret"})
	_, errEmpty := s.Login(context.Background(), LoginInput{})

	require.ErrorIs(t, errWrong, ErrInvalidCredentials)
	require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	require.ErrorIs(t, errEmpty, ErrInvalidCredentials)
	require.Equal(t, errWrong.Error(), errUnknown.Error())
}
