// Package memrepo provides in-memory repositories with the same contracts as
// the Postgres ones. It backs unit tests of the usecases and HTTP handlers.
package memrepo

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"devhub/internal/domain/profile"
	"devhub/internal/domain/project"
	"devhub/internal/domain/user"

	"github.com/google/uuid"
)

type Store struct {
	mu       sync.Mutex
	users    map[uuid.UUID]user.User
	profiles map[uuid.UUID]profile.Profile // keyed by user id
	projects map[uuid.UUID]project.Project
	now      func() time.Time

	// Fail, when set, is returned by every repository call.
	Fail error
}

func New() *Store {
	return &Store{
		users:    map[uuid.UUID]user.User{},
		profiles: map[uuid.UUID]profile.Profile{},
		projects: map[uuid.UUID]project.Project{},
		now:      tick(),
	}
}

// tick returns a strictly increasing clock so ordering by creation time is
// deterministic.
func tick() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Millisecond)
		return t
	}
}

func (s *Store) Users() *Users       { return &Users{s: s} }
func (s *Store) Profiles() *Profiles { return &Profiles{s: s} }
func (s *Store) Projects() *Projects { return &Projects{s: s} }

// ProjectCount returns the number of stored projects.
func (s *Store) ProjectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.projects)
}

func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

type Users struct{ s *Store }

var _ user.Repository = (*Users)(nil)

func (r *Users) Create(_ context.Context, u user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return r.s.Fail
	}
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.ErrEmailTaken
		}
	}
	u.CreatedAt = r.s.now()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = u
	return nil
}

func (r *Users) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return user.User{}, r.s.Fail
	}
	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return user.User{}, r.s.Fail
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *Users) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

type Profiles struct{ s *Store }

var _ profile.Repository = (*Profiles)(nil)

func (r *Profiles) withOwner(p profile.Profile) profile.Profile {
	u := r.s.users[p.UserID]
	p.Owner = profile.Owner{ID: u.ID, Name: u.Name, Email: u.Email}
	p.Skills = append([]string{}, p.Skills...)
	return p
}

func (r *Profiles) GetByUserID(_ context.Context, userID uuid.UUID) (profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return profile.Profile{}, r.s.Fail
	}
	p, ok := r.s.profiles[userID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return r.withOwner(p), nil
}

func (r *Profiles) List(_ context.Context, f profile.ListFilter) ([]profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	skill := strings.ToLower(strings.TrimSpace(f.Skill))

	out := make([]profile.Profile, 0)
	for _, p := range r.s.profiles {
		if p.Name == "" {
			continue
		}
		if q != "" && !matchesQuery(p, q) {
			continue
		}
		if skill != "" && !hasSkill(p.Skills, skill) {
			continue
		}
		out = append(out, r.withOwner(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if f.Offset >= len(out) {
		return []profile.Profile{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func matchesQuery(p profile.Profile, q string) bool {
	for _, v := range []string{p.Name, p.Title, p.Location, p.Bio, strings.Join(p.Skills, " ")} {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

func hasSkill(skills []string, skill string) bool {
	for _, s := range skills {
		if strings.EqualFold(s, skill) {
			return true
		}
	}
	return false
}

func (r *Profiles) Create(_ context.Context, userID uuid.UUID, f profile.Fields) (uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return uuid.Nil, r.s.Fail
	}
	if _, ok := r.s.profiles[userID]; ok {
		return uuid.Nil, profile.ErrAlreadyExists
	}
	p := r.insertLocked(userID)
	applyFields(&p, f)
	r.s.profiles[userID] = p
	return p.ID, nil
}

func (r *Profiles) Upsert(_ context.Context, userID uuid.UUID, f profile.Fields) (uuid.UUID, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return uuid.Nil, false, r.s.Fail
	}
	p, ok := r.s.profiles[userID]
	if !ok {
		p = r.insertLocked(userID)
	}
	applyFields(&p, f)
	p.UpdatedAt = r.s.now()
	r.s.profiles[userID] = p
	return p.ID, !ok, nil
}

func (r *Profiles) EnsureExists(_ context.Context, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return false, r.s.Fail
	}
	if _, ok := r.s.profiles[userID]; ok {
		return false, nil
	}
	u, ok := r.s.users[userID]
	if !ok {
		return false, nil
	}
	p := r.insertLocked(userID)
	p.Name = u.Name
	p.Email = u.Email
	r.s.profiles[userID] = p
	return true, nil
}

func (r *Profiles) ReplacePicture(_ context.Context, userID uuid.UUID, filename string) (uuid.UUID, string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return uuid.Nil, "", r.s.Fail
	}
	p, ok := r.s.profiles[userID]
	if !ok {
		u, uok := r.s.users[userID]
		if !uok {
			return uuid.Nil, "", profile.ErrNotFound
		}
		p = r.insertLocked(userID)
		p.Name = u.Name
		p.Email = u.Email
	}
	previous := p.Picture
	p.Picture = filename
	p.UpdatedAt = r.s.now()
	r.s.profiles[userID] = p
	return p.ID, previous, nil
}

func (r *Profiles) ClearPicture(_ context.Context, userID uuid.UUID) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return "", r.s.Fail
	}
	p, ok := r.s.profiles[userID]
	if !ok {
		return "", profile.ErrNotFound
	}
	if p.Picture == "" {
		return "", profile.ErrNoPicture
	}
	previous := p.Picture
	p.Picture = ""
	r.s.profiles[userID] = p
	return previous, nil
}

func (r *Profiles) Delete(_ context.Context, userID uuid.UUID) (profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return profile.Profile{}, r.s.Fail
	}
	p, ok := r.s.profiles[userID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	delete(r.s.profiles, userID)
	for id, pr := range r.s.projects {
		if pr.ProfileID == p.ID {
			delete(r.s.projects, id)
		}
	}
	return p, nil
}

func (r *Profiles) insertLocked(userID uuid.UUID) profile.Profile {
	now := r.s.now()
	return profile.Profile{
		ID:        uuid.New(),
		UserID:    userID,
		Skills:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func applyFields(p *profile.Profile, f profile.Fields) {
	p.Name = f.Name
	p.Title = f.Title
	p.Bio = f.Bio
	p.Location = f.Location
	p.Experience = f.Experience
	p.Email = f.Email
	p.Phone = f.Phone
	p.GithubURL = f.GithubURL
	p.LinkedinURL = f.LinkedinURL
	p.Skills = append([]string{}, f.Skills...)
}

type Projects struct{ s *Store }

var _ project.Repository = (*Projects)(nil)

func (r *Projects) profileIDLocked(ownerID uuid.UUID) (uuid.UUID, bool) {
	p, ok := r.s.profiles[ownerID]
	return p.ID, ok
}

func (r *Projects) Create(_ context.Context, ownerID uuid.UUID, f project.Fields) (project.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return project.Project{}, r.s.Fail
	}
	profileID, ok := r.profileIDLocked(ownerID)
	if !ok {
		return project.Project{}, project.ErrProfileRequired
	}
	now := r.s.now()
	p := project.Project{
		ID:        uuid.New(),
		ProfileID: profileID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyProjectFields(&p, f)
	r.s.projects[p.ID] = p
	return copyProject(p), nil
}

func (r *Projects) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]project.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	out := make([]project.Project, 0)
	profileID, ok := r.profileIDLocked(ownerID)
	if !ok {
		return out, nil
	}
	for _, p := range r.s.projects {
		if p.ProfileID == profileID {
			out = append(out, copyProject(p))
		}
	}
	sortProjects(out)
	return out, nil
}

func (r *Projects) ListByProfileIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]project.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return nil, r.s.Fail
	}
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make(map[uuid.UUID][]project.Project, len(ids))
	for _, p := range r.s.projects {
		if want[p.ProfileID] {
			out[p.ProfileID] = append(out[p.ProfileID], copyProject(p))
		}
	}
	for k := range out {
		sortProjects(out[k])
	}
	return out, nil
}

func (r *Projects) Update(_ context.Context, ownerID, id uuid.UUID, f project.Fields) (project.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return project.Project{}, r.s.Fail
	}
	p, ok := r.ownedLocked(ownerID, id)
	if !ok {
		return project.Project{}, project.ErrNotFound
	}
	applyProjectFields(&p, f)
	p.UpdatedAt = r.s.now()
	r.s.projects[id] = p
	return copyProject(p), nil
}

func (r *Projects) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail != nil {
		return r.s.Fail
	}
	if _, ok := r.ownedLocked(ownerID, id); !ok {
		return project.ErrNotFound
	}
	delete(r.s.projects, id)
	return nil
}

func (r *Projects) ownedLocked(ownerID, id uuid.UUID) (project.Project, bool) {
	p, ok := r.s.projects[id]
	if !ok {
		return project.Project{}, false
	}
	profileID, ok := r.profileIDLocked(ownerID)
	if !ok || p.ProfileID != profileID {
		return project.Project{}, false
	}
	return p, true
}

func applyProjectFields(p *project.Project, f project.Fields) {
	p.Name = f.Name
	p.Description = f.Description
	p.Technologies = append([]string{}, f.Technologies...)
	p.DemoURL = f.DemoURL
	p.CodeURL = f.CodeURL
}

func copyProject(p project.Project) project.Project {
	p.Technologies = append([]string{}, p.Technologies...)
	return p
}

func sortProjects(ps []project.Project) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].CreatedAt.After(ps[j].CreatedAt) })
}
