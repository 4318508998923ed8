package account

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"
)

// MemoryStore is an in-memory Store used for unit tests. It enforces the same
// uniqueness rules as the Mongo indexes so resolver race behavior is testable.
type MemoryStore struct {
	mu             sync.RWMutex
	users          map[string]*User
	githubAccounts map[string]*GithubAccount // by user id
	linkedins      map[string]*Linkedin
	stackexchanges map[string]*Stackexchange
	repos          map[string]map[string]*ownedEntry[Repo] // account id -> external key
	orgs           map[string]map[string]*ownedEntry[Organization]
	positions      map[string]map[string]*ownedEntry[Position]
	educations     map[string]map[string]*ownedEntry[Education]
}

// ownedEntry keeps the store-owned identity of a synced resource so an
// in-place update preserves id and creation time.
type ownedEntry[T any] struct {
	id      string
	created time.Time
	updated time.Time
	item    T
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:          make(map[string]*User),
		githubAccounts: make(map[string]*GithubAccount),
		linkedins:      make(map[string]*Linkedin),
		stackexchanges: make(map[string]*Stackexchange),
		repos:          make(map[string]map[string]*ownedEntry[Repo]),
		orgs:           make(map[string]map[string]*ownedEntry[Organization]),
		positions:      make(map[string]map[string]*ownedEntry[Position]),
		educations:     make(map[string]map[string]*ownedEntry[Education]),
	}
}

func (m *MemoryStore) FindByProviderUID(ctx context.Context, provider Provider, uid string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		switch provider {
		case ProviderGithub:
			if u.GithubUID != "" && u.GithubUID == uid {
				cp := *u
				return &cp, nil
			}
		case ProviderLinkedin:
			if u.LinkedinUID != "" && u.LinkedinUID == uid {
				cp := *u
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, u *User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email ||
			(u.GithubUID != "" && existing.GithubUID == u.GithubUID) ||
			(u.LinkedinUID != "" && existing.LinkedinUID == u.LinkedinUID) {
			return nil, fmt.Errorf("insert user: %w", ErrConflict)
		}
	}
	if u.ID == "" {
		u.ID = xid.New().String()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	m.users[u.ID] = &cp
	return u, nil
}

func (m *MemoryStore) UpdateUser(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MemoryStore) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	if gh, ok := m.githubAccounts[id]; ok {
		delete(m.repos, gh.ID)
		delete(m.orgs, gh.ID)
	}
	if li, ok := m.linkedins[id]; ok {
		delete(m.positions, li.ID)
		delete(m.educations, li.ID)
	}
	delete(m.githubAccounts, id)
	delete(m.linkedins, id)
	delete(m.stackexchanges, id)
	delete(m.users, id)
	return nil
}

func (m *MemoryStore) SetProfileImage(ctx context.Context, userID, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.ProfileImage = objectKey
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) SetStackexchangeSynced(ctx context.Context, userID string, synced bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.StackexchangeSynced = synced
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) GithubAccountByUser(ctx context.Context, userID string) (*GithubAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.githubAccounts[userID]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryStore) SaveGithubAccount(ctx context.Context, a *GithubAccount) (*GithubAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := m.githubAccounts[a.UserID]; ok {
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
		// zero optional fields are omitted from the Mongo $set document and
		// keep their stored value, so preserve them here too
		if a.Bio == "" {
			a.Bio = existing.Bio
		}
		if a.Company == "" {
			a.Company = existing.Company
		}
	} else {
		a.ID = xid.New().String()
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	cp := *a
	m.githubAccounts[a.UserID] = &cp
	return a, nil
}

func (m *MemoryStore) LinkedinByUser(ctx context.Context, userID string) (*Linkedin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.linkedins[userID]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryStore) SaveLinkedin(ctx context.Context, l *Linkedin) (*Linkedin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := m.linkedins[l.UserID]; ok {
		l.ID = existing.ID
		l.CreatedAt = existing.CreatedAt
		if l.Headline == "" {
			l.Headline = existing.Headline
		}
		if l.Industry == "" {
			l.Industry = existing.Industry
		}
		if l.PublicProfileURL == "" {
			l.PublicProfileURL = existing.PublicProfileURL
		}
		if len(l.Skills) == 0 {
			l.Skills = existing.Skills
		}
	} else {
		l.ID = xid.New().String()
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	cp := *l
	m.linkedins[l.UserID] = &cp
	return l, nil
}

func (m *MemoryStore) StackexchangeByUser(ctx context.Context, userID string) (*Stackexchange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.stackexchanges[userID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryStore) SaveStackexchange(ctx context.Context, s *Stackexchange) (*Stackexchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := m.stackexchanges[s.UserID]; ok {
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
		if s.Nickname == "" {
			s.Nickname = existing.Nickname
		}
		if s.DisplayName == "" {
			s.DisplayName = existing.DisplayName
		}
		if s.ProfileURL == "" {
			s.ProfileURL = existing.ProfileURL
		}
		if s.Age == 0 {
			s.Age = existing.Age
		}
		if len(s.Badges) == 0 {
			s.Badges = existing.Badges
		}
	} else {
		s.ID = xid.New().String()
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	cp := *s
	m.stackexchanges[s.UserID] = &cp
	return s, nil
}

func (m *MemoryStore) DeleteStackexchange(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stackexchanges, userID)
	return nil
}

func (m *MemoryStore) SyncRepos(ctx context.Context, accountID string, repos []Repo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	syncSet(m.repos, accountID, repos, func(r Repo) string { return r.ExternalKey })
	return nil
}

func (m *MemoryStore) SyncOrganizations(ctx context.Context, accountID string, orgs []Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	syncSet(m.orgs, accountID, orgs, func(o Organization) string { return o.ExternalKey })
	return nil
}

func (m *MemoryStore) SyncPositions(ctx context.Context, accountID string, positions []Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	syncSet(m.positions, accountID, positions, func(p Position) string { return p.ExternalKey })
	return nil
}

func (m *MemoryStore) SyncEducations(ctx context.Context, accountID string, educations []Education) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	syncSet(m.educations, accountID, educations, func(e Education) string { return e.ExternalKey })
	return nil
}

func (m *MemoryStore) ReposByAccount(ctx context.Context, accountID string) ([]Repo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return listSet(m.repos, accountID, func(r *Repo, id string, created, updated time.Time) {
		r.ID, r.AccountID, r.CreatedAt, r.UpdatedAt = id, accountID, created, updated
	}), nil
}

func (m *MemoryStore) OrganizationsByAccount(ctx context.Context, accountID string) ([]Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return listSet(m.orgs, accountID, func(o *Organization, id string, created, updated time.Time) {
		o.ID, o.AccountID, o.CreatedAt, o.UpdatedAt = id, accountID, created, updated
	}), nil
}

func (m *MemoryStore) PositionsByAccount(ctx context.Context, accountID string) ([]Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return listSet(m.positions, accountID, func(p *Position, id string, created, updated time.Time) {
		p.ID, p.AccountID, p.CreatedAt, p.UpdatedAt = id, accountID, created, updated
	}), nil
}

func (m *MemoryStore) EducationsByAccount(ctx context.Context, accountID string) ([]Education, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return listSet(m.educations, accountID, func(e *Education, id string, created, updated time.Time) {
		e.ID, e.AccountID, e.CreatedAt, e.UpdatedAt = id, accountID, created, updated
	}), nil
}

// syncSet upserts items by external key and prunes keys absent from the
// latest fetch, matching the Mongo implementation's reconciliation.
func syncSet[T any](sets map[string]map[string]*ownedEntry[T], accountID string, items []T, key func(T) string) {
	set, ok := sets[accountID]
	if !ok {
		set = make(map[string]*ownedEntry[T])
		sets[accountID] = set
	}
	now := time.Now().UTC()
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		k := key(it)
		seen[k] = true
		if existing, ok := set[k]; ok {
			existing.item = it
			existing.updated = now
			continue
		}
		set[k] = &ownedEntry[T]{id: xid.New().String(), created: now, updated: now, item: it}
	}
	for k := range set {
		if !seen[k] {
			delete(set, k)
		}
	}
}

func listSet[T any](sets map[string]map[string]*ownedEntry[T], accountID string, stamp func(*T, string, time.Time, time.Time)) []T {
	set := sets[accountID]
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		e := set[k]
		item := e.item
		stamp(&item, e.id, e.created, e.updated)
		out = append(out, item)
	}
	return out
}
