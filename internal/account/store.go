package account

import (
	"context"
	"errors"
)

var (
	// ErrConflict is returned when an insert loses a uniqueness race. The
	// conflicting row exists by then, so callers should retry as a reauth.
	ErrConflict = errors.New("account: uniqueness conflict")
	// ErrNotFound is returned by updates against a missing record. Lookups
	// return (nil, nil) for missing records instead.
	ErrNotFound = errors.New("account: not found")
)

// Store defines persistence operations for users, their provider
// sub-accounts and the owned resources imported from providers.
// Lookups return (nil, nil) when nothing matches.
type Store interface {
	FindByProviderUID(ctx context.Context, provider Provider, uid string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, u *User) (*User, error)
	UpdateUser(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id string) error
	SetProfileImage(ctx context.Context, userID, objectKey string) error
	SetStackexchangeSynced(ctx context.Context, userID string, synced bool) error

	GithubAccountByUser(ctx context.Context, userID string) (*GithubAccount, error)
	SaveGithubAccount(ctx context.Context, a *GithubAccount) (*GithubAccount, error)
	LinkedinByUser(ctx context.Context, userID string) (*Linkedin, error)
	SaveLinkedin(ctx context.Context, l *Linkedin) (*Linkedin, error)
	StackexchangeByUser(ctx context.Context, userID string) (*Stackexchange, error)
	SaveStackexchange(ctx context.Context, s *Stackexchange) (*Stackexchange, error)
	DeleteStackexchange(ctx context.Context, userID string) error

	// Sync* reconcile the stored set of owned resources with the latest
	// provider fetch: records are upserted by external key and records whose
	// key is absent from the fetch are deleted.
	SyncRepos(ctx context.Context, accountID string, repos []Repo) error
	SyncOrganizations(ctx context.Context, accountID string, orgs []Organization) error
	SyncPositions(ctx context.Context, accountID string, positions []Position) error
	SyncEducations(ctx context.Context, accountID string, educations []Education) error

	ReposByAccount(ctx context.Context, accountID string) ([]Repo, error)
	OrganizationsByAccount(ctx context.Context, accountID string) ([]Organization, error)
	PositionsByAccount(ctx context.Context, accountID string) ([]Position, error)
	EducationsByAccount(ctx context.Context, accountID string) ([]Education, error)
}
