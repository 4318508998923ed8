package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreateUserConflicts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, &User{Email: "a@example.com", Name: "A", GithubUID: "gh-1", MainProvider: ProviderGithub})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	_, err = s.CreateUser(ctx, &User{Email: "b@example.com", Name: "B", GithubUID: "gh-1", MainProvider: ProviderGithub})
	require.ErrorIs(t, err, ErrConflict)

	_, err = s.CreateUser(ctx, &User{Email: "a@example.com", Name: "C", LinkedinUID: "li-1", MainProvider: ProviderLinkedin})
	require.ErrorIs(t, err, ErrConflict)

	found, err := s.FindByProviderUID(ctx, ProviderGithub, "gh-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, u.ID, found.ID)

	missing, err := s.FindByProviderUID(ctx, ProviderLinkedin, "li-404")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestMemoryStoreSyncReconcilesSet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	initial := []Repo{
		{ExternalKey: "A", Name: "alpha"},
		{ExternalKey: "B", Name: "bravo"},
		{ExternalKey: "C", Name: "charlie"},
	}
	require.NoError(t, s.SyncRepos(ctx, "acct-1", initial))

	stored, err := s.ReposByAccount(ctx, "acct-1")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	idByKey := map[string]string{}
	for _, r := range stored {
		idByKey[r.ExternalKey] = r.ID
	}

	// B gone upstream, D new, A renamed
	next := []Repo{
		{ExternalKey: "A", Name: "alpha-renamed"},
		{ExternalKey: "C", Name: "charlie"},
		{ExternalKey: "D", Name: "delta"},
	}
	require.NoError(t, s.SyncRepos(ctx, "acct-1", next))

	stored, err = s.ReposByAccount(ctx, "acct-1")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	got := map[string]Repo{}
	for _, r := range stored {
		got[r.ExternalKey] = r
	}
	require.NotContains(t, got, "B")
	require.Contains(t, got, "D")
	require.Equal(t, "alpha-renamed", got["A"].Name)
	// in-place update keeps the stored identity
	require.Equal(t, idByKey["A"], got["A"].ID)
}

func TestMemoryStoreSyncIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	orgs := []Organization{
		{ExternalKey: "1", Name: "acme"},
		{ExternalKey: "2", Name: "globex"},
	}
	require.NoError(t, s.SyncOrganizations(ctx, "acct-1", orgs))
	first, err := s.OrganizationsByAccount(ctx, "acct-1")
	require.NoError(t, err)

	require.NoError(t, s.SyncOrganizations(ctx, "acct-1", orgs))
	second, err := s.OrganizationsByAccount(ctx, "acct-1")
	require.NoError(t, err)

	require.Len(t, second, 2)
	require.Equal(t, first[0].ID, second[0].ID)
	require.Equal(t, first[1].ID, second[1].ID)
}

func TestMemoryStoreSubAccountUpsertOncePerUser(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a1, err := s.SaveGithubAccount(ctx, &GithubAccount{UserID: "u1", Token: "t1", Nickname: "octo"})
	require.NoError(t, err)

	a2, err := s.SaveGithubAccount(ctx, &GithubAccount{UserID: "u1", Token: "t2", Nickname: "octo"})
	require.NoError(t, err)
	require.Equal(t, a1.ID, a2.ID, "save must update, not create a second sub-account")
	require.Equal(t, "t2", a2.Token)
}

func TestMemoryStoreSubAccountUpsertKeepsOmittedFields(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.SaveLinkedin(ctx, &Linkedin{
		UserID:   "u1",
		Token:    "t1",
		Headline: "Engineer",
		Skills:   []string{"Go", "Redis"},
	})
	require.NoError(t, err)

	// a reauth snapshot carries no skills; the stored import must survive
	saved, err := s.SaveLinkedin(ctx, &Linkedin{UserID: "u1", Token: "t2", Headline: "Staff Engineer"})
	require.NoError(t, err)
	require.Equal(t, "t2", saved.Token)
	require.Equal(t, "Staff Engineer", saved.Headline)
	require.Equal(t, []string{"Go", "Redis"}, saved.Skills)

	stored, err := s.LinkedinByUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []string{"Go", "Redis"}, stored.Skills)
}

func TestMemoryStoreDeleteUserCascades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, &User{Email: "a@example.com", Name: "A", GithubUID: "gh-1", MainProvider: ProviderGithub})
	require.NoError(t, err)
	gh, err := s.SaveGithubAccount(ctx, &GithubAccount{UserID: u.ID, Token: "t"})
	require.NoError(t, err)
	require.NoError(t, s.SyncRepos(ctx, gh.ID, []Repo{{ExternalKey: "A"}}))

	require.NoError(t, s.DeleteUser(ctx, u.ID))

	got, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, got)
	acct, err := s.GithubAccountByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, acct)
	repos, err := s.ReposByAccount(ctx, gh.ID)
	require.NoError(t, err)
	require.Empty(t, repos)
}
