package refresh

import (
	"context"
	"errors"
	"fmt"

	"github.com/liamneesonsarm/pickemup/internal/account"
	"github.com/liamneesonsarm/pickemup/internal/providers"
	"github.com/liamneesonsarm/pickemup/pkg/metrics"
)

// GithubAPI is the slice of the GitHub client the refresher needs.
type GithubAPI interface {
	FetchRepos(ctx context.Context, token string) ([]account.Repo, error)
	FetchOrgs(ctx context.Context, token string) ([]account.Organization, error)
}

// LinkedinAPI is the slice of the LinkedIn client the refresher needs.
type LinkedinAPI interface {
	FetchProfile(ctx context.Context, token string) (*providers.LinkedinProfile, error)
}

// StackexchangeAPI is the slice of the StackExchange client the refresher needs.
type StackexchangeAPI interface {
	FetchUser(ctx context.Context, token string) (*providers.StackexchangeUser, error)
}

// Refresher runs the deferred full-profile refresh: for each provider the
// user has linked, it re-fetches the upstream profile and reconciles the
// stored sub-account and owned resource sets. Runs are idempotent, so
// at-least-once delivery from the queue is safe.
type Refresher struct {
	store         account.Store
	github        GithubAPI
	linkedin      LinkedinAPI
	stackexchange StackexchangeAPI
}

func NewRefresher(store account.Store, gh GithubAPI, li LinkedinAPI, se StackexchangeAPI) *Refresher {
	return &Refresher{store: store, github: gh, linkedin: li, stackexchange: se}
}

// RefreshProfile refreshes every linked provider for the user. Provider
// refreshes are independent: one provider failing does not block the others,
// and the combined error is returned at the end.
func (r *Refresher) RefreshProfile(ctx context.Context, userID string) error {
	u, err := r.store.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		// the user was deleted after the job was enqueued
		return nil
	}

	var errs []error
	if u.GithubUID != "" {
		errs = append(errs, r.run(account.ProviderGithub, func() error {
			return r.refreshGithub(ctx, u)
		}))
	}
	if u.LinkedinUID != "" {
		errs = append(errs, r.run(account.ProviderLinkedin, func() error {
			return r.refreshLinkedin(ctx, u)
		}))
	}
	if u.StackexchangeSynced {
		errs = append(errs, r.run(account.ProviderStackexchange, func() error {
			return r.refreshStackexchange(ctx, u)
		}))
	}
	return errors.Join(errs...)
}

func (r *Refresher) run(provider account.Provider, fn func() error) error {
	if err := fn(); err != nil {
		metrics.RefreshRuns.WithLabelValues(string(provider), "error").Inc()
		return fmt.Errorf("refresh %s: %w", provider, err)
	}
	metrics.RefreshRuns.WithLabelValues(string(provider), "ok").Inc()
	return nil
}

func (r *Refresher) refreshGithub(ctx context.Context, u *account.User) error {
	sub, err := r.store.GithubAccountByUser(ctx, u.ID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}
	repos, err := r.github.FetchRepos(ctx, sub.Token)
	if err != nil {
		return err
	}
	if err := r.store.SyncRepos(ctx, sub.ID, repos); err != nil {
		return err
	}
	orgs, err := r.github.FetchOrgs(ctx, sub.Token)
	if err != nil {
		return err
	}
	return r.store.SyncOrganizations(ctx, sub.ID, orgs)
}

func (r *Refresher) refreshLinkedin(ctx context.Context, u *account.User) error {
	sub, err := r.store.LinkedinByUser(ctx, u.ID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}
	profile, err := r.linkedin.FetchProfile(ctx, sub.Token)
	if err != nil {
		return err
	}
	sub.Headline = profile.Headline
	sub.Industry = profile.Industry
	sub.PublicProfileURL = profile.PublicProfileURL
	sub.NumConnections = profile.NumConnections
	sub.Skills = profile.Skills
	if _, err := r.store.SaveLinkedin(ctx, sub); err != nil {
		return err
	}
	if err := r.store.SyncPositions(ctx, sub.ID, profile.Positions); err != nil {
		return err
	}
	return r.store.SyncEducations(ctx, sub.ID, profile.Educations)
}

func (r *Refresher) refreshStackexchange(ctx context.Context, u *account.User) error {
	sub, err := r.store.StackexchangeByUser(ctx, u.ID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}
	se, err := r.stackexchange.FetchUser(ctx, sub.Token)
	if err != nil {
		return err
	}
	sub.DisplayName = se.DisplayName
	sub.Nickname = se.DisplayName
	sub.ProfileURL = se.Link
	sub.Reputation = se.Reputation
	sub.Age = se.Age
	sub.Badges = se.Badges
	_, err = r.store.SaveStackexchange(ctx, sub)
	return err
}
