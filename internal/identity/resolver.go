package identity

import (
	"context"
	"fmt"

	"github.com/liamneesonsarm/pickemup/internal/account"
	"github.com/liamneesonsarm/pickemup/internal/dispatch"
	"github.com/liamneesonsarm/pickemup/internal/preference"
	"github.com/liamneesonsarm/pickemup/pkg/logger"
	"github.com/liamneesonsarm/pickemup/pkg/metrics"
)

// Event classifies an authentication event after resolution.
type Event string

const (
	EventNewAccount      Event = "new_account"
	EventPrimaryReauth   Event = "primary_reauth"
	EventSecondaryReauth Event = "secondary_reauth"
)

// Resolution is the outcome of resolving an authentication event: the user
// the identity belongs to and how the event was classified.
type Resolution struct {
	User  *account.User
	Event Event
}

// NewlyCreated reports whether this resolution created the user.
func (r *Resolution) NewlyCreated() bool {
	return r != nil && r.Event == EventNewAccount
}

// Resolver decides whether an inbound authentication event is a new
// identity, a reauth via the user's main provider, or a reauth via a
// secondary provider, and applies the matching writes and job dispatches.
type Resolver struct {
	store      account.Store
	prefs      preference.Store
	dispatcher dispatch.Dispatcher
}

func NewResolver(store account.Store, prefs preference.Store, d dispatch.Dispatcher) *Resolver {
	return &Resolver{store: store, prefs: prefs, dispatcher: d}
}

// Resolve runs the identity resolution algorithm for one authentication
// event. Only github and linkedin can start a resolution; any other provider
// tag returns (nil, nil) with no writes. A store uniqueness conflict
// surfaces as account.ErrConflict so the caller can retry the lookup, since
// the conflicting user exists by then.
func (r *Resolver) Resolve(ctx context.Context, provider account.Provider, p *AuthPayload) (*Resolution, error) {
	switch provider {
	case account.ProviderGithub, account.ProviderLinkedin:
	default:
		return nil, nil
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	user, err := r.store.FindByProviderUID(ctx, provider, p.UID)
	if err != nil {
		return nil, fmt.Errorf("resolve %s uid lookup: %w", provider, err)
	}
	if user == nil {
		return r.createIdentity(ctx, provider, p)
	}
	if user.MainProvider == provider {
		return r.primaryReauth(ctx, provider, p, user)
	}
	return r.secondaryReauth(ctx, user)
}

// createIdentity persists a new user plus its provider sub-account and
// default preference. The sub-account is built first so a payload the
// provider mapping rejects never leaves a partial user behind; failures
// after CreateUser roll the user back.
func (r *Resolver) createIdentity(ctx context.Context, provider account.Provider, p *AuthPayload) (*Resolution, error) {
	u := &account.User{
		Name:         p.Name,
		Email:        p.Email,
		Location:     p.location(provider),
		MainProvider: provider,
	}

	var saveSub func(userID string) error
	switch provider {
	case account.ProviderGithub:
		sub, err := p.githubAccount("")
		if err != nil {
			return nil, err
		}
		u.GithubUID = p.UID
		saveSub = func(userID string) error {
			sub.UserID = userID
			_, err := r.store.SaveGithubAccount(ctx, sub)
			return err
		}
	case account.ProviderLinkedin:
		sub, err := p.linkedinAccount("")
		if err != nil {
			return nil, err
		}
		u.LinkedinUID = p.UID
		saveSub = func(userID string) error {
			sub.UserID = userID
			_, err := r.store.SaveLinkedin(ctx, sub)
			return err
		}
	}

	created, err := r.store.CreateUser(ctx, u)
	if err != nil {
		return nil, err
	}
	if err := saveSub(created.ID); err != nil {
		r.rollbackUser(ctx, created.ID)
		return nil, fmt.Errorf("create %s sub-account: %w", provider, err)
	}
	if _, err := r.prefs.CreateDefault(ctx, created.ID); err != nil {
		r.rollbackUser(ctx, created.ID)
		return nil, fmt.Errorf("create default preference: %w", err)
	}

	r.dispatchImageCapture(ctx, created.ID, p.AvatarURL)
	metrics.Resolutions.WithLabelValues(string(EventNewAccount)).Inc()
	return &Resolution{User: created, Event: EventNewAccount}, nil
}

// primaryReauth refreshes the fast sub-account fields from the fresh payload
// and re-captures the avatar. Slow resources (repos, positions) are left to
// the background refresh path.
func (r *Resolver) primaryReauth(ctx context.Context, provider account.Provider, p *AuthPayload, u *account.User) (*Resolution, error) {
	switch provider {
	case account.ProviderGithub:
		sub, err := p.githubAccount(u.ID)
		if err != nil {
			return nil, err
		}
		if _, err := r.store.SaveGithubAccount(ctx, sub); err != nil {
			return nil, fmt.Errorf("refresh github sub-account: %w", err)
		}
	case account.ProviderLinkedin:
		sub, err := p.linkedinAccount(u.ID)
		if err != nil {
			return nil, err
		}
		if _, err := r.store.SaveLinkedin(ctx, sub); err != nil {
			return nil, fmt.Errorf("refresh linkedin sub-account: %w", err)
		}
	}

	r.dispatchImageCapture(ctx, u.ID, p.AvatarURL)
	metrics.Resolutions.WithLabelValues(string(EventPrimaryReauth)).Inc()
	return &Resolution{User: u, Event: EventPrimaryReauth}, nil
}

// secondaryReauth never touches sub-account data synchronously. The linked
// profile is refreshed out-of-band and no avatar capture happens, since the
// avatar belongs to the main provider.
func (r *Resolver) secondaryReauth(ctx context.Context, u *account.User) (*Resolution, error) {
	if err := r.dispatcher.EnqueueProfileRefresh(ctx, u.ID); err != nil {
		logger.Errorf("enqueue profile refresh for user %s: %v", u.ID, err)
		metrics.DispatchFailures.WithLabelValues(dispatch.JobProfileRefresh).Inc()
	}
	metrics.Resolutions.WithLabelValues(string(EventSecondaryReauth)).Inc()
	return &Resolution{User: u, Event: EventSecondaryReauth}, nil
}

// LinkStackexchange attaches a StackExchange sub-account to an existing user
// and marks the user synced so background refreshes start covering it.
func (r *Resolver) LinkStackexchange(ctx context.Context, userID string, p *AuthPayload) (*account.Stackexchange, error) {
	if p == nil || p.UID == "" || p.Token == "" {
		return nil, ErrMalformedPayload
	}
	u, err := r.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, account.ErrNotFound
	}
	sub, err := p.stackexchangeAccount(u.ID)
	if err != nil {
		return nil, err
	}
	saved, err := r.store.SaveStackexchange(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("save stackexchange sub-account: %w", err)
	}
	if err := r.store.SetStackexchangeSynced(ctx, u.ID, true); err != nil {
		return nil, err
	}
	return saved, nil
}

// UnlinkStackexchange removes the StackExchange sub-account and stops
// background refreshes from querying the provider for this user.
func (r *Resolver) UnlinkStackexchange(ctx context.Context, userID string) error {
	if err := r.store.DeleteStackexchange(ctx, userID); err != nil {
		return err
	}
	return r.store.SetStackexchangeSynced(ctx, userID, false)
}

func (r *Resolver) dispatchImageCapture(ctx context.Context, userID, imageURL string) {
	if imageURL == "" {
		return
	}
	if err := r.dispatcher.EnqueueImageCapture(ctx, userID, imageURL); err != nil {
		logger.Errorf("enqueue image capture for user %s: %v", userID, err)
		metrics.DispatchFailures.WithLabelValues(dispatch.JobImageCapture).Inc()
	}
}

func (r *Resolver) rollbackUser(ctx context.Context, userID string) {
	if err := r.store.DeleteUser(ctx, userID); err != nil {
		logger.Errorf("rollback user %s: %v", userID, err)
	}
}
