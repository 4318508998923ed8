package providers

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
	linkedinoauth "golang.org/x/oauth2/linkedin"

	"github.com/liamneesonsarm/pickemup/internal/account"
	"github.com/liamneesonsarm/pickemup/internal/config"
)

// stackexchangeEndpoint is not shipped with x/oauth2, so we spell it out.
var stackexchangeEndpoint = oauth2.Endpoint{
	AuthURL:  "https://stackoverflow.com/oauth",
	TokenURL: "https://stackoverflow.com/oauth/access_token/json",
}

// OAuthFlows holds the authorization-code configs for every provider users
// can log in or link with.
type OAuthFlows struct {
	configs map[account.Provider]*oauth2.Config
}

func NewOAuthFlows(cfg config.ProvidersConfig) *OAuthFlows {
	return &OAuthFlows{configs: map[account.Provider]*oauth2.Config{
		account.ProviderGithub: {
			ClientID:     cfg.Github.ClientID,
			ClientSecret: cfg.Github.ClientSecret,
			RedirectURL:  cfg.Github.RedirectURL,
			Scopes:       []string{"read:user", "user:email", "read:org"},
			Endpoint:     githuboauth.Endpoint,
		},
		account.ProviderLinkedin: {
			ClientID:     cfg.Linkedin.ClientID,
			ClientSecret: cfg.Linkedin.ClientSecret,
			RedirectURL:  cfg.Linkedin.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     linkedinoauth.Endpoint,
		},
		account.ProviderStackexchange: {
			ClientID:     cfg.Stackexchange.ClientID,
			ClientSecret: cfg.Stackexchange.ClientSecret,
			RedirectURL:  cfg.Stackexchange.RedirectURL,
			Endpoint:     stackexchangeEndpoint,
		},
	}}
}

// AuthCodeURL returns the provider's authorization page URL for a login
// attempt carrying the given anti-forgery state.
func (f *OAuthFlows) AuthCodeURL(provider account.Provider, state string) (string, error) {
	c, ok := f.configs[provider]
	if !ok {
		return "", fmt.Errorf("oauth: unsupported provider %q", provider)
	}
	return c.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// Exchange swaps an authorization code for a token set.
func (f *OAuthFlows) Exchange(ctx context.Context, provider account.Provider, code string) (*oauth2.Token, error) {
	c, ok := f.configs[provider]
	if !ok {
		return nil, fmt.Errorf("oauth: unsupported provider %q", provider)
	}
	tok, err := c.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth: %s code exchange: %w", provider, err)
	}
	return tok, nil
}
