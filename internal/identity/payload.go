package identity

import (
	"errors"

	"github.com/liamneesonsarm/pickemup/internal/account"
)

// ErrMalformedPayload is returned when a provider payload is missing fields
// the resolver needs. Resolution aborts before any store write.
var ErrMalformedPayload = errors.New("identity: malformed provider payload")

// AuthPayload is the normalized result of a provider token exchange. Raw
// carries the provider-specific profile document as decoded JSON; field
// paths inside it differ per provider.
type AuthPayload struct {
	UID       string
	Name      string
	Email     string
	AvatarURL string
	Token     string
	Raw       map[string]interface{}
}

func (p *AuthPayload) validate() error {
	if p == nil || p.UID == "" || p.Name == "" || p.Email == "" || p.Token == "" {
		return ErrMalformedPayload
	}
	return nil
}

// location extracts the user's location from the raw profile. GitHub reports
// it as a plain string, LinkedIn nests it under location.name.
func (p *AuthPayload) location(provider account.Provider) string {
	switch provider {
	case account.ProviderGithub:
		s, _ := p.Raw["location"].(string)
		return s
	case account.ProviderLinkedin:
		loc, _ := p.Raw["location"].(map[string]interface{})
		s, _ := loc["name"].(string)
		return s
	}
	return ""
}

func rawString(raw map[string]interface{}, key string) string {
	s, _ := raw[key].(string)
	return s
}

func rawInt(raw map[string]interface{}, key string) int {
	switch v := raw[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func rawBool(raw map[string]interface{}, key string) bool {
	b, _ := raw[key].(bool)
	return b
}

// githubAccount builds a GitHub sub-account snapshot from the payload.
func (p *AuthPayload) githubAccount(userID string) (*account.GithubAccount, error) {
	nickname := rawString(p.Raw, "login")
	if nickname == "" {
		return nil, ErrMalformedPayload
	}
	return &account.GithubAccount{
		UserID:      userID,
		Token:       p.Token,
		Nickname:    nickname,
		Bio:         rawString(p.Raw, "bio"),
		Company:     rawString(p.Raw, "company"),
		Hireable:    rawBool(p.Raw, "hireable"),
		PublicRepos: rawInt(p.Raw, "public_repos"),
		Followers:   rawInt(p.Raw, "followers"),
		Following:   rawInt(p.Raw, "following"),
	}, nil
}

// linkedinAccount builds a LinkedIn sub-account snapshot from the payload.
func (p *AuthPayload) linkedinAccount(userID string) (*account.Linkedin, error) {
	if rawString(p.Raw, "publicProfileUrl") == "" && rawString(p.Raw, "headline") == "" {
		return nil, ErrMalformedPayload
	}
	return &account.Linkedin{
		UserID:           userID,
		Token:            p.Token,
		Headline:         rawString(p.Raw, "headline"),
		Industry:         rawString(p.Raw, "industry"),
		PublicProfileURL: rawString(p.Raw, "publicProfileUrl"),
		NumConnections:   rawInt(p.Raw, "numConnections"),
	}, nil
}

// stackexchangeAccount builds a StackExchange sub-account snapshot. The
// external key doubles as the StackOverflow user id the refresh jobs query.
func (p *AuthPayload) stackexchangeAccount(userID string) (*account.Stackexchange, error) {
	if p.UID == "" || p.Token == "" {
		return nil, ErrMalformedPayload
	}
	badges := map[string]int{}
	if counts, ok := p.Raw["badge_counts"].(map[string]interface{}); ok {
		for k := range counts {
			badges[k] = rawInt(counts, k)
		}
	}
	return &account.Stackexchange{
		UserID:      userID,
		Token:       p.Token,
		UID:         p.UID,
		ExternalKey: p.UID,
		Nickname:    rawString(p.Raw, "display_name"),
		DisplayName: p.Name,
		ProfileURL:  rawString(p.Raw, "link"),
		Reputation:  rawInt(p.Raw, "reputation"),
		Age:         rawInt(p.Raw, "age"),
		Badges:      badges,
	}, nil
}
