package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/liamneesonsarm/pickemup/internal/account"
	"github.com/liamneesonsarm/pickemup/internal/identity"
)

const githubBaseURL = "https://api.github.com"

// GithubClient talks to the GitHub REST API with a user's OAuth token.
type GithubClient struct {
	http    *http.Client
	baseURL string
}

func NewGithubClient() *GithubClient {
	return &GithubClient{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: githubBaseURL,
	}
}

// NewGithubClientWithBase is used by tests to point at a stub server.
func NewGithubClientWithBase(baseURL string) *GithubClient {
	c := NewGithubClient()
	c.baseURL = baseURL
	return c
}

func (c *GithubClient) getJSON(ctx context.Context, token, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("github: GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("github: GET %s returned %d: %s", path, resp.StatusCode, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// FetchViewer loads the authenticated user's profile and normalizes it into
// an auth payload for the resolver.
func (c *GithubClient) FetchViewer(ctx context.Context, token string) (*identity.AuthPayload, error) {
	var raw map[string]interface{}
	if err := c.getJSON(ctx, token, "/user", &raw); err != nil {
		return nil, err
	}
	uid := ""
	if id, ok := raw["id"].(float64); ok {
		uid = strconv.FormatInt(int64(id), 10)
	}
	name, _ := raw["name"].(string)
	if name == "" {
		name, _ = raw["login"].(string)
	}
	email, _ := raw["email"].(string)
	if email == "" {
		// the primary email is a separate call when the profile email is private
		email = c.fetchPrimaryEmail(ctx, token)
	}
	avatar, _ := raw["avatar_url"].(string)
	return &identity.AuthPayload{
		UID:       uid,
		Name:      name,
		Email:     email,
		AvatarURL: avatar,
		Token:     token,
		Raw:       raw,
	}, nil
}

func (c *GithubClient) fetchPrimaryEmail(ctx context.Context, token string) string {
	var emails []struct {
		Email   string `json:"email"`
		Primary bool   `json:"primary"`
	}
	if err := c.getJSON(ctx, token, "/user/emails", &emails); err != nil {
		return ""
	}
	for _, e := range emails {
		if e.Primary {
			return e.Email
		}
	}
	if len(emails) > 0 {
		return emails[0].Email
	}
	return ""
}

type githubRepo struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Private     bool      `json:"private"`
	HTMLURL     string    `json:"html_url"`
	Language    string    `json:"language"`
	ForksCount  int       `json:"forks_count"`
	Watchers    int       `json:"watchers_count"`
	Size        int       `json:"size"`
	OpenIssues  int       `json:"open_issues_count"`
	CreatedAt   time.Time `json:"created_at"`
	PushedAt    time.Time `json:"pushed_at"`
}

// FetchRepos lists the user's repositories, mapped to the local model and
// keyed by the provider-assigned repo id.
func (c *GithubClient) FetchRepos(ctx context.Context, token string) ([]account.Repo, error) {
	var raw []githubRepo
	if err := c.getJSON(ctx, token, "/user/repos?per_page=100&sort=pushed", &raw); err != nil {
		return nil, err
	}
	repos := make([]account.Repo, 0, len(raw))
	for _, r := range raw {
		repos = append(repos, account.Repo{
			ExternalKey: strconv.FormatInt(r.ID, 10),
			Name:        r.Name,
			Description: r.Description,
			Private:     r.Private,
			URL:         r.HTMLURL,
			Language:    r.Language,
			Forks:       r.ForksCount,
			Watchers:    r.Watchers,
			Size:        r.Size,
			OpenIssues:  r.OpenIssues,
			Started:     r.CreatedAt,
			LastUpdated: r.PushedAt,
		})
	}
	return repos, nil
}

type githubOrg struct {
	ID          int64  `json:"id"`
	Login       string `json:"login"`
	URL         string `json:"url"`
	AvatarURL   string `json:"avatar_url"`
	Description string `json:"description"`
}

// FetchOrgs lists the user's organization memberships.
func (c *GithubClient) FetchOrgs(ctx context.Context, token string) ([]account.Organization, error) {
	var raw []githubOrg
	if err := c.getJSON(ctx, token, "/user/orgs?per_page=100", &raw); err != nil {
		return nil, err
	}
	orgs := make([]account.Organization, 0, len(raw))
	for _, o := range raw {
		orgs = append(orgs, account.Organization{
			ExternalKey: strconv.FormatInt(o.ID, 10),
			Name:        o.Login,
			URL:         o.URL,
			AvatarURL:   o.AvatarURL,
			Description: o.Description,
		})
	}
	return orgs, nil
}
