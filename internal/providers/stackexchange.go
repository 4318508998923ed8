package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const stackexchangeBaseURL = "https://api.stackexchange.com"

// StackexchangeUser is the reputation snapshot refreshed from the API.
type StackexchangeUser struct {
	UID         string
	DisplayName string
	Link        string
	Reputation  int
	Age         int
	Badges      map[string]int
}

// StackexchangeClient talks to the StackExchange 2.x API. Requests carry the
// application key alongside the user's access token.
type StackexchangeClient struct {
	http    *http.Client
	baseURL string
	key     string
}

func NewStackexchangeClient(key string) *StackexchangeClient {
	return &StackexchangeClient{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: stackexchangeBaseURL,
		key:     key,
	}
}

// NewStackexchangeClientWithBase is used by tests to point at a stub server.
func NewStackexchangeClientWithBase(baseURL, key string) *StackexchangeClient {
	c := NewStackexchangeClient(key)
	c.baseURL = baseURL
	return c
}

type stackexchangeUserDoc struct {
	Items []struct {
		UserID      int64  `json:"user_id"`
		DisplayName string `json:"display_name"`
		Link        string `json:"link"`
		Reputation  int    `json:"reputation"`
		Age         int    `json:"age"`
		BadgeCounts struct {
			Gold   int `json:"gold"`
			Silver int `json:"silver"`
			Bronze int `json:"bronze"`
		} `json:"badge_counts"`
	} `json:"items"`
}

// FetchUser loads the authenticated user's StackOverflow record. Returns an
// error when the token resolves to no site user.
func (c *StackexchangeClient) FetchUser(ctx context.Context, token string) (*StackexchangeUser, error) {
	q := url.Values{}
	q.Set("site", "stackoverflow")
	q.Set("access_token", token)
	if c.key != "" {
		q.Set("key", c.key)
	}
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/2.3/me?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stackexchange: GET /me: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("stackexchange: GET /me returned %d: %s", resp.StatusCode, string(b))
	}
	var doc stackexchangeUserDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, err
	}
	if len(doc.Items) == 0 {
		return nil, fmt.Errorf("stackexchange: token resolves to no stackoverflow user")
	}
	u := doc.Items[0]
	return &StackexchangeUser{
		UID:         fmt.Sprintf("%d", u.UserID),
		DisplayName: u.DisplayName,
		Link:        u.Link,
		Reputation:  u.Reputation,
		Age:         u.Age,
		Badges: map[string]int{
			"gold":   u.BadgeCounts.Gold,
			"silver": u.BadgeCounts.Silver,
			"bronze": u.BadgeCounts.Bronze,
		},
	}, nil
}
