package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGithubClient_FetchViewer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/user":
			w.Write([]byte(`{"id": 42, "login": "janedev", "name": "Jane Dev", "email": "", "avatar_url": "https://a/x.png", "location": "Portland, OR", "public_repos": 3}`))
		case "/user/emails":
			w.Write([]byte(`[{"email": "alt@example.com", "primary": false}, {"email": "jane@example.com", "primary": true}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewGithubClientWithBase(srv.URL)
	p, err := c.FetchViewer(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "42", p.UID)
	require.Equal(t, "Jane Dev", p.Name)
	require.Equal(t, "jane@example.com", p.Email)
	require.Equal(t, "https://a/x.png", p.AvatarURL)
	require.Equal(t, "Portland, OR", p.Raw["location"])
}

func TestGithubClient_FetchRepos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/repos", r.URL.Path)
		w.Write([]byte(`[{"id": 7, "name": "thing", "language": "Go", "forks_count": 2, "watchers_count": 5, "private": false, "html_url": "https://github.com/janedev/thing"}]`))
	}))
	defer srv.Close()

	c := NewGithubClientWithBase(srv.URL)
	repos, err := c.FetchRepos(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, repos, 1)
	require.Equal(t, "7", repos[0].ExternalKey)
	require.Equal(t, "thing", repos[0].Name)
	require.Equal(t, "Go", repos[0].Language)
	require.Equal(t, 2, repos[0].Forks)
}

func TestGithubClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "Bad credentials"}`))
	}))
	defer srv.Close()

	c := NewGithubClientWithBase(srv.URL)
	_, err := c.FetchViewer(context.Background(), "bad")
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}
