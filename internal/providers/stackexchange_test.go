package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStackexchangeClient_FetchUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2.3/me", r.URL.Path)
		require.Equal(t, "stackoverflow", r.URL.Query().Get("site"))
		require.Equal(t, "tok", r.URL.Query().Get("access_token"))
		require.Equal(t, "app-key", r.URL.Query().Get("key"))
		w.Write([]byte(`{"items": [{"user_id": 77, "display_name": "janedev", "link": "https://stackoverflow.com/users/77", "reputation": 1234, "age": 30, "badge_counts": {"gold": 1, "silver": 4, "bronze": 9}}]}`))
	}))
	defer srv.Close()

	c := NewStackexchangeClientWithBase(srv.URL, "app-key")
	u, err := c.FetchUser(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "77", u.UID)
	require.Equal(t, "janedev", u.DisplayName)
	require.Equal(t, 1234, u.Reputation)
	require.Equal(t, 1, u.Badges["gold"])
	require.Equal(t, 9, u.Badges["bronze"])
}

func TestStackexchangeClient_NoSiteUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	c := NewStackexchangeClientWithBase(srv.URL, "")
	_, err := c.FetchUser(context.Background(), "tok")
	require.Error(t, err)
}
