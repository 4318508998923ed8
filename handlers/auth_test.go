package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/liamneesonsarm/pickemup/internal/account"
	"github.com/liamneesonsarm/pickemup/internal/config"
	"github.com/liamneesonsarm/pickemup/internal/dispatch"
	"github.com/liamneesonsarm/pickemup/internal/identity"
	"github.com/liamneesonsarm/pickemup/internal/preference"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeExchanger struct {
	token    string
	failCode string
}

func (f *fakeExchanger) AuthCodeURL(provider account.Provider, state string) (string, error) {
	return "https://provider.example.com/authorize?state=" + state, nil
}

func (f *fakeExchanger) Exchange(ctx context.Context, provider account.Provider, code string) (*oauth2.Token, error) {
	if code == f.failCode {
		return nil, fmt.Errorf("invalid code")
	}
	return &oauth2.Token{AccessToken: f.token}, nil
}

type fakeFetcher struct {
	payload *identity.AuthPayload
}

func (f *fakeFetcher) FetchViewer(ctx context.Context, token string) (*identity.AuthPayload, error) {
	if f.payload == nil {
		return nil, fmt.Errorf("upstream unavailable")
	}
	return f.payload, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "handler-test-secret-32-bytes-xxxxxxx"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	return cfg
}

func githubLoginPayload() *identity.AuthPayload {
	return &identity.AuthPayload{
		UID:       "gh-1",
		Name:      "Jane Dev",
		Email:     "jane@example.com",
		AvatarURL: "https://avatars.example.com/jane.png",
		Token:     "gh-token",
		Raw: map[string]interface{}{
			"login":    "janedev",
			"location": "San Francisco, CA",
		},
	}
}

func newAuthRouter(payload *identity.AuthPayload) (*gin.Engine, *account.MemoryStore) {
	store := account.NewMemoryStore()
	prefs := preference.NewMemoryStore()
	resolver := identity.NewResolver(store, prefs, dispatch.NewNopDispatcher())
	h := NewAuthHandler(testConfig(), &fakeExchanger{token: "gh-token"}, map[account.Provider]ViewerFetcher{
		account.ProviderGithub: &fakeFetcher{payload: payload},
	}, resolver)
	r := gin.New()
	h.Register(r.Group("/"))
	return r, store
}

func doCallback(r *gin.Engine, provider, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/auth/"+provider+"/callback?"+query, nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "s1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_RedirectsToProvider(t *testing.T) {
	r, _ := newAuthRouter(githubLoginPayload())
	req := httptest.NewRequest("GET", "/auth/github/login", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	require.Contains(t, w.Header().Get("Location"), "https://provider.example.com/authorize")
	require.NotEmpty(t, w.Header().Get("Set-Cookie"))
}

func TestLogin_UnknownProvider(t *testing.T) {
	r, _ := newAuthRouter(githubLoginPayload())
	req := httptest.NewRequest("GET", "/auth/myspace/login", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCallback_NewAccount(t *testing.T) {
	r, store := newAuthRouter(githubLoginPayload())

	w := doCallback(r, "github", "code=c1&state=s1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken string `json:"accessToken"`
		NewAccount  bool   `json:"newAccount"`
		User        struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.True(t, resp.NewAccount)

	u, err := store.GetByID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, "gh-1", u.GithubUID)
}

func TestCallback_ReauthIsNotNewAccount(t *testing.T) {
	r, _ := newAuthRouter(githubLoginPayload())

	w := doCallback(r, "github", "code=c1&state=s1")
	require.Equal(t, http.StatusOK, w.Code)

	w2 := doCallback(r, "github", "code=c2&state=s1")
	require.Equal(t, http.StatusOK, w2.Code)

	var resp struct {
		NewAccount bool `json:"newAccount"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp))
	require.False(t, resp.NewAccount)
}

func TestCallback_StateMismatch(t *testing.T) {
	r, _ := newAuthRouter(githubLoginPayload())
	w := doCallback(r, "github", "code=c1&state=wrong")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCallback_MissingCode(t *testing.T) {
	r, _ := newAuthRouter(githubLoginPayload())
	w := doCallback(r, "github", "state=s1")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCallback_MalformedProfile(t *testing.T) {
	p := githubLoginPayload()
	delete(p.Raw, "login")
	r, store := newAuthRouter(p)

	w := doCallback(r, "github", "code=c1&state=s1")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	u, err := store.FindByProviderUID(context.Background(), account.ProviderGithub, "gh-1")
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestCallback_StackexchangeCannotLogIn(t *testing.T) {
	r, _ := newAuthRouter(githubLoginPayload())
	w := doCallback(r, "stackexchange", "code=c1&state=s1")
	require.Equal(t, http.StatusNotFound, w.Code)
}
