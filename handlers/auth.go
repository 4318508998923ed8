package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"github.com/liamneesonsarm/pickemup/internal/account"
	"github.com/liamneesonsarm/pickemup/internal/config"
	"github.com/liamneesonsarm/pickemup/internal/identity"
	"github.com/liamneesonsarm/pickemup/internal/tokens"
	"github.com/liamneesonsarm/pickemup/pkg/logger"
)

const stateCookie = "oauth_state"

// CodeExchanger swaps an authorization code for a token set.
type CodeExchanger interface {
	AuthCodeURL(provider account.Provider, state string) (string, error)
	Exchange(ctx context.Context, provider account.Provider, code string) (*oauth2.Token, error)
}

// ViewerFetcher loads the authenticated user's profile from a provider.
type ViewerFetcher interface {
	FetchViewer(ctx context.Context, token string) (*identity.AuthPayload, error)
}

// AuthHandler drives the OAuth login flow: redirect to the provider, then
// resolve the callback into a user and mint an access token.
type AuthHandler struct {
	cfg      *config.Config
	flows    CodeExchanger
	fetchers map[account.Provider]ViewerFetcher
	resolver *identity.Resolver
}

func NewAuthHandler(cfg *config.Config, flows CodeExchanger, fetchers map[account.Provider]ViewerFetcher, resolver *identity.Resolver) *AuthHandler {
	return &AuthHandler{cfg: cfg, flows: flows, fetchers: fetchers, resolver: resolver}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.GET("/:provider/login", h.Login)
	a.GET("/:provider/callback", h.Callback)
}

// Login redirects the browser to the provider's authorization page.
func (h *AuthHandler) Login(c *gin.Context) {
	provider, ok := account.ParseProvider(c.Param("provider"))
	if !ok || provider == account.ProviderStackexchange {
		c.JSON(http.StatusNotFound, gin.H{"error": "unsupported provider"})
		return
	}
	state := randomState()
	url, err := h.flows.AuthCodeURL(provider, state)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login unavailable"})
		return
	}
	c.SetCookie(stateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// Callback finishes the OAuth flow: exchange the code, fetch the profile and
// resolve the identity. A uniqueness conflict means another request created
// the user between our lookup and insert, so the resolution is retried once
// and lands on the reauth path.
func (h *AuthHandler) Callback(c *gin.Context) {
	provider, ok := account.ParseProvider(c.Param("provider"))
	if !ok || provider == account.ProviderStackexchange {
		c.JSON(http.StatusNotFound, gin.H{"error": "unsupported provider"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}
	if want, err := c.Cookie(stateCookie); err != nil || want == "" || want != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state mismatch"})
		return
	}

	ctx := c.Request.Context()
	tok, err := h.flows.Exchange(ctx, provider, code)
	if err != nil {
		logger.Errorf("%s code exchange: %v", provider, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	fetcher, ok := h.fetchers[provider]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unsupported provider"})
		return
	}
	payload, err := fetcher.FetchViewer(ctx, tok.AccessToken)
	if err != nil {
		logger.Errorf("%s profile fetch: %v", provider, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "provider profile fetch failed"})
		return
	}

	res, err := h.resolver.Resolve(ctx, provider, payload)
	if errors.Is(err, account.ErrConflict) {
		res, err = h.resolver.Resolve(ctx, provider, payload)
	}
	if err != nil {
		if errors.Is(err, identity.ErrMalformedPayload) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "provider profile is incomplete"})
			return
		}
		logger.Errorf("%s resolution: %v", provider, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	if res == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login rejected"})
		return
	}

	access, err := tokens.GenerateAccessToken(h.cfg, res.User, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken": access,
		"user":        res.User,
		"newAccount":  res.NewlyCreated(),
		"expiresIn":   int(h.cfg.JWT.AccessTokenTTL.Seconds()),
	})
}

func randomState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
