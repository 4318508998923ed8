package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/liamneesonsarm/pickemup/internal/account"
	"github.com/liamneesonsarm/pickemup/internal/identity"
	"github.com/liamneesonsarm/pickemup/internal/preference"
	"github.com/liamneesonsarm/pickemup/internal/providers"
	"github.com/liamneesonsarm/pickemup/pkg/logger"
	"github.com/liamneesonsarm/pickemup/pkg/middleware"
)

// StackexchangeFetcher loads a StackExchange user record for a token.
type StackexchangeFetcher interface {
	FetchUser(ctx context.Context, token string) (*providers.StackexchangeUser, error)
}

// AvatarPresigner mints a short-lived download URL for a stored object key.
type AvatarPresigner interface {
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// UsersHandler serves the authenticated user's profile, resume aggregate,
// preference and provider-link endpoints.
type UsersHandler struct {
	store     account.Store
	prefs     preference.Store
	resolver  *identity.Resolver
	flows     CodeExchanger
	seFetcher StackexchangeFetcher
	presigner AvatarPresigner
}

func NewUsersHandler(store account.Store, prefs preference.Store, resolver *identity.Resolver, flows CodeExchanger, se StackexchangeFetcher, presigner AvatarPresigner) *UsersHandler {
	return &UsersHandler{store: store, prefs: prefs, resolver: resolver, flows: flows, seFetcher: se, presigner: presigner}
}

// Register routes under /me. The caller supplies the auth middleware.
func (h *UsersHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	me := rg.Group("/me", auth)
	me.GET("", h.Get)
	me.PATCH("", h.Update)
	me.DELETE("", h.Delete)
	me.GET("/resume", h.Resume)
	me.GET("/avatar", h.Avatar)
	me.GET("/preference", h.GetPreference)
	me.PUT("/preference", h.UpdatePreference)
	me.GET("/preference/candidates/:field", h.PreferenceCandidates)
	me.POST("/stackexchange", h.LinkStackexchange)
	me.DELETE("/stackexchange", h.UnlinkStackexchange)
}

func (h *UsersHandler) currentUser(c *gin.Context) *account.User {
	u, err := h.store.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		logger.Errorf("load current user: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return nil
	}
	if u == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return nil
	}
	return u
}

func (h *UsersHandler) Get(c *gin.Context) {
	u := h.currentUser(c)
	if u == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// UpdateUserRequest carries the profile fields a user may edit by hand.
type UpdateUserRequest struct {
	Name                 *string `json:"name"`
	Location             *string `json:"location"`
	Description          *string `json:"description"`
	ManuallySetupProfile *bool   `json:"manuallySetupProfile"`
}

func (h *UsersHandler) Update(c *gin.Context) {
	u := h.currentUser(c)
	if u == nil {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name != nil {
		if *req.Name == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "name cannot be empty"})
			return
		}
		u.Name = *req.Name
	}
	if req.Location != nil {
		u.Location = *req.Location
	}
	if req.Description != nil {
		u.Description = *req.Description
	}
	if req.ManuallySetupProfile != nil {
		u.ManuallySetupProfile = *req.ManuallySetupProfile
	}
	if err := h.store.UpdateUser(c.Request.Context(), u); err != nil {
		logger.Errorf("update user %s: %v", u.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *UsersHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.store.DeleteUser(c.Request.Context(), userID); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		logger.Errorf("delete user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Resume aggregates everything imported from the providers into one document.
func (h *UsersHandler) Resume(c *gin.Context) {
	u := h.currentUser(c)
	if u == nil {
		return
	}
	ctx := c.Request.Context()
	out := gin.H{"user": u}

	if gh, err := h.store.GithubAccountByUser(ctx, u.ID); err == nil && gh != nil {
		repos, _ := h.store.ReposByAccount(ctx, gh.ID)
		orgs, _ := h.store.OrganizationsByAccount(ctx, gh.ID)
		out["github"] = gin.H{"account": gh, "repos": repos, "organizations": orgs}
	}
	if li, err := h.store.LinkedinByUser(ctx, u.ID); err == nil && li != nil {
		positions, _ := h.store.PositionsByAccount(ctx, li.ID)
		educations, _ := h.store.EducationsByAccount(ctx, li.ID)
		out["linkedin"] = gin.H{"account": li, "positions": positions, "educations": educations}
	}
	if se, err := h.store.StackexchangeByUser(ctx, u.ID); err == nil && se != nil {
		out["stackexchange"] = se
	}
	c.JSON(http.StatusOK, out)
}

// Avatar returns a short-lived download URL for the stored profile image.
func (h *UsersHandler) Avatar(c *gin.Context) {
	u := h.currentUser(c)
	if u == nil {
		return
	}
	if u.ProfileImage == "" || h.presigner == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no profile image"})
		return
	}
	url, err := h.presigner.GetPresignedURL(c.Request.Context(), u.ProfileImage, 15*time.Minute)
	if err != nil {
		logger.Errorf("presign avatar for user %s: %v", u.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "presign failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *UsersHandler) GetPreference(c *gin.Context) {
	p, err := h.prefs.ByUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		logger.Errorf("load preference: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "preference not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"preference": p})
}

// UpdatePreference cleans the submitted attribute map, validates it and
// persists the surviving fields. Cleanup runs first so malformed checklist
// noise never reaches the validators.
func (h *UsersHandler) UpdatePreference(c *gin.Context) {
	var params map[string]interface{}
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cleaned := preference.Cleanup(params)
	if err := preference.ValidateScalars(cleaned); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := preference.ValidateChecklists(cleaned); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	p, err := h.prefs.Update(c.Request.Context(), middleware.UserID(c), cleaned)
	if err != nil {
		if errors.Is(err, preference.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "preference not found"})
			return
		}
		logger.Errorf("update preference: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"preference": p})
}

// PreferenceCandidates returns the checklist form data for one field: every
// allowed value with its current checked state. Skills additionally include
// the values imported from LinkedIn.
func (h *UsersHandler) PreferenceCandidates(c *gin.Context) {
	field := c.Param("field")
	if !preference.IsChecklistField(field) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown checklist field"})
		return
	}
	ctx := c.Request.Context()
	userID := middleware.UserID(c)
	p, err := h.prefs.ByUser(ctx, userID)
	if err != nil || p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "preference not found"})
		return
	}
	var imported []string
	if field == "skills" {
		if li, err := h.store.LinkedinByUser(ctx, userID); err == nil && li != nil {
			imported = li.Skills
		}
	}
	c.JSON(http.StatusOK, gin.H{"field": field, "candidates": preference.Candidates(field, p.Checklist(field), imported)})
}

// LinkStackexchangeRequest carries the authorization code from the client-side
// StackExchange popup flow.
type LinkStackexchangeRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *UsersHandler) LinkStackexchange(c *gin.Context) {
	var req LinkStackexchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	tok, err := h.flows.Exchange(ctx, account.ProviderStackexchange, req.Code)
	if err != nil {
		logger.Errorf("stackexchange code exchange: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization failed"})
		return
	}
	se, err := h.seFetcher.FetchUser(ctx, tok.AccessToken)
	if err != nil {
		logger.Errorf("stackexchange profile fetch: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "provider profile fetch failed"})
		return
	}
	badgeCounts := map[string]interface{}{}
	for k, v := range se.Badges {
		badgeCounts[k] = float64(v)
	}
	payload := &identity.AuthPayload{
		UID:   se.UID,
		Name:  se.DisplayName,
		Token: tok.AccessToken,
		Raw: map[string]interface{}{
			"display_name": se.DisplayName,
			"link":         se.Link,
			"reputation":   float64(se.Reputation),
			"age":          float64(se.Age),
			"badge_counts": badgeCounts,
		},
	}
	sub, err := h.resolver.LinkStackexchange(ctx, middleware.UserID(c), payload)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		logger.Errorf("link stackexchange: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "link failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stackexchange": sub})
}

func (h *UsersHandler) UnlinkStackexchange(c *gin.Context) {
	if err := h.resolver.UnlinkStackexchange(c.Request.Context(), middleware.UserID(c)); err != nil {
		logger.Errorf("unlink stackexchange: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unlink failed"})
		return
	}
	c.Status(http.StatusNoContent)
}
