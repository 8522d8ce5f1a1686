package handler

import (
	"encoding/json"
	"net/http"

	"maestro/config"
	"maestro/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
)

const oauthStateCookie = "oauth_state"

// GoogleOAuthHandler runs the login flow. The callback never hands JWTs
// to the browser directly; it issues a single-use ticket the frontend
// exchanges over POST.
type GoogleOAuthHandler struct {
	authService *service.AuthService
	oauth       *oauth2.Config
	completeURL string
	log         *zap.Logger
}

func NewGoogleOAuthHandler(authService *service.AuthService, cfg *config.OAuthConfig, completeURL string, log *zap.Logger) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		authService: authService,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
				calendar.CalendarEventsScope,
			},
			Endpoint: google.Endpoint,
		},
		completeURL: completeURL,
		log:         log,
	}
}

func (h *GoogleOAuthHandler) Redirect(c *gin.Context) {
	state := uuid.New().String()
	c.SetCookie(oauthStateCookie, state, 300, "/", "", false, true)
	url := h.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

func (h *GoogleOAuthHandler) Callback(c *gin.Context) {
	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state mismatch"})
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}
	token, err := h.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		h.log.Error("oauth code exchange failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "code exchange failed"})
		return
	}

	profile, err := h.fetchProfile(c, token)
	if err != nil {
		h.log.Error("fetching google profile failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "profile fetch failed"})
		return
	}

	scope, _ := token.Extra("scope").(string)
	ticket, err := h.authService.LoginWithGoogle(profile, token, scope)
	if err != nil {
		h.log.Error("google login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, h.completeURL+"?ticket="+ticket)
}

func (h *GoogleOAuthHandler) fetchProfile(c *gin.Context, token *oauth2.Token) (*service.GoogleProfile, error) {
	resp, err := h.oauth.Client(c.Request.Context(), token).Get("https://www.googleapis.com/oauth2/v3/userinfo")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var profile service.GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
