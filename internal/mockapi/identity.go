package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// providerErr mirrors the identity provider's wire format: a stable error
// identifier inside an error envelope, always with status 400.
func providerErr(c *gin.Context, code string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": code}})
}

func (s *Server) requireAPIKey(c *gin.Context) {
	if s.apiKey != "" && c.GetHeader("X-Api-Key") != s.apiKey {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "INVALID_API_KEY"}})
		return
	}
	c.Next()
}

// issueSession mints a fresh access/refresh token pair for the account and
// returns the credentials payload the client expects. Callers hold s.mu.
func (s *Server) issueSessionLocked(acc *account) gin.H {
	access := "mock-access-" + newID()
	refresh := "mock-refresh-" + newID()
	s.accessTokens[access] = tokenSession{Email: acc.Email, ExpiresAt: time.Now().Add(s.tokenTTL)}
	s.refreshTokens[refresh] = acc.Email

	return gin.H{
		"uid":           acc.UID,
		"email":         acc.Email,
		"display_name":  acc.DisplayName,
		"photo_url":     acc.PhotoURL,
		"access_token":  access,
		"refresh_token": refresh,
		"expires_in":    int64(s.tokenTTL / time.Second),
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		providerErr(c, "INVALID_EMAIL")
		return
	}
	if !strings.Contains(req.Email, "@") {
		providerErr(c, "INVALID_EMAIL")
		return
	}
	if len(req.Password) < 6 {
		providerErr(c, "WEAK_PASSWORD")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		providerErr(c, "WEAK_PASSWORD")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		providerErr(c, "EMAIL_EXISTS")
		return
	}
	acc := &account{UID: newID(), Email: req.Email, PasswordHash: hash}
	s.accounts[req.Email] = acc
	c.JSON(http.StatusOK, s.issueSessionLocked(acc))
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		providerErr(c, "INVALID_LOGIN_CREDENTIALS")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, exists := s.accounts[req.Email]
	if !exists {
		providerErr(c, "EMAIL_NOT_FOUND")
		return
	}
	if acc.Disabled {
		providerErr(c, "USER_DISABLED")
		return
	}
	if bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(req.Password)) != nil {
		providerErr(c, "INVALID_PASSWORD")
		return
	}
	c.JSON(http.StatusOK, s.issueSessionLocked(acc))
}

// handleSocial exchanges an OAuth access token for a provider session. Tokens
// are recognized only when seeded via SeedSocialToken; a matching account is
// created on first sign-in, like a real social flow.
func (s *Server) handleSocial(c *gin.Context) {
	var req struct {
		Provider    string `json:"provider"`
		AccessToken string `json:"access_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		providerErr(c, "INVALID_LOGIN_CREDENTIALS")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.socialTokens[req.AccessToken]
	if !ok {
		providerErr(c, "INVALID_LOGIN_CREDENTIALS")
		return
	}
	acc, exists := s.accounts[email]
	if !exists {
		acc = &account{UID: newID(), Email: email}
		s.accounts[email] = acc
	}
	if acc.Disabled {
		providerErr(c, "USER_DISABLED")
		return
	}
	c.JSON(http.StatusOK, s.issueSessionLocked(acc))
}

func (s *Server) handleAccountUpdate(c *gin.Context) {
	var req struct {
		AccessToken string  `json:"access_token"`
		DisplayName *string `json:"display_name"`
		PhotoURL    *string `json:"photo_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		providerErr(c, "INVALID_LOGIN_CREDENTIALS")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.accessTokens[req.AccessToken]
	if !ok || time.Now().After(sess.ExpiresAt) {
		providerErr(c, "INVALID_LOGIN_CREDENTIALS")
		return
	}
	acc := s.accounts[sess.Email]
	if req.DisplayName != nil {
		acc.DisplayName = *req.DisplayName
	}
	if req.PhotoURL != nil {
		acc.PhotoURL = *req.PhotoURL
	}

	c.JSON(http.StatusOK, gin.H{
		"uid":          acc.UID,
		"email":        acc.Email,
		"display_name": acc.DisplayName,
		"photo_url":    acc.PhotoURL,
	})
}

func (s *Server) handleRevoke(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err == nil {
		s.mu.Lock()
		delete(s.refreshTokens, req.RefreshToken)
		s.mu.Unlock()
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) handleToken(c *gin.Context) {
	var req struct {
		GrantType    string `json:"grant_type"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.GrantType != "refresh_token" {
		providerErr(c, "INVALID_REFRESH_TOKEN")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.refreshTokens[req.RefreshToken]
	if !ok {
		providerErr(c, "INVALID_REFRESH_TOKEN")
		return
	}
	acc := s.accounts[email]
	if acc == nil || acc.Disabled {
		providerErr(c, "USER_DISABLED")
		return
	}
	// Rotate: the old refresh token stays valid too, which is close enough
	// for a mock.
	c.JSON(http.StatusOK, s.issueSessionLocked(acc))
}
