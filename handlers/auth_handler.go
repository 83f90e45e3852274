package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	gotrue "github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"

	"github.com/wanderplan/wanderplan-backend/config"
	"github.com/wanderplan/wanderplan-backend/errors"
	"github.com/wanderplan/wanderplan-backend/logger"
	"github.com/wanderplan/wanderplan-backend/types"
)

const minUsernameLength = 3

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// AuthHandler handles authentication-related endpoints.
type AuthHandler struct {
	supabase *supabase.Client
	config   *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(supabaseClient *supabase.Client, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		supabase: supabaseClient,
		config:   cfg,
	}
}

// SignUpRequest represents the request body for account registration.
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Username string `json:"username" binding:"required"`
}

// SignInRequest represents the request body for email/password sign-in.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignUpHandler registers a new account. The username is stored in the user
// metadata and shown in the app instead of the email address.
func (h *AuthHandler) SignUpHandler(c *gin.Context) {
	log := logger.GetLogger()

	var req SignUpRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	username := strings.TrimSpace(req.Username)
	if err := validateUsername(username); err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.supabase.Auth.Signup(gotrue.SignupRequest{
		Email:    req.Email,
		Password: req.Password,
		Data: map[string]interface{}{
			"username": username,
		},
	})
	if err != nil {
		log.Warnw("Sign-up failed", "email", logger.MaskEmail(req.Email), "error", err)
		_ = c.Error(errors.AuthenticationFailed("Could not create the account"))
		return
	}

	log.Infow("Account created", "userID", resp.ID)
	c.JSON(http.StatusCreated, gin.H{
		"user": types.UserResponse{
			ID:       resp.ID.String(),
			Email:    resp.Email,
			Username: username,
		},
		"access_token":  resp.AccessToken,
		"refresh_token": resp.RefreshToken,
		"expires_in":    resp.ExpiresIn,
		"token_type":    "bearer",
	})
}

// SignInHandler exchanges email/password credentials for a session.
func (h *AuthHandler) SignInHandler(c *gin.Context) {
	log := logger.GetLogger()

	var req SignInRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	session, err := h.supabase.SignInWithEmailPassword(req.Email, req.Password)
	if err != nil {
		log.Warnw("Sign-in failed", "email", logger.MaskEmail(req.Email), "error", err)
		_ = c.Error(errors.AuthenticationFailed("Invalid email or password"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:       session.User.ID.String(),
			Email:    session.User.Email,
			Username: usernameFromMetadata(session.User.UserMetadata),
		},
		"access_token":  session.AccessToken,
		"refresh_token": session.RefreshToken,
		"expires_in":    session.ExpiresIn,
		"token_type":    "bearer",
	})
}

// RefreshTokenHandler exchanges a refresh token for a new session.
func (h *AuthHandler) RefreshTokenHandler(c *gin.Context) {
	log := logger.GetLogger()

	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !bindJSONOrError(c, &req) {
		return
	}

	session, err := h.supabase.Auth.RefreshToken(req.RefreshToken)
	if err != nil {
		log.Warnw("Failed to refresh token", "error", err)
		_ = c.Error(errors.Unauthorized("refresh_failed", "Failed to refresh token"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  session.AccessToken,
		"refresh_token": session.RefreshToken,
		"expires_in":    session.ExpiresIn,
		"token_type":    "bearer",
	})
}

func validateUsername(username string) error {
	if len(username) < minUsernameLength {
		return errors.ValidationFailed("invalid_username", "username must be at least 3 characters")
	}
	if !usernamePattern.MatchString(username) {
		return errors.ValidationFailed("invalid_username", "username may only contain letters, numbers and underscores")
	}
	return nil
}

func usernameFromMetadata(metadata map[string]interface{}) string {
	if metadata == nil {
		return ""
	}
	if username, ok := metadata["username"].(string); ok {
		return username
	}
	return ""
}
