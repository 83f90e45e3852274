package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/wanderplan/wanderplan-backend/errors"
	"github.com/wanderplan/wanderplan-backend/logger"
)

// AuthMiddleware requires a valid bearer token and stores the authenticated
// user's ID in the gin context under UserIDKey.
func AuthMiddleware(validator Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger()

		tokenString, err := extractBearerToken(c)
		if err != nil {
			log.Debugw("Missing or malformed Authorization header", "path", c.Request.URL.Path)
			abortWithAuthError(c, apperrors.Unauthorized("missing_token", "Authorization required"))
			return
		}

		userID, err := validator.Validate(tokenString)
		if err != nil {
			log.Debugw("Token validation failed", "error", err, "path", c.Request.URL.Path)
			if errors.Is(err, ErrTokenExpired) {
				abortWithAuthError(c, apperrors.Unauthorized("token_expired", "Your session has expired"))
				return
			}
			abortWithAuthError(c, apperrors.Unauthorized("invalid_token", "Invalid authentication token"))
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errors.New("authorization header missing")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("authorization header malformed")
	}
	return parts[1], nil
}

func abortWithAuthError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
