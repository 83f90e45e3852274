package middleware

import (
	"errors"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/wanderplan/wanderplan-backend/config"
)

var (
	// ErrTokenExpired is returned when JWT validation fails due to expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for general token validation failures.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenMissingClaim is returned if the 'sub' claim is missing.
	ErrTokenMissingClaim = errors.New("token missing required claim")
)

// Validator validates an access token and returns the user ID it carries.
type Validator interface {
	Validate(tokenString string) (string, error)
}

// JWTValidator validates Supabase-issued HS256 access tokens against the
// project JWT secret.
type JWTValidator struct {
	secret []byte
}

var _ Validator = (*JWTValidator)(nil)

func NewJWTValidator(cfg *config.Config) (*JWTValidator, error) {
	if cfg.ExternalServices.SupabaseJWTSecret == "" {
		return nil, fmt.Errorf("jwt validator: SUPABASE_JWT_SECRET is not configured")
	}
	return &JWTValidator{secret: []byte(cfg.ExternalServices.SupabaseJWTSecret)}, nil
}

// Validate parses and validates the token, returning the subject claim.
func (v *JWTValidator) Validate(tokenString string) (string, error) {
	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, v.secret),
		jwt.WithValidate(true),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return "", fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	sub := token.Subject()
	if sub == "" {
		return "", fmt.Errorf("%w: sub", ErrTokenMissingClaim)
	}
	return sub, nil
}
