// Package auth validates the Auth0 issued JWTs used by the API and the
// realtime websocket.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/samber/lo"
	"github.com/travigo/routeplanner/pkg/util"
)

const (
	RoleCityManager   = "city_manager"
	RoleSeniorManager = "senior_manager"
	RoleAdmin         = "admin"
)

var ErrInvalidToken = errors.New("invalid auth token")

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Scope string   `json:"scope"`
	Roles []string `json:"roles"`
}

func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// TokenValidator is satisfied by *validator.Validator.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (interface{}, error)
}

type Account struct {
	UserID string
	Roles  []string
}

func (a *Account) HasRole(roles ...string) bool {
	return lo.Some(a.Roles, roles)
}

// IsManager is true for accounts that may publish route updates.
func (a *Account) IsManager() bool {
	return a.HasRole(RoleCityManager, RoleAdmin)
}

func NewValidator() (*validator.Validator, error) {
	env := util.GetEnvironmentVariables()

	issuerURL, err := url.Parse("https://" + env["TRAVIGO_AUTH0_DOMAIN"] + "/")
	if err != nil {
		return nil, fmt.Errorf("parse the issuer url: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	return validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{env["TRAVIGO_AUTH0_AUDIENCE"]},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
}

// Authenticate validates a raw token, with or without its Bearer prefix.
func Authenticate(ctx context.Context, tokenValidator TokenValidator, token string) (*Account, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, ErrInvalidToken
	}

	claimsI, err := tokenValidator.ValidateToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := claimsI.(*validator.ValidatedClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	account := &Account{UserID: claims.RegisteredClaims.Subject}
	if customClaims, ok := claims.CustomClaims.(*CustomClaims); ok {
		account.Roles = customClaims.Roles
	}

	return account, nil
}
