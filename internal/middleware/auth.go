package middleware

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// IdentityHeader carries the signed-in user id, as the backend expects it
const IdentityHeader = "X-Clerk-User-Id"

// CustomClaims contains the custom claims from Auth0 JWT
type CustomClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"
	// IdentityKey is the context key for the resolved identity
	IdentityKey contextKey = "identity"
)

// TokenValidator validates a Bearer token. *validator.Validator satisfies it.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// AuthMiddleware resolves the identity of a request. Without a validator the
// identity header is trusted as is; with one, a valid Bearer token is
// required and its subject becomes the identity.
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware creates an AuthMiddleware that trusts the identity header
func NewAuthMiddleware() *AuthMiddleware {
	return &AuthMiddleware{}
}

// NewJWTAuthMiddleware creates an AuthMiddleware validating Auth0 tokens
func NewJWTAuthMiddleware(domain, audience string) (*AuthMiddleware, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return NewAuthMiddlewareWithValidator(jwtValidator), nil
}

// NewAuthMiddlewareWithValidator creates an AuthMiddleware around v
func NewAuthMiddlewareWithValidator(v TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: v}
}

// Authenticate reads credentials from the request headers
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return m.authenticate(headerCredentials)
}

// AuthenticateQuery also accepts credentials in the token and user_id query
// parameters, for WebSocket upgrades where browsers cannot set headers
func (m *AuthMiddleware) AuthenticateQuery() echo.MiddlewareFunc {
	return m.authenticate(func(c echo.Context) credentials {
		cr := headerCredentials(c)
		if cr.token == "" && !cr.malformed {
			cr.token = c.QueryParam("token")
		}
		if cr.identity == "" {
			cr.identity = c.QueryParam("user_id")
		}
		return cr
	})
}

type credentials struct {
	token     string
	identity  string
	malformed bool
}

func headerCredentials(c echo.Context) credentials {
	req := c.Request()
	cr := credentials{identity: strings.TrimSpace(req.Header.Get(IdentityHeader))}
	if authHeader := req.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			cr.malformed = true
		} else {
			cr.token = parts[1]
		}
	}
	return cr
}

func (m *AuthMiddleware) authenticate(extract func(echo.Context) credentials) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cr := extract(c)
			ctx := c.Request().Context()

			if m.validator == nil {
				if cr.identity == "" {
					return unauthorizedError(c, "Missing "+IdentityHeader+" header")
				}
				ctx = context.WithValue(ctx, IdentityKey, cr.identity)
				c.SetRequest(c.Request().WithContext(ctx))
				return next(c)
			}

			if cr.malformed {
				return unauthorizedError(c, "Invalid authorization header format")
			}
			if cr.token == "" {
				return unauthorizedError(c, "Missing authorization header")
			}

			claims, err := m.validator.ValidateToken(ctx, cr.token)
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "Invalid token")
			}
			validatedClaims, ok := claims.(*validator.ValidatedClaims)
			if !ok || validatedClaims.RegisteredClaims.Subject == "" {
				return unauthorizedError(c, "Invalid claims")
			}

			subject := validatedClaims.RegisteredClaims.Subject
			if cr.identity != "" && cr.identity != subject {
				log.Debug().Str("subject", subject).Str("header", cr.identity).Msg("Identity header does not match token subject")
				return unauthorizedError(c, "Identity does not match token")
			}

			ctx = context.WithValue(ctx, ClaimsKey, validatedClaims)
			ctx = context.WithValue(ctx, IdentityKey, subject)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetIdentity extracts the resolved identity from the context
func GetIdentity(c echo.Context) string {
	if id, ok := c.Request().Context().Value(IdentityKey).(string); ok {
		return id
	}
	return ""
}

// GetClaims extracts the validated claims from the context
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	if claims, ok := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims); ok {
		return claims
	}
	return nil
}

// GetCustomClaims extracts the custom claims from the context
func GetCustomClaims(c echo.Context) *CustomClaims {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok {
		return custom
	}
	return nil
}
