package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"teamhub/internal/models"
	"teamhub/internal/store"
)

const sessionKey = "session"

// Claims are the bearer token claims. Subject carries the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Session is the authenticated caller of one request.
type Session struct {
	User   *models.User
	Claims *Claims
}

// SessionFrom returns the request's session, or nil for anonymous requests.
func SessionFrom(c fiber.Ctx) *Session {
	s, _ := c.Locals(sessionKey).(*Session)
	return s
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c fiber.Ctx) *models.User {
	if s := SessionFrom(c); s != nil {
		return s.User
	}
	return nil
}

// AuthMiddleware authenticates requests with HS256 bearer tokens and loads
// the matching user, creating it on first sight.
type AuthMiddleware struct {
	secret []byte
	issuer string
	users  store.UserRepository
	log    zerolog.Logger
}

// NewAuthMiddleware creates a new auth middleware instance. An empty issuer
// accepts tokens from any issuer.
func NewAuthMiddleware(secret, issuer string, users store.UserRepository, log zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret), issuer: issuer, users: users, log: log}
}

// RequireAuth rejects requests without a valid bearer token.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	sess, err := m.authenticate(c)
	if err != nil {
		return unauthorized(c, err.Error())
	}
	if sess == nil {
		return unauthorized(c, "authentication required")
	}
	c.Locals(sessionKey, sess)
	return c.Next()
}

// OptionalAuth loads the session when a token is sent. A malformed or
// expired token is still rejected.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	sess, err := m.authenticate(c)
	if err != nil {
		return unauthorized(c, err.Error())
	}
	if sess != nil {
		c.Locals(sessionKey, sess)
	}
	return c.Next()
}

func (m *AuthMiddleware) authenticate(c fiber.Ctx) (*Session, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return nil, nil
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, errors.New("authorization header must be a bearer token")
	}

	claims, err := m.ParseToken(raw)
	if err != nil {
		m.log.Debug().Err(err).Msg("rejected bearer token")
		return nil, errors.New("invalid or expired token")
	}

	user, err := m.loadUser(c.Context(), claims)
	if err != nil {
		m.log.Error().Err(err).Str("sub", claims.Subject).Msg("failed to load user")
		return nil, errors.New("unable to load user")
	}
	return &Session{User: user, Claims: claims}, nil
}

// ParseToken verifies signature, expiry and issuer and returns the claims.
func (m *AuthMiddleware) ParseToken(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30 * time.Second),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("subject is not a user id: %w", err)
	}
	return claims, nil
}

// loadUser returns the user named by the token, provisioning a student
// without maintenance access when it does not exist yet.
func (m *AuthMiddleware) loadUser(ctx context.Context, claims *Claims) (*models.User, error) {
	id := uuid.MustParse(claims.Subject)
	user, err := m.users.Get(ctx, id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	user = &models.User{
		Record: models.Record{ID: id},
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   models.RoleStudent,
	}
	if user.Name == "" {
		user.Name = claims.Email
	}
	err = m.users.Create(ctx, user)
	if errors.Is(err, store.ErrConflict) {
		// Another request provisioned the same user first.
		return m.users.Get(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	m.log.Info().Str("user_id", id.String()).Str("email", user.Email).Msg("provisioned new user")
	return user, nil
}

// SignToken issues an HS256 token for userID valid for ttl.
func SignToken(secret string, userID uuid.UUID, email, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return SignClaims(secret, claims)
}

// SignClaims signs arbitrary claims with HS256.
func SignClaims(secret string, claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func unauthorized(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status": "error",
		"error":  msg,
	})
}
