// Package identity adapts the external identity provider: it turns a
// verified JWT into a Principal and tracks sign-in/sign-out events.
package identity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const principalKey = "principal"

// Principal is the authenticated caller as the identity provider sees it.
type Principal struct {
	ID             uuid.UUID
	Email          string
	EmailConfirmed bool
	Name           string
}

var (
	ErrNoToken    = errors.New("invalid token in context")
	ErrBadClaims  = errors.New("invalid claims")
	ErrMissingSub = errors.New("missing sub claim")
)

// FromToken reads the principal from verified token claims.
func FromToken(token *jwt.Token) (*Principal, error) {
	if token == nil {
		return nil, ErrNoToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrBadClaims
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, ErrMissingSub
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, err
	}

	p := &Principal{ID: id}
	p.Email, _ = claims["email"].(string)
	p.Name, _ = claims["name"].(string)
	p.EmailConfirmed, _ = claims["email_confirmed"].(bool)
	return p, nil
}

// FromContext reads the principal from the token the JWT middleware stored.
func FromContext(c *fiber.Ctx) (*Principal, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, ErrNoToken
	}
	return FromToken(token)
}

// SetPrincipal stores the resolved principal for downstream handlers.
func SetPrincipal(c *fiber.Ctx, p *Principal) {
	c.Locals(principalKey, p)
}

// CurrentPrincipal returns the principal resolved for this request.
func CurrentPrincipal(c *fiber.Ctx) (*Principal, bool) {
	p, ok := c.Locals(principalKey).(*Principal)
	return p, ok && p != nil
}
