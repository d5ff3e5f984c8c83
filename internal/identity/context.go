package identity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const actorLocal = "actor"

// FromContext returns the actor for the current request. It prefers an
// actor placed in locals by middleware (static-token path), falling back to
// the verified JWT claims.
func FromContext(c *fiber.Ctx) (*Actor, error) {
	if actor, ok := c.Locals(actorLocal).(*Actor); ok && actor != nil {
		return actor, nil
	}

	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, errors.New("no token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, errors.New("missing sub claim")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, err
	}

	role, _ := claims["role"].(string)
	email, _ := claims["email"].(string)

	return &Actor{ID: id, Role: ParseRole(role), Email: email}, nil
}

// SetActor stores a resolved actor in request locals.
func SetActor(c *fiber.Ctx, actor *Actor) {
	c.Locals(actorLocal, actor)
}
