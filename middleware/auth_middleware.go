package middleware

import (
	"errors"
	"fmt"

	config "github.com/anjiri1684/driving_school/configs"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	RoleAdmin      = "admin"
	RoleSecretary  = "secretary"
	RoleInstructor = "instructor"
)

// StaffRoles may read lessons and follow the lesson feed.
var StaffRoles = []string{RoleAdmin, RoleSecretary, RoleInstructor}

func Protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(config.Config("JWT_SECRET")),
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

func claims(c *fiber.Ctx) (jwt.MapClaims, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, false
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	return mc, ok
}

// RoleRequired lets the request through when the token's role is one of roles.
func RoleRequired(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mc, ok := claims(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		if HasRole(mc, roles...) {
			return c.Next()
		}
		return forbidden(c, mc)
	}
}

// HasRole reports whether the token's role claim is one of roles.
func HasRole(mc jwt.MapClaims, roles ...string) bool {
	role, _ := mc["role"].(string)
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}

func forbidden(c *fiber.Ctx, mc jwt.MapClaims) error {
	role, _ := mc["role"].(string)
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error": fmt.Sprintf("Forbidden: role %q cannot perform this action", role),
	})
}

// QueryTokenRequired authenticates from the token query parameter, for
// websocket upgrades where browsers cannot set an Authorization header. The
// caller's id is stored in Locals under "user_id".
func QueryTokenRequired(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mc, err := ParseToken(c.Query("token"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}
		if !HasRole(mc, roles...) {
			return forbidden(c, mc)
		}
		raw, _ := mc["user_id"].(string)
		userID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID"})
		}
		c.Locals("user_id", userID)
		return c.Next()
	}
}

// ActorID is the user_id claim of the authenticated staff member.
func ActorID(c *fiber.Ctx) (uuid.UUID, error) {
	mc, ok := claims(c)
	if !ok {
		return uuid.Nil, errors.New("missing token")
	}
	raw, _ := mc["user_id"].(string)
	return uuid.Parse(raw)
}

// ParseToken validates a raw HS256 token, for transports that cannot send
// an Authorization header.
func ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Config("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if mc, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return mc, nil
	}
	return nil, errors.New("invalid token")
}
