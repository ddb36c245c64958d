package middleware

import (
	"errors"
	"strings"

	"devhub/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// CtxPrincipalKey holds the *Principal of an authenticated request.
const CtxPrincipalKey = "principal"

const (
	msgTokenRequired = "Access token required"
	msgTokenExpired  = "Token expired"
	msgTokenInvalid  = "Invalid token"
)

// Principal is the caller identity taken from a verified token.
type Principal struct {
	UserID uuid.UUID
	Email  string
}

type AuthMiddleware struct {
	tokens jwt.Service
}

func NewAuthMiddleware(tokens jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Middleware rejects requests without a valid bearer token. Nothing is looked
// up server side; the token is the whole session.
func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		raw, ok := bearerTokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, msgTokenRequired, nil, nil)
		}

		claims, err := m.tokens.ValidateToken(raw)
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return NewAppError(fiber.StatusUnauthorized, msgTokenExpired, nil, err)
		case err != nil:
			return NewAppError(fiber.StatusUnauthorized, msgTokenInvalid, nil, err)
		case claims.UserID == uuid.Nil:
			return NewAppError(fiber.StatusUnauthorized, msgTokenInvalid, nil, nil)
		}

		c.Locals(CtxPrincipalKey, &Principal{UserID: claims.UserID, Email: claims.Email})
		return c.Next()
	}
}

// CurrentPrincipal returns the identity stored by AuthMiddleware.
func CurrentPrincipal(c fiber.Ctx) (*Principal, bool) {
	p, ok := c.Locals(CtxPrincipalKey).(*Principal)
	return p, ok && p != nil
}

// UserID returns the authenticated user id.
func UserID(c fiber.Ctx) (uuid.UUID, bool) {
	p, ok := CurrentPrincipal(c)
	if !ok {
		return uuid.Nil, false
	}
	return p.UserID, true
}

func bearerTokenFromHeader(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
