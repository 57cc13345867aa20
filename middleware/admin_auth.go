// middleware/admin_auth.go
package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AdminSessionCookie is the cookie carrying the admin session token.
const AdminSessionCookie = "admin_auth"

const sessionTTL = 24 * time.Hour

var (
	sessionMu sync.Mutex
	sessions  = map[string]time.Time{}
)

// IssueAdminSession mints a session token after a successful password check.
func IssueAdminSession() string {
	token := uuid.NewString()
	sessionMu.Lock()
	sessions[token] = time.Now().Add(sessionTTL)
	sessionMu.Unlock()
	return token
}

func validAdminSession(token string) bool {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	expiry, ok := sessions[token]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(sessions, token)
		return false
	}
	return true
}

// AdminAuthMiddleware guards the admin surface behind the login cookie.
// It runs before any business logic on the routes it wraps.
func AdminAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(AdminSessionCookie)
		if token == "" || !validAdminSession(token) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "admin authorization required",
			})
		}
		return c.Next()
	}
}
