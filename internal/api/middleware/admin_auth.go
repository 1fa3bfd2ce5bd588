package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuth guards the admin routes with basic auth. Unlike /metrics the
// admin API stays closed when no credentials are configured. password may be
// a bcrypt hash.
func AdminAuth(user, password string) echo.MiddlewareFunc {
	if user == "" || password == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "admin API is not configured")
			}
		}
	}
	validator := credentialsValidator(user, password)
	if isBcryptHash(password) {
		validator = hashedCredentialsValidator(user, password)
	}
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Validator: validator,
		Realm:     "admin",
	})
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func hashedCredentialsValidator(user, hash string) middleware.BasicAuthValidator {
	return func(username, password string, c echo.Context) (bool, error) {
		userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(user)) == 1
		passMatch := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
		return userMatch && passMatch, nil
	}
}
