package middleware

import (
	"crypto/subtle"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// MetricsConfig holds the optional /metrics credentials.
type MetricsConfig struct {
	User     string
	Password string
}

// LoadMetricsConfig reads METRICS_USER and METRICS_PASSWORD.
func LoadMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		User:     os.Getenv("METRICS_USER"),
		Password: os.Getenv("METRICS_PASSWORD"),
	}
}

// IsEnabled reports whether both credentials are set.
func (c *MetricsConfig) IsEnabled() bool {
	return c.User != "" && c.Password != ""
}

// MetricsBasicAuth protects /metrics when credentials are configured and
// passes everything through otherwise (local development).
func MetricsBasicAuth(cfg *MetricsConfig) echo.MiddlewareFunc {
	if cfg == nil || !cfg.IsEnabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return middleware.BasicAuth(credentialsValidator(cfg.User, cfg.Password))
}

func credentialsValidator(user, pass string) middleware.BasicAuthValidator {
	return func(username, password string, c echo.Context) (bool, error) {
		userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(user)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(password), []byte(pass)) == 1
		return userMatch && passMatch, nil
	}
}
