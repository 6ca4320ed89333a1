package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tourcat/tourism-api/internal/util"
)

// bodyLimit caps request bodies slightly above the multipart buffer so an
// image upload at the configured maximum still fits alongside its form
// fields.
const bodyLimit = "33M"

// NewRouter builds the echo instance carrying the middleware every route
// shares. The API speaks JSON and multipart only, so the CORS surface is
// trimmed to the headers and methods the handlers actually accept.
func NewRouter(allowOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	registerLogging(e)

	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
		// Browsers reject credentialed responses under a wildcard origin.
		AllowCredentials: !hasWildcardOrigin(allowOrigins),
		MaxAge:           3600,
	}))

	e.GET("/health", health)
	return e
}

func hasWildcardOrigin(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func health(c echo.Context) error {
	return c.JSON(http.StatusOK, util.Success("ok"))
}
