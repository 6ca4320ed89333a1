package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tourcat/tourism-api/internal/domain"
	"github.com/tourcat/tourism-api/internal/service"
	"github.com/tourcat/tourism-api/internal/util"
)

const (
	contextAccountKey = "auth.account"
	contextTokenKey   = "auth.token"
)

func RequireAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if strings.TrimSpace(authHeader) == "" {
				return c.JSON(http.StatusUnauthorized, util.Error("missing authorization header"))
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return c.JSON(http.StatusUnauthorized, util.Error("invalid authorization header"))
			}
			token := strings.TrimSpace(parts[1])
			account, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, util.Error("invalid or expired token"))
			}
			c.Set(contextAccountKey, account)
			c.Set(contextTokenKey, token)
			return next(c)
		}
	}
}

func CurrentAccount(c echo.Context) (*domain.AdminAccount, bool) {
	account, ok := c.Get(contextAccountKey).(*domain.AdminAccount)
	return account, ok
}
