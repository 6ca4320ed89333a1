package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tourcat/tourism-api/internal/domain"
	"github.com/tourcat/tourism-api/internal/service"
	"github.com/tourcat/tourism-api/internal/util"
)

type AuthHandler struct {
	auth *service.AuthService
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService) {
	handler := &AuthHandler{auth: auth}

	group := e.Group("/auth")
	group.POST("/register", handler.register)
	group.POST("/login", handler.login)
	if auth.GoogleEnabled() {
		group.POST("/google", handler.loginWithGoogle)
	}

	accounts := group.Group("/accounts", RequireAuth(auth))
	accounts.GET("", handler.listAccounts)
	accounts.DELETE("/:id", handler.deleteAccount)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	_, err := h.auth.Register(c.Request().Context(), service.RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountValidation),
			errors.Is(err, service.ErrUsernameTaken),
			errors.Is(err, service.ErrEmailTaken):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to register account"))
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "User registered successfully"})
}

func (h *AuthHandler) login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	token, account, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to log in"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"name":  account.Name,
		"email": account.Email,
	})
}

func (h *AuthHandler) loginWithGoogle(c echo.Context) error {
	var req struct {
		IDToken string `json:"id_token"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	token, account, err := h.auth.LoginWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, service.ErrGoogleLoginFailed) {
			return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to log in"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"name":  account.Name,
		"email": account.Email,
	})
}

func (h *AuthHandler) listAccounts(c echo.Context) error {
	accounts, err := h.auth.ListAccounts(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to list accounts"))
	}

	payload := make([]echo.Map, 0, len(accounts))
	for i := range accounts {
		payload = append(payload, buildAccountResponse(&accounts[i]))
	}
	return c.JSON(http.StatusOK, payload)
}

func (h *AuthHandler) deleteAccount(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid account id"))
	}

	if err := h.auth.DeleteAccount(c.Request().Context(), id); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("account not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to delete account"))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Account deleted successfully"})
}

func buildAccountResponse(account *domain.AdminAccount) echo.Map {
	return echo.Map{
		"id":       account.ID,
		"name":     account.Name,
		"username": account.Username,
		"email":    account.Email,
	}
}
