package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/api/idtoken"

	"github.com/tourcat/tourism-api/internal/domain"
	"github.com/tourcat/tourism-api/internal/repository/ports"
	"github.com/tourcat/tourism-api/internal/util"
)

var (
	ErrAccountValidation = errors.New("account validation failed")
	ErrUsernameTaken     = errors.New("username already exists")
	ErrEmailTaken        = errors.New("email already exists")
	// ErrInvalidCredentials is returned for unknown usernames and wrong
	// passwords alike, so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrGoogleLoginFailed  = errors.New("invalid google token")
)

type RegisterInput struct {
	Name     string
	Username string
	Password string
	Email    string
}

type AuthService struct {
	accounts  ports.AccountRepository
	tokens    *util.JWTManager
	googleAud string
}

func NewAuthService(accounts ports.AccountRepository, tokens *util.JWTManager, googleAud string) *AuthService {
	return &AuthService{accounts: accounts, tokens: tokens, googleAud: googleAud}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.AdminAccount, error) {
	problems := make([]string, 0, 4)
	if strings.TrimSpace(input.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(input.Username) == "" {
		problems = append(problems, "username is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		problems = append(problems, "password is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		problems = append(problems, "email is required")
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrAccountValidation, strings.Join(problems, "; "))
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountValidation, err)
	}

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	if _, err := s.accounts.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	return s.accounts.Create(ctx, &domain.AdminAccount{
		Name:         strings.TrimSpace(input.Name),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.AdminAccount, error) {
	account, err := s.accounts.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !util.VerifyPassword(password, account.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, _, err := s.tokens.Generate(account.ID, account.Username, account.Email)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

// GoogleEnabled reports whether Google sign-in is configured.
func (s *AuthService) GoogleEnabled() bool {
	return s.googleAud != ""
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, idTok string) (string, *domain.AdminAccount, error) {
	payload, err := idtoken.Validate(ctx, idTok, s.googleAud)
	if err != nil {
		return "", nil, ErrGoogleLoginFailed
	}
	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if email == "" {
		return "", nil, ErrGoogleLoginFailed
	}

	account, err := s.accounts.UpsertByEmail(ctx, email, name)
	if err != nil {
		return "", nil, err
	}
	token, _, err := s.tokens.Generate(account.ID, account.Username, account.Email)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

// Authenticate resolves a bearer token to the account it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.AdminAccount, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (s *AuthService) ListAccounts(ctx context.Context) ([]domain.AdminAccount, error) {
	return s.accounts.List(ctx)
}

func (s *AuthService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if err := s.accounts.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAccountNotFound
		}
		return err
	}
	return nil
}
