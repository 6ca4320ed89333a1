package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/tourcat/tourism-api/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, account *domain.AdminAccount) (*domain.AdminAccount, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.AdminAccount, error)
	FindByUsername(ctx context.Context, username string) (*domain.AdminAccount, error)
	FindByEmail(ctx context.Context, email string) (*domain.AdminAccount, error)
	UpsertByEmail(ctx context.Context, email, name string) (*domain.AdminAccount, error)
	List(ctx context.Context) ([]domain.AdminAccount, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
