package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/tourcat/tourism-api/internal/domain"
)

type TourismRepository interface {
	Create(ctx context.Context, record *domain.TourismRecord) (*domain.TourismRecord, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.TourismRecord, error)
	List(ctx context.Context, filter domain.TourismListFilter) ([]domain.TourismRecord, error)
	Update(ctx context.Context, id uuid.UUID, fields domain.TourismFields) (*domain.TourismRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListImageURLs(ctx context.Context) ([]string, error)
}
