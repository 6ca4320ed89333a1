package domain

import (
	"time"

	"github.com/google/uuid"
)

// TourismRecord is a catalog entry for a single tourism spot. Image holds the
// public URL of the blob in object storage and is nil only when no image was
// ever attached successfully.
type TourismRecord struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Category    string    `db:"category" json:"category"`
	Address     string    `db:"address" json:"address"`
	Description string    `db:"description" json:"description"`
	Image       *string   `db:"image_url" json:"image,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TourismFields carries a partial update. A nil pointer means "leave the
// stored value unchanged"; it never resets a field to empty.
type TourismFields struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	Address     *string `json:"address,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"-"`
}

type TourismListFilter struct {
	Search     string
	Categories []string
	Limit      int
	Offset     int
}
