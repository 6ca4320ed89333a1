package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tourcat/tourism-api/internal/domain"
	"github.com/tourcat/tourism-api/internal/media"
	"github.com/tourcat/tourism-api/internal/repository/ports"
)

var (
	ErrTourismNotFound   = errors.New("tourism record not found")
	ErrTourismValidation = errors.New("tourism validation failed")
	ErrImageTooLarge     = errors.New("image exceeds maximum size")
)

// TourismCreateInput carries the metadata for a new record. All fields are
// mandatory at creation time.
type TourismCreateInput struct {
	Name        string
	Category    string
	Address     string
	Description string
}

type TourismServiceConfig struct {
	ImageMaxBytes     int64
	ImageMaxDimension int
}

// TourismService coordinates record mutations with blob uploads and deletes.
// The invariant it maintains: a record's image field always holds the URL of
// a blob issued by a successful upload, or is absent. Old blob URLs are read
// and queued for deletion before any write that would lose the reference.
//
// Mutations against the same record id are serialized through a per-id lock
// so concurrent updates cannot interleave and an update cannot race a
// delete.
type TourismService struct {
	records ports.TourismRepository
	blobs   *BlobStore

	imageMaxBytes     int64
	imageMaxDimension int
	locks             *keyedLocks
}

func NewTourismService(records ports.TourismRepository, blobs *BlobStore, cfg TourismServiceConfig) *TourismService {
	imageMax := cfg.ImageMaxBytes
	if imageMax <= 0 {
		imageMax = 5 * 1024 * 1024
	}
	return &TourismService{
		records:           records,
		blobs:             blobs,
		imageMaxBytes:     imageMax,
		imageMaxDimension: cfg.ImageMaxDimension,
		locks:             newKeyedLocks(),
	}
}

func (s *TourismService) List(ctx context.Context, filter domain.TourismListFilter) ([]domain.TourismRecord, error) {
	return s.records.List(ctx, filter)
}

func (s *TourismService) Get(ctx context.Context, id uuid.UUID) (*domain.TourismRecord, error) {
	record, err := s.records.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTourismNotFound
		}
		return nil, err
	}
	return record, nil
}

// Create validates all metadata fields and the image before any side effect,
// uploads the blob, then inserts the record carrying the issued URL. A
// failed upload leaves no record; a failed insert after a successful upload
// leaves an orphaned blob for the sweeper to reclaim.
func (s *TourismService) Create(ctx context.Context, input TourismCreateInput, image *BlobUpload) (*domain.TourismRecord, error) {
	problems := make([]string, 0, 5)
	if strings.TrimSpace(input.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		problems = append(problems, "category is required")
	}
	if strings.TrimSpace(input.Address) == "" {
		problems = append(problems, "address is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		problems = append(problems, "description is required")
	}
	if image == nil || len(image.Data) == 0 {
		problems = append(problems, "image is required")
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrTourismValidation, strings.Join(problems, "; "))
	}

	contentType, err := s.checkImage(image)
	if err != nil {
		return nil, err
	}
	image.ContentType = contentType

	imageURL, err := s.blobs.Put(ctx, *image)
	if err != nil {
		return nil, err
	}

	record := &domain.TourismRecord{
		Name:        strings.TrimSpace(input.Name),
		Category:    strings.TrimSpace(input.Category),
		Address:     strings.TrimSpace(input.Address),
		Description: strings.TrimSpace(input.Description),
		Image:       &imageURL,
	}
	created, err := s.records.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update overwrites the fields that carry a non-nil, non-empty value and
// leaves the rest untouched. With a new image the old blob is deleted
// best-effort first, the new blob uploaded, and only then are URL and
// metadata persisted in a single record update; an upload failure changes
// nothing.
func (s *TourismService) Update(ctx context.Context, id uuid.UUID, fields domain.TourismFields, image *BlobUpload) (*domain.TourismRecord, error) {
	release := s.locks.acquire(id)
	defer release()

	record, err := s.records.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTourismNotFound
		}
		return nil, err
	}

	fields = normalizeFields(fields)

	if image != nil && len(image.Data) > 0 {
		contentType, err := s.checkImage(image)
		if err != nil {
			return nil, err
		}
		image.ContentType = contentType

		oldURL := ""
		if record.Image != nil {
			oldURL = *record.Image
		}
		if oldURL != "" {
			s.blobs.Delete(ctx, oldURL)
		}

		newURL, err := s.blobs.Put(ctx, *image)
		if err != nil {
			return nil, err
		}
		fields.Image = &newURL
	}

	updated, err := s.records.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTourismNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes the record and best-effort deletes its blob. The row
// removal proceeds even when the blob delete silently failed.
func (s *TourismService) Delete(ctx context.Context, id uuid.UUID) error {
	release := s.locks.acquire(id)
	defer release()

	record, err := s.records.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTourismNotFound
		}
		return err
	}

	if record.Image != nil && *record.Image != "" {
		s.blobs.Delete(ctx, *record.Image)
	}

	if err := s.records.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTourismNotFound
		}
		return err
	}
	return nil
}

func (s *TourismService) checkImage(image *BlobUpload) (string, error) {
	if int64(len(image.Data)) > s.imageMaxBytes {
		return "", ErrImageTooLarge
	}
	info, err := media.Sniff(image.Data, image.FileName, image.ContentType, s.imageMaxDimension)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTourismValidation, err)
	}
	return info.ContentType, nil
}

// normalizeFields drops empty-string values: a blank form field means "no
// change", never "reset to empty".
func normalizeFields(fields domain.TourismFields) domain.TourismFields {
	clean := func(ptr *string) *string {
		if ptr == nil {
			return nil
		}
		trimmed := strings.TrimSpace(*ptr)
		if trimmed == "" {
			return nil
		}
		return &trimmed
	}
	fields.Name = clean(fields.Name)
	fields.Category = clean(fields.Category)
	fields.Address = clean(fields.Address)
	fields.Description = clean(fields.Description)
	return fields
}
