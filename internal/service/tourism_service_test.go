package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tourcat/tourism-api/internal/domain"
	"github.com/tourcat/tourism-api/internal/repository/ports"
)

func TestTourismServiceLifecycle(t *testing.T) {
	ctx := context.Background()

	repo := newMemoryTourismRepo()
	storage := newMemoryStorage()
	blobs := NewBlobStore(storage, BlobStoreConfig{Bucket: "tourism-image"})
	svc := NewTourismService(repo, blobs, TourismServiceConfig{})

	t.Run("create issues distinct urls", func(t *testing.T) {
		first, err := svc.Create(ctx, validInput("Lake X"), pngUpload(t, "lake.png"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		second, err := svc.Create(ctx, validInput("Lake Y"), pngUpload(t, "lake.png"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if first.Image == nil || second.Image == nil {
			t.Fatalf("expected both records to carry image URLs")
		}
		if *first.Image == *second.Image {
			t.Fatalf("expected distinct image URLs, both got %s", *first.Image)
		}
	})

	t.Run("create collects all missing fields", func(t *testing.T) {
		objectsBefore := storage.count()
		recordsBefore := repo.count()

		_, err := svc.Create(ctx, TourismCreateInput{Name: "Lonely Name"}, nil)
		if !errors.Is(err, ErrTourismValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
		for _, want := range []string{"category is required", "address is required", "description is required", "image is required"} {
			if !strings.Contains(err.Error(), want) {
				t.Fatalf("expected error to name %q, got %q", want, err.Error())
			}
		}
		if strings.Contains(err.Error(), "name is required") {
			t.Fatalf("name was provided, error should not flag it: %q", err.Error())
		}
		if storage.count() != objectsBefore || repo.count() != recordsBefore {
			t.Fatalf("validation failure must not create blobs or records")
		}
	})

	t.Run("metadata-only update leaves other fields untouched", func(t *testing.T) {
		record, err := svc.Create(ctx, validInput("Old Town"), pngUpload(t, "town.png"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		name := "New Town"
		updated, err := svc.Update(ctx, record.ID, domain.TourismFields{Name: &name}, nil)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Name != "New Town" {
			t.Fatalf("expected name updated, got %s", updated.Name)
		}
		if updated.Category != record.Category || updated.Address != record.Address || updated.Description != record.Description {
			t.Fatalf("expected untouched fields to survive the update")
		}
		if updated.Image == nil || *updated.Image != *record.Image {
			t.Fatalf("expected image unchanged")
		}
	})

	t.Run("blank form values mean no change", func(t *testing.T) {
		record, err := svc.Create(ctx, validInput("Beach Cove"), pngUpload(t, "cove.png"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		blank := "   "
		updated, err := svc.Update(ctx, record.ID, domain.TourismFields{Category: &blank}, nil)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Category != record.Category {
			t.Fatalf("blank category must not overwrite, got %q", updated.Category)
		}
	})

	t.Run("image replacement deletes old blob and issues new url", func(t *testing.T) {
		record, err := svc.Create(ctx, validInput("Waterfall"), pngUpload(t, "falls.png"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		oldName := objectNameFromURL(*record.Image)

		updated, err := svc.Update(ctx, record.ID, domain.TourismFields{}, pngUpload(t, "falls2.png"))
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if *updated.Image == *record.Image {
			t.Fatalf("expected a fresh URL after image replacement")
		}
		if !storage.wasRemoved(oldName) {
			t.Fatalf("expected old blob %s to be targeted for deletion", oldName)
		}
	})

	t.Run("failed upload leaves record untouched", func(t *testing.T) {
		record, err := svc.Create(ctx, validInput("Hot Spring"), pngUpload(t, "spring.png"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		storage.setFailUpload(true)
		defer storage.setFailUpload(false)

		name := "Renamed Spring"
		_, err = svc.Update(ctx, record.ID, domain.TourismFields{Name: &name}, pngUpload(t, "spring2.png"))
		if !errors.Is(err, ErrStorageWrite) {
			t.Fatalf("expected storage write error, got %v", err)
		}
		persisted, err := repo.FindByID(ctx, record.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if persisted.Name != record.Name {
			t.Fatalf("record metadata must not change when the upload fails")
		}
	})

	t.Run("failed upload on create leaves no record", func(t *testing.T) {
		storage.setFailUpload(true)
		defer storage.setFailUpload(false)
		recordsBefore := repo.count()

		_, err := svc.Create(ctx, validInput("Ghost Spot"), pngUpload(t, "ghost.png"))
		if !errors.Is(err, ErrStorageWrite) {
			t.Fatalf("expected storage write error, got %v", err)
		}
		if repo.count() != recordsBefore {
			t.Fatalf("no record may exist after a failed upload")
		}
	})

	t.Run("delete removes record even when blob delete fails", func(t *testing.T) {
		record, err := svc.Create(ctx, validInput("Cliff Walk"), pngUpload(t, "cliff.png"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		storage.setFailRemove(true)
		defer storage.setFailRemove(false)

		if err := svc.Delete(ctx, record.ID); err != nil {
			t.Fatalf("Delete must succeed despite blob delete failure: %v", err)
		}
		if _, err := svc.Get(ctx, record.ID); !errors.Is(err, ErrTourismNotFound) {
			t.Fatalf("expected not found after delete, got %v", err)
		}
	})

	t.Run("delete of unknown id fails with not found", func(t *testing.T) {
		if err := svc.Delete(ctx, uuid.New()); !errors.Is(err, ErrTourismNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("end to end scenario", func(t *testing.T) {
		record, err := svc.Create(ctx, TourismCreateInput{
			Name:        "Lake X",
			Category:    "Natural Tourism",
			Address:     "Road 1",
			Description: "A lake",
		}, pngUpload(t, "lakex.png"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if record.Image == nil {
			t.Fatalf("expected image to be set")
		}

		category := "Food"
		updated, err := svc.Update(ctx, record.ID, domain.TourismFields{Category: &category}, nil)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Name != "Lake X" || updated.Category != "Food" {
			t.Fatalf("unexpected record after update: %+v", updated)
		}

		if err := svc.Delete(ctx, record.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := svc.Get(ctx, record.ID); !errors.Is(err, ErrTourismNotFound) {
			t.Fatalf("expected not found after delete, got %v", err)
		}
	})
}

func TestTourismServiceRejectsBadImages(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryTourismRepo()
	storage := newMemoryStorage()
	blobs := NewBlobStore(storage, BlobStoreConfig{Bucket: "tourism-image"})

	t.Run("undecodable data", func(t *testing.T) {
		svc := NewTourismService(repo, blobs, TourismServiceConfig{})
		_, err := svc.Create(ctx, validInput("Bad Image"), &BlobUpload{
			Data:     []byte("definitely not an image"),
			FileName: "notes.txt",
		})
		if !errors.Is(err, ErrTourismValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("oversized payload", func(t *testing.T) {
		svc := NewTourismService(repo, blobs, TourismServiceConfig{ImageMaxBytes: 16})
		_, err := svc.Create(ctx, validInput("Huge Image"), pngUpload(t, "huge.png"))
		if !errors.Is(err, ErrImageTooLarge) {
			t.Fatalf("expected too-large error, got %v", err)
		}
	})
}

func TestTourismServiceSerializesMutationsPerID(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryTourismRepo()
	storage := newMemoryStorage()
	blobs := NewBlobStore(storage, BlobStoreConfig{Bucket: "tourism-image"})
	svc := NewTourismService(repo, blobs, TourismServiceConfig{})

	record, err := svc.Create(ctx, validInput("Contended"), pngUpload(t, "busy.png"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("Contended %d", i)
			if _, err := svc.Update(ctx, record.ID, domain.TourismFields{Name: &name}, pngUpload(t, "busy.png")); err != nil {
				t.Errorf("Update: %v", err)
			}
		}(i)
	}
	wg.Wait()

	final, err := svc.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	// Serialized updates: exactly one live blob, and the record references it.
	if storage.count() != 1 {
		t.Fatalf("expected exactly one live blob after serialized updates, got %d", storage.count())
	}
	if final.Image == nil || !storage.exists(objectNameFromURL(*final.Image)) {
		t.Fatalf("record must reference a live blob")
	}
}

func validInput(name string) TourismCreateInput {
	return TourismCreateInput{
		Name:        name,
		Category:    "Natural Tourism",
		Address:     "Jalan Raya 1",
		Description: "A scenic spot",
	}
}

func pngUpload(t *testing.T, fileName string) *BlobUpload {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return &BlobUpload{
		Data:        buf.Bytes(),
		FileName:    fileName,
		ContentType: "image/png",
	}
}

// fakes

type memoryTourismRepo struct {
	mu    sync.Mutex
	store map[uuid.UUID]*domain.TourismRecord
}

func newMemoryTourismRepo() *memoryTourismRepo {
	return &memoryTourismRepo{store: make(map[uuid.UUID]*domain.TourismRecord)}
}

func (m *memoryTourismRepo) Create(ctx context.Context, record *domain.TourismRecord) (*domain.TourismRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := *record
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	m.store[rec.ID] = cloneTourism(&rec)
	return cloneTourism(&rec), nil
}

func (m *memoryTourismRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.TourismRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.store[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneTourism(record), nil
}

func (m *memoryTourismRepo) List(ctx context.Context, filter domain.TourismListFilter) ([]domain.TourismRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.TourismRecord, 0, len(m.store))
	for _, record := range m.store {
		if filter.Search != "" && !strings.Contains(strings.ToLower(record.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *cloneTourism(record))
	}
	return out, nil
}

func (m *memoryTourismRepo) Update(ctx context.Context, id uuid.UUID, fields domain.TourismFields) (*domain.TourismRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.store[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if fields.Name != nil {
		record.Name = *fields.Name
	}
	if fields.Category != nil {
		record.Category = *fields.Category
	}
	if fields.Address != nil {
		record.Address = *fields.Address
	}
	if fields.Description != nil {
		record.Description = *fields.Description
	}
	if fields.Image != nil {
		image := *fields.Image
		record.Image = &image
	}
	record.UpdatedAt = time.Now().UTC()
	return cloneTourism(record), nil
}

func (m *memoryTourismRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.store, id)
	return nil
}

func (m *memoryTourismRepo) ListImageURLs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	urls := make([]string, 0, len(m.store))
	for _, record := range m.store {
		if record.Image != nil {
			urls = append(urls, *record.Image)
		}
	}
	return urls, nil
}

func (m *memoryTourismRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

func cloneTourism(src *domain.TourismRecord) *domain.TourismRecord {
	if src == nil {
		return nil
	}
	record := *src
	if src.Image != nil {
		image := *src.Image
		record.Image = &image
	}
	return &record
}

type memoryStorage struct {
	mu         sync.Mutex
	objects    map[string][]byte
	modified   map[string]time.Time
	removed    map[string]struct{}
	failUpload bool
	failRemove bool
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{
		objects:  make(map[string][]byte),
		modified: make(map[string]time.Time),
		removed:  make(map[string]struct{}),
	}
}

func (m *memoryStorage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpload {
		return "", errors.New("simulated upload failure")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.objects[objectName] = data
	m.modified[objectName] = time.Now().UTC()
	return "https://storage.test/" + bucket + "/" + objectName, nil
}

func (m *memoryStorage) Remove(ctx context.Context, bucket, objectName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed[objectName] = struct{}{}
	if m.failRemove {
		return errors.New("simulated remove failure")
	}
	delete(m.objects, objectName)
	delete(m.modified, objectName)
	return nil
}

func (m *memoryStorage) List(ctx context.Context, bucket string) ([]ports.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.ObjectInfo, 0, len(m.objects))
	for name := range m.objects {
		out = append(out, ports.ObjectInfo{Key: name, LastModified: m.modified[name]})
	}
	return out, nil
}

func (m *memoryStorage) setFailUpload(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failUpload = fail
}

func (m *memoryStorage) setFailRemove(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRemove = fail
}

func (m *memoryStorage) wasRemoved(objectName string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.removed[objectName]
	return ok
}

func (m *memoryStorage) exists(objectName string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[objectName]
	return ok
}

func (m *memoryStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func (m *memoryStorage) setModified(objectName string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modified[objectName] = at
}
