package service

import (
	"context"
	"log"
	"time"

	"github.com/tourcat/tourism-api/internal/repository/ports"
)

// BlobSweeper reclaims orphaned blobs: objects left behind when a record
// insert failed after its upload, or when a best-effort delete was dropped.
// Objects younger than the grace window are skipped so the sweep never races
// an in-flight create between upload and insert.
type BlobSweeper struct {
	records ports.TourismRepository
	blobs   *BlobStore
	grace   time.Duration
	now     func() time.Time
}

func NewBlobSweeper(records ports.TourismRepository, blobs *BlobStore, grace time.Duration) *BlobSweeper {
	if grace <= 0 {
		grace = time.Hour
	}
	return &BlobSweeper{records: records, blobs: blobs, grace: grace, now: time.Now}
}

// Run sweeps on the given interval until the context is cancelled.
func (s *BlobSweeper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.SweepOnce(ctx)
			if err != nil {
				log.Printf("blob sweep: %v", err)
				continue
			}
			if deleted > 0 {
				log.Printf("blob sweep: reclaimed %d orphaned blobs", deleted)
			}
		}
	}
}

// SweepOnce deletes every bucket object past the grace window that no
// tourism record references. Returns the number of objects removed.
func (s *BlobSweeper) SweepOnce(ctx context.Context) (int, error) {
	objects, err := s.blobs.ListObjects(ctx)
	if err != nil {
		return 0, err
	}
	urls, err := s.records.ListImageURLs(ctx)
	if err != nil {
		return 0, err
	}

	referenced := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if name := objectNameFromURL(u); name != "" {
			referenced[name] = struct{}{}
		}
	}

	cutoff := s.now().Add(-s.grace)
	deleted := 0
	for _, object := range objects {
		if _, ok := referenced[object.Key]; ok {
			continue
		}
		if object.LastModified.After(cutoff) {
			continue
		}
		s.blobs.RemoveObject(ctx, object.Key)
		deleted++
	}
	return deleted, nil
}
