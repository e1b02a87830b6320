package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rohits-web03/studentvault/internal/models"
	"github.com/rs/zerolog/log"
)

// ErrExportDisabled is returned when no snapshot store is configured.
var ErrExportDisabled = errors.New("snapshot export is not configured")

const snapshotURLTTL = 15 * time.Minute

// SnapshotStore is an object store that can hand out time-limited download links.
type SnapshotStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Snapshot is the exported document. Records are copied as stored, so every
// PII field is still double-encrypted; password digests are omitted.
type Snapshot struct {
	ExportedAt time.Time        `json:"exportedAt"`
	Count      int              `json:"count"`
	Students   []models.Student `json:"students"`
}

type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Count     int       `json:"count"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *StudentService) Export(ctx context.Context) (*ExportResult, error) {
	if s.snapshots == nil {
		return nil, ErrExportDisabled
	}
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	body, err := json.Marshal(Snapshot{ExportedAt: now, Count: len(records), Students: records})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	key := fmt.Sprintf("snapshots/students-%s.json", now.Format("20060102T150405Z"))
	if err := s.snapshots.Put(ctx, key, "application/json", body); err != nil {
		return nil, err
	}
	url, err := s.snapshots.PresignGet(ctx, key, snapshotURLTTL)
	if err != nil {
		return nil, err
	}
	log.Info().Str("key", key).Int("count", len(records)).Msg("Snapshot exported")
	return &ExportResult{Key: key, URL: url, Count: len(records), ExpiresAt: now.Add(snapshotURLTTL)}, nil
}
