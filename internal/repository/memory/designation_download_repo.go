// internal/repository/memory/designation_download_repo.go
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"referee-dashboard/internal/domain/referee"
)

// maxPerUser bounds the log kept for each user.
const maxPerUser = 200

// DesignationDownloadRepository keeps the download log in process memory.
// It is used when no database is configured; entries do not survive a restart.
type DesignationDownloadRepository struct {
	mu     sync.RWMutex
	nextID int64
	byUser map[string][]referee.DesignationDownload
	now    func() time.Time
}

func NewDesignationDownloadRepository() *DesignationDownloadRepository {
	return &DesignationDownloadRepository{
		byUser: make(map[string][]referee.DesignationDownload),
		now:    time.Now,
	}
}

func (r *DesignationDownloadRepository) Record(_ context.Context, d *referee.DesignationDownload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	d.ID = r.nextID
	if d.DownloadedAt.IsZero() {
		d.DownloadedAt = r.now()
	}

	entries := append(r.byUser[d.UserID], *d)
	if len(entries) > maxPerUser {
		entries = entries[len(entries)-maxPerUser:]
	}
	r.byUser[d.UserID] = entries
	return nil
}

// ListByUser returns the newest downloads of userID first.
func (r *DesignationDownloadRepository) ListByUser(_ context.Context, userID string, limit int) ([]referee.DesignationDownload, error) {
	r.mu.RLock()
	out := make([]referee.DesignationDownload, len(r.byUser[userID]))
	copy(out, r.byUser[userID])
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DownloadedAt.Equal(out[j].DownloadedAt) {
			return out[i].DownloadedAt.After(out[j].DownloadedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
