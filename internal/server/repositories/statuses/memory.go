package statuses

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/nowstatus/internal/server/models"
)

// MemoryRepository keeps statuses in process memory. Nothing survives a
// restart.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[models.Segment]models.Status
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[models.Segment]models.Status, len(models.AllSegments))}
}

func (r *MemoryRepository) Save(ctx context.Context, seg models.Segment, st models.Status) error {
	if err := checkSegment(seg); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[seg] = st
	return nil
}

func (r *MemoryRepository) Load(ctx context.Context, seg models.Segment) (models.Status, error) {
	if err := checkSegment(seg); err != nil {
		return models.Status{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data[seg], nil
}
