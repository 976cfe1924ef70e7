package statuses

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/nowstatus/internal/server/models"
)

type lockedRepository struct {
	next  Repository
	locks map[models.Segment]*sync.RWMutex
}

// Locked serializes saves of a segment with loads and saves of the same
// segment. Different segments never wait on each other.
func Locked(next Repository) Repository {
	locks := make(map[models.Segment]*sync.RWMutex, len(models.AllSegments))
	for _, seg := range models.AllSegments {
		locks[seg] = &sync.RWMutex{}
	}
	return &lockedRepository{next: next, locks: locks}
}

func (r *lockedRepository) Save(ctx context.Context, seg models.Segment, st models.Status) error {
	mu, ok := r.locks[seg]
	if !ok {
		return checkSegment(seg)
	}
	mu.Lock()
	defer mu.Unlock()
	return r.next.Save(ctx, seg, st)
}

func (r *lockedRepository) Load(ctx context.Context, seg models.Segment) (models.Status, error) {
	mu, ok := r.locks[seg]
	if !ok {
		return models.Status{}, checkSegment(seg)
	}
	mu.RLock()
	defer mu.RUnlock()
	return r.next.Load(ctx, seg)
}
