// Package statuses persists the single status record of each segment.
//
// Every backend writes title, text and image as one unit, so a reader never
// sees fields from two different publishes. A segment that was never
// published loads as the zero models.Status.
package statuses

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/nowstatus/internal/common"
	"github.com/dmitrijs2005/nowstatus/internal/server/models"
)

type Repository interface {
	Save(ctx context.Context, seg models.Segment, st models.Status) error
	Load(ctx context.Context, seg models.Segment) (models.Status, error)
}

// checkSegment rejects values outside the closed segment set; backends use
// the segment name in paths and keys.
func checkSegment(seg models.Segment) error {
	if !slices.Contains(models.AllSegments, seg) {
		return fmt.Errorf("%w: %q", common.ErrorInvalidSegment, string(seg))
	}
	return nil
}

func storageError(op string, seg models.Segment, err error) error {
	return fmt.Errorf("%w: %s %s: %w", common.ErrorStorage, op, seg, err)
}
