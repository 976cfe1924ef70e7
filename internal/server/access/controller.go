// Package access decides who may publish and which segment a reader sees.
package access

import (
	"github.com/dmitrijs2005/nowstatus/internal/common"
	"github.com/dmitrijs2005/nowstatus/internal/cryptox"
	"github.com/dmitrijs2005/nowstatus/internal/server/credentials"
	"github.com/dmitrijs2005/nowstatus/internal/server/models"
)

// Controller compares claimed tokens against digests of the configured
// secrets, never against the secrets themselves.
type Controller struct {
	admin   cryptox.Digest
	segment map[models.Segment]cryptox.Digest
}

func NewController(store *credentials.Store) *Controller {
	c := &Controller{
		admin:   cryptox.DigestOf(store.AdminSecret()),
		segment: make(map[models.Segment]cryptox.Digest, 2),
	}
	for _, seg := range models.AllSegments {
		if secret, ok := store.SegmentSecret(seg); ok {
			c.segment[seg] = cryptox.DigestOf(secret)
		}
	}
	return c
}

// AuthorizePublish returns common.ErrorUnauthorized unless token is the
// admin secret.
func (c *Controller) AuthorizePublish(token string) error {
	if token == "" || !c.admin.Matches(token) {
		return common.ErrorUnauthorized
	}
	return nil
}

// ResolveView returns the segment the caller may actually read. A privileged
// segment requested with a wrong or missing token degrades to the public one.
func (c *Controller) ResolveView(requested models.Segment, token string) models.Segment {
	if !requested.Privileged() || token == "" {
		return models.SegmentRandom
	}
	d, ok := c.segment[requested]
	if !ok || !d.Matches(token) {
		return models.SegmentRandom
	}
	return requested
}
