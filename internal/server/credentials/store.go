// Package credentials holds the process-wide publishing and segment secrets.
package credentials

import (
	"fmt"

	"github.com/dmitrijs2005/nowstatus/internal/common"
	"github.com/dmitrijs2005/nowstatus/internal/server/models"
)

// Store is immutable once built.
type Store struct {
	admin   string
	segment map[models.Segment]string
}

// New builds a Store. Every secret is required; an empty one is a
// configuration error and the server must not start.
func New(admin, family, friend string) (*Store, error) {
	required := []struct {
		env   string
		value string
	}{
		{common.EnvAdminSecret, admin},
		{common.EnvFamilySecret, family},
		{common.EnvFriendSecret, friend},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, fmt.Errorf("%w: %s", common.ErrorMissingSecret, r.env)
		}
	}

	return &Store{
		admin: admin,
		segment: map[models.Segment]string{
			models.SegmentFamily: family,
			models.SegmentFriend: friend,
		},
	}, nil
}

// AdminSecret returns the secret authorizing publication.
func (s *Store) AdminSecret() string {
	return s.admin
}

// SegmentSecret returns the read secret of a privileged segment.
// ok is false for the public segment.
func (s *Store) SegmentSecret(seg models.Segment) (secret string, ok bool) {
	secret, ok = s.segment[seg]
	return secret, ok
}

// String never prints secrets.
func (s *Store) String() string {
	return "credentials.Store{redacted}"
}
