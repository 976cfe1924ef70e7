// Package models holds the server-side domain types: audience segments and
// the status published to each of them.
package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/nowstatus/internal/common"
)

// Size limits, in characters.
const (
	MaxTitleLen = 50
	MaxTextLen  = 500
	MaxImageLen = 14_000_000
)

// Segment is one of the fixed audience categories.
type Segment string

const (
	SegmentFamily Segment = "family"
	SegmentFriend Segment = "friend"
	SegmentRandom Segment = "random"
)

// AllSegments lists every known segment.
var AllSegments = []Segment{SegmentFamily, SegmentFriend, SegmentRandom}

// ParseSegment maps a role name onto a Segment. Only the exact lowercase
// names are accepted.
func ParseSegment(s string) (Segment, error) {
	switch Segment(s) {
	case SegmentFamily:
		return SegmentFamily, nil
	case SegmentFriend:
		return SegmentFriend, nil
	case SegmentRandom:
		return SegmentRandom, nil
	}
	return "", fmt.Errorf("%w: %q", common.ErrorInvalidSegment, s)
}

// Privileged reports whether reading the segment requires a secret.
func (s Segment) Privileged() bool {
	return s == SegmentFamily || s == SegmentFriend
}

// Label is the human readable segment name.
func (s Segment) Label() string {
	switch s {
	case SegmentFamily:
		return "Family"
	case SegmentFriend:
		return "Friend"
	case SegmentRandom:
		return "Random"
	}
	return "Unknown"
}

func (s Segment) String() string { return string(s) }

// Status is the record currently published for a segment.
// The zero value is the absent status.
type Status struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Image string `json:"image"`
}

// IsAbsent reports whether nothing is published, i.e. all fields are empty.
func (s Status) IsAbsent() bool {
	return s.Title == "" && s.Text == "" && s.Image == ""
}

// Validate checks the field size limits. NUL characters are rejected in
// every field; not every backend can store them.
func (s Status) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"title", s.Title}, {"text", s.Text}, {"image", s.Image},
	} {
		if strings.IndexByte(f.value, 0) >= 0 {
			return fmt.Errorf("%w: %s contains a NUL character", common.ErrorValidation, f.name)
		}
	}
	if n := utf8.RuneCountInString(s.Title); n > MaxTitleLen {
		return fmt.Errorf("%w: title has %d characters, limit is %d", common.ErrorValidation, n, MaxTitleLen)
	}
	if n := utf8.RuneCountInString(s.Text); n > MaxTextLen {
		return fmt.Errorf("%w: text has %d characters, limit is %d", common.ErrorValidation, n, MaxTextLen)
	}
	// base64 is ASCII, byte length is enough to reject early
	if len(s.Image) > MaxImageLen {
		if n := utf8.RuneCountInString(s.Image); n > MaxImageLen {
			return fmt.Errorf("%w: image has %d characters, limit is %d", common.ErrorValidation, n, MaxImageLen)
		}
	}
	return nil
}
