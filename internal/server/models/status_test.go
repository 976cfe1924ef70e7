package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/nowstatus/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSegment(t *testing.T) {
	tests := []struct {
		in      string
		want    Segment
		wantErr bool
	}{
		{in: "family", want: SegmentFamily},
		{in: "friend", want: SegmentFriend},
		{in: "random", want: SegmentRandom},
		{in: "Family", wantErr: true},
		{in: "RANDOM", wantErr: true},
		{in: "", wantErr: true},
		{in: "admin", wantErr: true},
		{in: " family", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSegment(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrorInvalidSegment))
				assert.True(t, errors.Is(err, common.ErrorValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSegment_PrivilegedAndLabel(t *testing.T) {
	assert.True(t, SegmentFamily.Privileged())
	assert.True(t, SegmentFriend.Privileged())
	assert.False(t, SegmentRandom.Privileged())

	assert.Equal(t, "Family", SegmentFamily.Label())
	assert.Equal(t, "Friend", SegmentFriend.Label())
	assert.Equal(t, "Random", SegmentRandom.Label())
	assert.Equal(t, "Unknown", Segment("x").Label())
}

func TestStatus_IsAbsent(t *testing.T) {
	assert.True(t, Status{}.IsAbsent())
	assert.False(t, Status{Title: "t"}.IsAbsent())
	assert.False(t, Status{Text: "t"}.IsAbsent())
	assert.False(t, Status{Image: "aGk="}.IsAbsent())
}

func TestStatus_Validate_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		wantErr bool
	}{
		{name: "empty", status: Status{}},
		{name: "title at limit", status: Status{Title: strings.Repeat("a", MaxTitleLen)}},
		{name: "title over limit", status: Status{Title: strings.Repeat("a", MaxTitleLen+1)}, wantErr: true},
		{name: "multibyte title at limit", status: Status{Title: strings.Repeat("ё", MaxTitleLen)}},
		{name: "text at limit", status: Status{Text: strings.Repeat("b", MaxTextLen)}},
		{name: "text over limit", status: Status{Text: strings.Repeat("b", MaxTextLen+1)}, wantErr: true},
		{name: "image at limit", status: Status{Image: strings.Repeat("A", MaxImageLen)}},
		{name: "image over limit", status: Status{Image: strings.Repeat("A", MaxImageLen+1)}, wantErr: true},
		{name: "NUL in title", status: Status{Title: "a\x00b"}, wantErr: true},
		{name: "NUL in text", status: Status{Text: "\u0000"}, wantErr: true},
		{name: "NUL in image", status: Status{Image: "aGk=\x00"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.status.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrorValidation))
				return
			}
			assert.NoError(t, err)
		})
	}
}
