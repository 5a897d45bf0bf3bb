package quotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to QuotationStatus
		want     bool
	}{
		{StatusDraft, StatusSent, true},
		{StatusSent, StatusApproved, true},
		{StatusSent, StatusRejected, true},
		{StatusSent, StatusExpired, true},
		{StatusApproved, StatusSent, true},
		{StatusRejected, StatusSent, true},
		{StatusDraft, StatusApproved, false},
		{StatusDraft, StatusExpired, false},
		{StatusApproved, StatusRejected, false},
		{StatusExpired, StatusSent, false},
		{StatusExpired, StatusApproved, false},
		{StatusSent, StatusDraft, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestEffectiveStatus(t *testing.T) {
	validUntil := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("sent before validity end stays sent", func(t *testing.T) {
		now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, StatusSent, EffectiveStatus(StatusSent, validUntil, now))
	})

	t.Run("sent stays actionable through the final day", func(t *testing.T) {
		now := time.Date(2026, 3, 15, 23, 30, 0, 0, time.UTC)
		assert.Equal(t, StatusSent, EffectiveStatus(StatusSent, validUntil, now))
	})

	t.Run("sent past the final day reads expired", func(t *testing.T) {
		now := time.Date(2026, 3, 16, 0, 0, 1, 0, time.UTC)
		assert.Equal(t, StatusExpired, EffectiveStatus(StatusSent, validUntil, now))
	})

	t.Run("only sent quotations expire", func(t *testing.T) {
		now := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, StatusDraft, EffectiveStatus(StatusDraft, validUntil, now))
		assert.Equal(t, StatusApproved, EffectiveStatus(StatusApproved, validUntil, now))
		assert.Equal(t, StatusRejected, EffectiveStatus(StatusRejected, validUntil, now))
	})

	t.Run("zero validity never expires", func(t *testing.T) {
		now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, StatusSent, EffectiveStatus(StatusSent, time.Time{}, now))
	})
}
