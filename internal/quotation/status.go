package quotation

import "time"

// transitions lists the allowed status moves. APPROVED and REJECTED are
// terminal for the client; the issuing side may explicitly reopen them to
// SENT.
var transitions = map[QuotationStatus][]QuotationStatus{
	StatusDraft:    {StatusSent},
	StatusSent:     {StatusApproved, StatusRejected, StatusExpired},
	StatusApproved: {StatusSent},
	StatusRejected: {StatusSent},
}

// CanTransition reports whether from → to is an allowed status move.
func CanTransition(from, to QuotationStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// EffectiveStatus derives the client-facing status from the stored one.
// Expiry is observed, not stored: a SENT quotation past its validity reads as
// EXPIRED even while the stored field still says SENT. The clock is always a
// parameter so the derivation stays testable with fixed timestamps.
func EffectiveStatus(stored QuotationStatus, validUntil time.Time, now time.Time) QuotationStatus {
	if stored == StatusSent && !validUntil.IsZero() && now.After(endOfDay(validUntil)) {
		return StatusExpired
	}
	return stored
}

// endOfDay anchors expiry to the last instant of the valid-until date, so a
// quotation stays actionable through its stated final day.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
