package consensus

import "time"

// auditTrail accumulates the append-only event log for one consensus run.
type auditTrail struct {
	now     func() time.Time
	entries []AuditEntry
}

func newAuditTrail(clock func() time.Time) *auditTrail {
	if clock == nil {
		clock = time.Now
	}
	return &auditTrail{now: clock}
}

func (t *auditTrail) append(event AuditEventType, description string, data map[string]any) {
	t.entries = append(t.entries, AuditEntry{
		Timestamp:   t.now(),
		Event:       event,
		Description: description,
		Data:        data,
	})
}

// Entries returns the trail in insertion order.
func (t *auditTrail) Entries() []AuditEntry {
	return append([]AuditEntry(nil), t.entries...)
}
