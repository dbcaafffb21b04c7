package domain

import "time"

// AlertEntry is one recorded outbound notification. Entries are append-only
// and exist so the operator can audit what was sent and when.
type AlertEntry struct {
	ID      string
	Service ServiceName
	Kind    AlertKind
	Text    string
	SentAt  time.Time
}
