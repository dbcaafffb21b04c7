package usecase

import "time"

const (
	// DefaultConversationTTL bounds how long a pending payment capture
	// survives without an answer before falling back to Idle.
	DefaultConversationTTL = time.Hour

	// AlertLogLimit is the default page size for recent alert listings.
	AlertLogLimit = 50
)
