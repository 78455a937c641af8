package engine

import (
	"time"

	"github.com/google/uuid"
)

// ActivityEvent is one unit of user activity flowing into the
// progression pipeline. ID is the at-least-once delivery dedupe key:
// replaying an event with an ID the pipeline has already processed is a
// silent no-op.
type ActivityEvent struct {
	ID         uuid.UUID
	UserKey    string
	Category   Category
	Count      int
	OccurredAt time.Time
}

// NewActivityEvent builds an event with a fresh dedupe ID. Count below
// 1 is normalized to 1.
func NewActivityEvent(userKey string, cat Category, count int, occurredAt time.Time) ActivityEvent {
	if count < 1 {
		count = 1
	}
	return ActivityEvent{
		ID:         uuid.New(),
		UserKey:    userKey,
		Category:   cat,
		Count:      count,
		OccurredAt: occurredAt,
	}
}
