package profile

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventItemAdded      EventType = "item.added"
	EventItemUpdated    EventType = "item.updated"
	EventItemDeleted    EventType = "item.deleted"
	EventItemsReordered EventType = "items.reordered"
	EventImageUploaded  EventType = "image.uploaded"
	EventImageDeleted   EventType = "image.deleted"
)

// Event announces a committed change to a profile.
type Event struct {
	EventType     EventType  `json:"event_type"`
	UserID        uuid.UUID  `json:"user_id"`
	Collection    Collection `json:"collection,omitempty"`
	ItemID        string     `json:"item_id,omitempty"`
	Version       int64      `json:"version"`
	ImagePublicID string     `json:"image_public_id,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

func NewEvent(t EventType, p *Profile, c Collection, itemID string) Event {
	return Event{
		EventType:  t,
		UserID:     p.UserID,
		Collection: c,
		ItemID:     itemID,
		Version:    p.Version,
		OccurredAt: time.Now().UTC(),
	}
}
