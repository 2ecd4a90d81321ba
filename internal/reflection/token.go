package reflection

import "github.com/google/uuid"

// NewSlideToken generates a fresh correlation token for appends that omit
// slide_id. UUIDv7 embeds a timestamp, so tokens sort roughly by creation
// time, which keeps correlation lookups cheap on the slide_id index.
func NewSlideToken() string {
	return "slide-" + uuid.Must(uuid.NewV7()).String()
}
