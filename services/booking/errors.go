package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotTaken means the chosen provider is busy and no alternative is free.
	ErrSlotTaken = errors.New("slot is no longer available")
	// ErrNoProviders means no active provider matched the search.
	ErrNoProviders = errors.New("no providers available")
	// ErrInvalidWindow rejects a booking whose end is not after its start.
	ErrInvalidWindow = errors.New("booking end must be after start")
)

// ConflictError is returned by the direct booking API when the requested
// window overlaps an existing booking of the provider.
type ConflictError struct {
	ProviderID string
	BookingID  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("provider %s already has booking %s in that window", e.ProviderID, e.BookingID)
}

// Is lets errors.Is(err, ErrSlotTaken) match a conflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrSlotTaken
}
