package models

import "time"

// Booking is a committed reservation of a provider for [Start, End).
type Booking struct {
	ID         string    `bson:"id" json:"id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	ProviderID string    `bson:"provider_id" json:"provider_id"`
	Start      time.Time `bson:"start" json:"start"`
	End        time.Time `bson:"end" json:"end"`
	Service    string    `bson:"service,omitempty" json:"service,omitempty"`
	Address    string    `bson:"address,omitempty" json:"address,omitempty"`
	Notes      string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Touching intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// BookingRequest is the payload of the direct booking API.
type BookingRequest struct {
	UserID     string    `json:"user_id" binding:"required"`
	ProviderID string    `json:"provider_id" binding:"required"`
	Start      time.Time `json:"start" binding:"required"`
	End        time.Time `json:"end" binding:"required"`
	Notes      string    `json:"notes"`
}
