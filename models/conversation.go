package models

import (
	"fmt"
	"strings"
	"time"
)

type ConversationStatus string

const (
	StatusOpen   ConversationStatus = "open"
	StatusClosed ConversationStatus = "closed"
)

// BookingState tracks the booking negotiation held on a conversation.
type BookingState string

const (
	StateUnset                  BookingState = ""
	StateCollecting             BookingState = "collecting"
	StateAwaitingProviderChoice BookingState = "awaiting_provider_choice"
	StateAwaitingAddressChoice  BookingState = "awaiting_address_choice"
	StateAwaitingConfirm        BookingState = "awaiting_confirm"
)

func (s BookingState) Valid() bool {
	switch s {
	case StateUnset, StateCollecting, StateAwaitingProviderChoice, StateAwaitingAddressChoice, StateAwaitingConfirm:
		return true
	}
	return false
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string    `bson:"role" json:"role"`
	Content string    `bson:"content" json:"content"`
	At      time.Time `bson:"at" json:"at"`
}

// Draft field names, in the order they are asked for.
const (
	DraftService  = "service"
	DraftIssue    = "issue"
	DraftDateTime = "date_time"
	DraftAddress  = "address"
)

// BookingDraft accumulates booking details across turns.
type BookingDraft struct {
	Service      string   `bson:"service,omitempty" json:"service,omitempty"`
	Issue        string   `bson:"issue,omitempty" json:"issue,omitempty"`
	DateTime     string   `bson:"date_time,omitempty" json:"date_time,omitempty"`
	Address      *Address `bson:"address,omitempty" json:"address,omitempty"`
	ProviderID   string   `bson:"provider_id,omitempty" json:"provider_id,omitempty"`
	ProviderName string   `bson:"provider_name,omitempty" json:"provider_name,omitempty"`
}

// Empty reports whether no booking field has been filled yet.
func (d BookingDraft) Empty() bool {
	return d.Service == "" && d.Issue == "" && d.DateTime == "" && d.Address == nil && d.ProviderID == ""
}

// Merge fills the fields of d that are still empty from other. Filled fields
// are never overwritten.
func (d *BookingDraft) Merge(other BookingDraft) {
	if d.Service == "" {
		d.Service = other.Service
	}
	if d.Issue == "" {
		d.Issue = other.Issue
	}
	if d.DateTime == "" {
		d.DateTime = other.DateTime
	}
	if d.Address == nil && other.Address != nil {
		a := *other.Address
		d.Address = &a
	}
	if d.ProviderID == "" && other.ProviderID != "" {
		d.ProviderID = other.ProviderID
		d.ProviderName = other.ProviderName
	}
}

// Missing lists the required fields that are still empty.
func (d BookingDraft) Missing() []string {
	var missing []string
	if d.Service == "" {
		missing = append(missing, DraftService)
	}
	if d.Issue == "" {
		missing = append(missing, DraftIssue)
	}
	if d.DateTime == "" {
		missing = append(missing, DraftDateTime)
	}
	if d.Address == nil {
		missing = append(missing, DraftAddress)
	}
	return missing
}

// Start parses the draft's ISO-8601 date_time.
func (d BookingDraft) Start() (time.Time, error) {
	if d.DateTime == "" {
		return time.Time{}, fmt.Errorf("draft has no date_time")
	}
	return time.Parse(time.RFC3339, d.DateTime)
}

// ProviderOption is one numbered provider choice offered to the user.
type ProviderOption struct {
	ProviderID     string   `bson:"provider_id" json:"provider_id"`
	Name           string   `bson:"name" json:"name"`
	DistanceMeters *float64 `bson:"distance_m,omitempty" json:"distance_m,omitempty"`
	EtaMinutes     *int     `bson:"eta_min,omitempty" json:"eta_min,omitempty"`
	Rating         float64  `bson:"rating" json:"rating"`
	Available      bool     `bson:"available" json:"available"`
}

// Negotiation is the transient booking state embedded in a conversation.
type Negotiation struct {
	Draft           *BookingDraft    `bson:"booking,omitempty" json:"booking,omitempty"`
	State           BookingState     `bson:"booking_state,omitempty" json:"booking_state,omitempty"`
	ProviderOptions []ProviderOption `bson:"provider_options,omitempty" json:"provider_options,omitempty"`
	AddressOptions  []Address        `bson:"address_options,omitempty" json:"address_options,omitempty"`
}

// Conversation is a session's message log. A phone has at most one open
// conversation at a time.
type Conversation struct {
	SessionID   string             `bson:"session_id" json:"session_id"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Status      ConversationStatus `bson:"status" json:"status"`
	Messages    []Message          `bson:"messages" json:"messages"`
	StartedAt   time.Time          `bson:"started_at" json:"started_at"`
	EndedAt     *time.Time         `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
	Negotiation `bson:",inline"`
}

// Transcript joins the message log into "role: content" lines.
func (c *Conversation) Transcript() string {
	var sb strings.Builder
	for i, m := range c.Messages {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(m.Role)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
	}
	return sb.String()
}

// Recent returns up to n of the latest messages.
func (c *Conversation) Recent(n int) []Message {
	if len(c.Messages) <= n {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-n:]
}
