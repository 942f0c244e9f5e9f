package models

import (
	"strings"
	"time"
)

// RegistrationField names the registration question a user still has to answer.
type RegistrationField string

const (
	FieldNone     RegistrationField = ""
	FieldName     RegistrationField = "name"
	FieldLocation RegistrationField = "location"
	FieldPolicy   RegistrationField = "policy"
)

func (f RegistrationField) Valid() bool {
	switch f {
	case FieldNone, FieldName, FieldLocation, FieldPolicy:
		return true
	}
	return false
}

// Address is a saved street address.
type Address struct {
	Street    string `bson:"street" json:"street"`
	Suburb    string `bson:"suburb,omitempty" json:"suburb,omitempty"`
	City      string `bson:"city,omitempty" json:"city,omitempty"`
	IsDefault bool   `bson:"is_default" json:"is_default"`
}

// String renders the non-empty parts of the address separated by commas.
func (a Address) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Street, a.Suburb, a.City} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// SameAs compares addresses ignoring case and the default flag.
func (a Address) SameAs(b Address) bool {
	return strings.EqualFold(a.String(), b.String())
}

// User is a consumer identified by their phone token.
type User struct {
	Phone        string            `bson:"phone" json:"phone"`
	Name         string            `bson:"name" json:"name"`
	Location     string            `bson:"location" json:"location"`
	Coords       *GeoPoint         `bson:"coords,omitempty" json:"coords,omitempty"`
	AgreedPolicy bool              `bson:"agreed_policy" json:"agreed_policy"`
	PendingField RegistrationField `bson:"pending_field" json:"pending_field"`
	Addresses    []Address         `bson:"addresses,omitempty" json:"addresses,omitempty"`
	CreatedAt    time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `bson:"updated_at" json:"updated_at"`
}

// NextMissingField returns the first unanswered registration field, in the
// order name, location, policy.
func (u *User) NextMissingField() RegistrationField {
	switch {
	case strings.TrimSpace(u.Name) == "":
		return FieldName
	case strings.TrimSpace(u.Location) == "" && !u.Coords.Valid():
		return FieldLocation
	case !u.AgreedPolicy:
		return FieldPolicy
	}
	return FieldNone
}

// Registered reports whether every registration field has been answered.
func (u *User) Registered() bool {
	return u.NextMissingField() == FieldNone && u.PendingField == FieldNone
}

// Reset clears the registration fields but keeps the identity and saved addresses.
func (u *User) Reset() {
	u.Name = ""
	u.Location = ""
	u.Coords = nil
	u.AgreedPolicy = false
	u.PendingField = FieldNone
}

// SavedAddress picks the address a booking should use without asking. When
// several non-default addresses exist it returns them as choices instead.
func (u *User) SavedAddress() (addr *Address, choices []Address) {
	for _, a := range u.Addresses {
		if a.IsDefault {
			a := a
			return &a, nil
		}
	}
	switch len(u.Addresses) {
	case 0:
		return nil, nil
	case 1:
		a := u.Addresses[0]
		return &a, nil
	}
	return nil, append([]Address(nil), u.Addresses...)
}

// RememberAddress appends addr to the saved list unless an equal one exists.
func (u *User) RememberAddress(addr Address) bool {
	for _, a := range u.Addresses {
		if a.SameAs(addr) {
			return false
		}
	}
	addr.IsDefault = false
	u.Addresses = append(u.Addresses, addr)
	return true
}
