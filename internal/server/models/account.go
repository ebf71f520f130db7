// Package models defines server-side data models persisted by the account stores.
package models

// Status is the signup-completion state of an account.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
)

// Account is the progressive signup record of a single user, keyed by email.
//
// Status is never stored independently: it is projected from the presence of
// Firstname, Images and GraphicalPassword. Stores persist the projection as a
// cache and refresh it on every write.
type Account struct {
	// ID is the storage surrogate key, zero until the record is persisted.
	ID int64
	// Email uniquely identifies the account and never changes.
	Email string
	// Firstname is the display name; empty means unset.
	Firstname string
	// Images are the attached images in upload order. Password tokens refer
	// to them by index, so the order is significant.
	Images []Image
	// GraphicalPassword holds the canonical encoded tap sequence; empty means unset.
	GraphicalPassword string
}

// Status reports whether the account has completed signup.
func (a *Account) Status() Status {
	if a.Firstname != "" && len(a.Images) > 0 && a.GraphicalPassword != "" {
		return StatusActive
	}
	return StatusPending
}

// IsActive is shorthand for a.Status() == StatusActive.
func (a *Account) IsActive() bool {
	return a.Status() == StatusActive
}

// Clone returns a deep copy so callers can mutate it without touching shared state.
func (a *Account) Clone() *Account {
	c := *a
	if a.Images != nil {
		c.Images = make([]Image, len(a.Images))
		for i, img := range a.Images {
			c.Images[i] = img.Clone()
		}
	}
	return &c
}
