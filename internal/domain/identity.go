package domain

import (
	"strings"
	"time"
)

// Identity is the canonical account representation used by the rest of the
// dashboard, whichever raw shape produced it. It is rebuilt on every load.
type Identity struct {
	ID           string
	Email        string
	Phone        string
	Company      string
	CountryCode  string
	Subscription string
	Proof        string
	Type         string
	Name         string
	CreatedAt    time.Time
	Hash         string
	AccountID    string
	Role         string
	OwnerEmail   string
	Photo        string
	Variant      RecordVariant
}

// IsStaff reports whether the identity came from a delegated staff record.
func (i Identity) IsStaff() bool {
	return i.Variant == VariantStaff
}

// IsPremiumOrHigher reports whether the subscription tier is premium or enterprise.
func (i Identity) IsPremiumOrHigher() bool {
	return strings.EqualFold(i.Subscription, "premium") || strings.EqualFold(i.Subscription, "enterprise")
}

// FormattedPhone joins country code and phone with one space.
func (i Identity) FormattedPhone() string {
	if i.Phone == "" {
		return ""
	}
	if i.CountryCode == "" {
		return i.Phone
	}
	return i.CountryCode + " " + i.Phone
}

// Status is always "Active".
// TODO: derive from the account record once upstream tracks suspension.
func (i Identity) Status() string {
	return StatusActive
}
