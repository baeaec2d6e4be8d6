package dto

import (
	"time"

	"github.com/spec-kit/dashboard-session/internal/domain"
	"github.com/spec-kit/dashboard-session/internal/identity"
)

// IdentityResponse is the canonical identity with its derived accessors.
type IdentityResponse struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	FormattedPhone    string     `json:"formatted_phone"`
	PhoneE164         string     `json:"phone_e164,omitempty"`
	Company           string     `json:"company"`
	CountryCode       string     `json:"country_code"`
	Subscription      string     `json:"subscription"`
	IsPremiumOrHigher bool       `json:"is_premium_or_higher"`
	Proof             string     `json:"proof"`
	Type              string     `json:"type"`
	Name              string     `json:"name"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
	Hash              string     `json:"hash"`
	AccountID         string     `json:"account_id"`
	Role              string     `json:"role"`
	OwnerEmail        string     `json:"owner_email"`
	Photo             string     `json:"photo,omitempty"`
	Status            string     `json:"status"`
	Variant           string     `json:"variant"`
	IsStaff           bool       `json:"is_staff"`
}

// NewIdentityResponse maps a domain identity.
func NewIdentityResponse(id domain.Identity) IdentityResponse {
	resp := IdentityResponse{
		ID:                id.ID,
		Email:             id.Email,
		Phone:             id.Phone,
		FormattedPhone:    id.FormattedPhone(),
		PhoneE164:         identity.E164Phone(id),
		Company:           id.Company,
		CountryCode:       id.CountryCode,
		Subscription:      id.Subscription,
		IsPremiumOrHigher: id.IsPremiumOrHigher(),
		Proof:             id.Proof,
		Type:              id.Type,
		Name:              id.Name,
		Hash:              id.Hash,
		AccountID:         id.AccountID,
		Role:              id.Role,
		OwnerEmail:        id.OwnerEmail,
		Photo:             id.Photo,
		Status:            id.Status(),
		Variant:           string(id.Variant),
		IsStaff:           id.IsStaff(),
	}
	if !id.CreatedAt.IsZero() {
		created := id.CreatedAt.UTC()
		resp.CreatedAt = &created
	}
	return resp
}
