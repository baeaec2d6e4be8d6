package domain

// Metadata keys written for an account owner (client account).
const (
	OwnerEmail          = "accountEmail"
	OwnerPhone          = "accountPhone"
	OwnerCompany        = "accountCompany"
	OwnerCountryCode    = "accountCountryCode"
	OwnerSubscriptionID = "accountSubscriptionId"
	OwnerProof          = "accountProof"
	OwnerName           = "accountName"
	OwnerType           = "accountType"
	OwnerAccountID      = "accountId"
)

// OwnerKeyPrefix marks metadata keys belonging to the owner shape.
const OwnerKeyPrefix = "account"

// Defaults applied when the owner fields are absent.
const (
	DefaultSubscription = "free"
	DefaultAccountType  = "client_account"
	DefaultRole         = "admin"
	DefaultDisplayName  = "User"
	StatusActive        = "Active"
)
