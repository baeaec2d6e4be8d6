package domain

// Metadata keys written for a delegated staff member.
const (
	StaffEmail        = "staffEmail"
	StaffPhone        = "staffPhone"
	StaffCountryCode  = "staffCountryCode"
	StaffName         = "staffName"
	StaffRole         = "staffRole"
	StaffAccountEmail = "staffAccountEmail"
	StaffAccountID    = "staffAccountId"
	StaffPhoto        = "staffPhoto"
)

// StaffKeyPrefix marks metadata keys belonging to the staff shape. Any key
// carrying it selects the staff variant.
const StaffKeyPrefix = "staff"
