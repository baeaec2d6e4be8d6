package domain

// Store keys shared by every component that reads or writes the key-value store.
const (
	KeyAccessCredential   = "access_token"
	KeySessionCredential  = "session_token"
	KeyProofOfIdentity    = "proof_of_identity"
	KeyAccountID          = "account_id"
	KeyRawAccountRecord   = "account_record"
	KeyLanguagePreference = "language"
)

// SessionKeys are cleared on sign-out. The language preference survives.
var SessionKeys = []string{
	KeyAccessCredential,
	KeySessionCredential,
	KeyProofOfIdentity,
	KeyAccountID,
	KeyRawAccountRecord,
}
