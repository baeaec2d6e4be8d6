package domain

import "errors"

// None of these reach the actor; every one of them ends in Allow, a fallback
// credential, a best-effort identity or a sign-in redirect.
var (
	ErrCredentialExpired      = errors.New("access credential expired")
	ErrCredentialMalformed    = errors.New("credential malformed")
	ErrSessionIncomplete      = errors.New("session state incomplete")
	ErrRemoteCheckFailed      = errors.New("remote session check failed")
	ErrMalformedAccountRecord = errors.New("account record has neither owner nor staff fields")
)

// ErrNotFound is returned by stores when a key holds no value.
var ErrNotFound = errors.New("not found")
