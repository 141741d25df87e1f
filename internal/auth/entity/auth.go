package entity

import "time"

// Account is a registered user. Accounts are never deleted; the verified
// flag flips to true exactly once and the credential may be overwritten by a
// password reset.
type Account struct {
	ID         int64
	Email      string
	FullName   string
	Credential string
	Verified   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Challenge is one outstanding one-time code, keyed by (purpose, email).
// CodeHash holds the HMAC of the 6-digit code; the plaintext only travels to
// the delivery collaborator.
type Challenge struct {
	Email     string
	Purpose   ChallengePurpose
	CodeHash  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Session is an issued access token. TokenHash holds the HMAC of the opaque
// token handed to the client.
type Session struct {
	TokenHash string
	Email     string
	ExpiresAt time.Time
}

// RefreshToken is an issued refresh identifier, stored hashed like sessions.
type RefreshToken struct {
	TokenHash string
	Email     string
	ExpiresAt time.Time
}
