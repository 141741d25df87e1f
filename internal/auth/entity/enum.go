package entity

// ChallengePurpose scopes a challenge to the flow that issued it.
type ChallengePurpose int16

const (
	ChallengePurposeUnknown ChallengePurpose = iota
	ChallengePurposeEmailVerify
	ChallengePurposePasswordReset
)

// String returns the wire representation of the purpose.
func (p ChallengePurpose) String() string {
	switch p {
	case ChallengePurposeEmailVerify:
		return "email_verify"
	case ChallengePurposePasswordReset:
		return "password_reset"
	default:
		return "unknown"
	}
}

// ParseChallengePurpose maps a wire string back to a purpose.
func ParseChallengePurpose(s string) ChallengePurpose {
	switch s {
	case "email_verify":
		return ChallengePurposeEmailVerify
	case "password_reset":
		return ChallengePurposePasswordReset
	default:
		return ChallengePurposeUnknown
	}
}
