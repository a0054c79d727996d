package model

// AuthSession holds the scratch state of one interactive login attempt.
// It is owned by the authenticator, mutated only inside the login state
// machine, and discarded once the attempt ends.
type AuthSession struct {
	Phone      string
	Code       string
	CodeHash   string
	Authorized bool
}

// Reset clears all captured credentials.
func (s *AuthSession) Reset() {
	*s = AuthSession{}
}
