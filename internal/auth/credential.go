package auth

// Authenticator checks a submitted admin password.
type Authenticator interface {
	Check(password string) bool
}

// PlaintextSecret compares against a shared value with plain string equality.
// It is neither hashed nor rate limited; that is the existing trust model for
// the admin controls and is kept as is.
type PlaintextSecret string

// Check implements Authenticator.
func (s PlaintextSecret) Check(password string) bool {
	return string(s) != "" && password == string(s)
}

// HashedSecret compares against a bcrypt hash.
type HashedSecret string

// Check implements Authenticator.
func (s HashedSecret) Check(password string) bool {
	return s != "" && MatchesHash(string(s), password)
}

// NewAuthenticator prefers the bcrypt hash when one is configured.
func NewAuthenticator(password, passwordHash string) Authenticator {
	if passwordHash != "" {
		return HashedSecret(passwordHash)
	}
	return PlaintextSecret(password)
}
