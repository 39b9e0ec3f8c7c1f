package auth

import "time"

// Claims is the information extracted from a verified credential.
type Claims struct {
	SubjectID string
	Email     string
	ExpiresAt time.Time
}

// Identity is the resolved account behind a credential, as carried in
// request context. It is deliberately small; handlers that need the
// full profile load it themselves.
type Identity struct {
	ID    string
	Name  string
	Email string
	Admin bool
}
