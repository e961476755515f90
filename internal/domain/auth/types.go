package auth

import "time"

// Config drives token verification. Tokens are issued by the managed
// datastore's auth service and signed with a shared HS256 secret.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
}

// Claims are extracted from a verified access token.
type Claims struct {
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}
