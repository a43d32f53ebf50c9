package ports

// PasswordHasher performs the one-way password transform.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches hash. It never returns an
	// error: a malformed hash is simply a mismatch.
	Verify(password, hash string) bool
}

// TokenIssuer mints bearer tokens for a subject.
type TokenIssuer interface {
	Issue(subjectID string) (string, error)
}

// TokenVerifier resolves a bearer token back to its subject. Any failure is
// reported as domain.ErrInvalidToken.
type TokenVerifier interface {
	Verify(token string) (string, error)
}
