package ports

// PasswordHasher performs one-way credential hashing and verification.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Compare reports whether plain hashes to hash.
	Compare(hash, plain string) bool
}
