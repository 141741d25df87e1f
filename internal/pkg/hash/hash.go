package hash

// Hash hashes plaintext secrets and verifies plaintexts against stored hashes.
type Hash interface {
	// Hash returns the hashed form of plain.
	Hash(plain string) ([]byte, error)

	// Verify reports whether plain matches the stored hashed value.
	Verify(hashed, plain string) bool
}
