package hash

import "testing"

func TestBcryptHashAndVerify(t *testing.T) {
	h := NewBcrypt(4, "pepper")

	hashed, err := h.Hash("hunter2hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if !h.Verify(string(hashed), "hunter2hunter2") {
		t.Fatal("expected hash to verify against its plaintext")
	}
	if h.Verify(string(hashed), "wrongpassword") {
		t.Fatal("wrong plaintext must not verify")
	}

	// A different pepper invalidates the hash.
	other := NewBcrypt(4, "other-pepper")
	if other.Verify(string(hashed), "hunter2hunter2") {
		t.Fatal("hash must be bound to the pepper")
	}
}

func TestHMACSHA256IsDeterministic(t *testing.T) {
	h := NewHMACSHA256("secret")

	a, err := h.Hash("123456")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := h.Hash("123456")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	// Deterministic digests double as lookup keys.
	if string(a) != string(b) {
		t.Fatalf("expected identical digests, got %q and %q", a, b)
	}

	if !h.Verify(string(a), "123456") {
		t.Fatal("expected digest to verify")
	}
	if h.Verify(string(a), "654321") {
		t.Fatal("different plaintext must not verify")
	}

	otherKey, err := NewHMACSHA256("another-secret").Hash("123456")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if string(otherKey) == string(a) {
		t.Fatal("digest must be bound to the key")
	}
}
