package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPurpose: Validates Argon2id hashing produces a verifiable encoded hash and rejects wrong passwords.
// Scope: Unit Test
// Security: One-way salted slow hashing of credentials
// Expected: Correct password verifies, wrong password does not, two hashes of the same password differ (random salt).
// Test Case ID: IDN-01
func TestHasher_HashAndVerify(t *testing.T) {
	h := NewPasswordHasher(65536, 3, 4, 16, 32)

	encoded, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, IsHashed(encoded))

	ok, err := h.Verify("correct horse battery staple", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)

	// Random salt: same input, different encoding
	second, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, encoded, second)
}

// TestPurpose: Validates the hash parser rejects malformed encodings instead of comparing against garbage.
// Scope: Unit Test
// Expected: Verify returns an error for inputs that are not $argon2id$ encodings.
// Test Case ID: IDN-02
func TestHasher_VerifyMalformed(t *testing.T) {
	h := NewPasswordHasher(65536, 3, 4, 16, 32)

	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=3,p=4$salt", // missing hash section
		"$bcrypt$whatever$salt$hash$x",
	} {
		_, err := h.Verify("password", encoded)
		assert.Error(t, err, "encoded=%q", encoded)
	}
}

func TestIsHashed(t *testing.T) {
	assert.False(t, IsHashed("plain secret"))
	assert.True(t, IsHashed("$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"))
}
