package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testHasher(t *testing.T) *Argon2 {
	t.Helper()

	// Minimum costs keep the test fast; production uses Config defaults
	// from the root package.
	hasher, err := NewArgon2(Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	require.NoError(t, err)
	return hasher
}

func TestHashVerifyRoundTrip(t *testing.T) {
	hasher := testHasher(t)

	encoded, err := hasher.Hash("hunter2hunter2")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	ok, err := hasher.Verify("hunter2hunter2", encoded)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = hasher.Verify("wrong password", encoded)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	hasher := testHasher(t)

	a, err := hasher.Hash("same password")
	require.NoError(t, err)
	b, err := hasher.Hash("same password")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	hasher := testHasher(t)

	for _, encoded := range []string{
		"",
		"plainhash",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaA",
		"$argon2id$v=19$m=broken$c2FsdA$aGFzaA",
	} {
		_, err := hasher.Verify("anything", encoded)
		require.Error(t, err, "encoded %q", encoded)
	}
}

func TestNewArgon2Validation(t *testing.T) {
	_, err := NewArgon2(Config{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16})
	require.Error(t, err)

	_, err = NewArgon2(Config{Memory: 8 * 1024, Time: 0, Parallelism: 1, SaltLength: 16, KeyLength: 16})
	require.Error(t, err)

	_, err = NewArgon2(Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16})
	require.Error(t, err)
}
