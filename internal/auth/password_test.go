package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_AndCheck_OK(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$pbkdf2-sha256$29000$"))
	require.NotContains(t, hash, "correct horse")

	require.True(t, CheckPassword("correct horse", hash))
	require.False(t, CheckPassword("wrong horse", hash))
}

func TestHashPassword_SaltIsRandom(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same")
	require.NoError(t, err)
	h2, err := HashPassword("same")
	require.NoError(t, err)

	require.NotEqual(t, h1, h2)
	require.True(t, CheckPassword("same", h1))
	require.True(t, CheckPassword("same", h2))
}

func TestCheckPassword_RespectsStoredIterations(t *testing.T) {
	t.Parallel()

	hash := encodeHash("pw", []byte("0123456789abcdef"), 1000)
	require.True(t, strings.HasPrefix(hash, "$pbkdf2-sha256$1000$"))
	require.True(t, CheckPassword("pw", hash))
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	for _, h := range []string{
		"",
		"plain",
		"$pbkdf2-sha256$abc$c2FsdA$a2V5",
		"$pbkdf2-sha256$0$c2FsdA$a2V5",
		"$bcrypt$10$c2FsdA$a2V5",
		"$pbkdf2-sha256$1000$!!!$a2V5",
		"$pbkdf2-sha256$1000$c2FsdA$",
	} {
		require.False(t, CheckPassword("pw", h), "hash %q", h)
	}
}
