package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAndCompare(t *testing.T) {
	hash, err := GenerateFromPassword("password123")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.NotContains(t, hash, "password123")

	ok, err := CompareHashAndPassword(hash, "password123")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = CompareHashAndPassword(hash, "wrong")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestGenerate_UniqueSalts(t *testing.T) {
	a, err := GenerateFromPassword("password123")
	assert.NoError(t, err)
	b, err := GenerateFromPassword("password123")
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCompare_InvalidHashFormat(t *testing.T) {
	for _, hash := range []string{"", "plaintext", "$bcrypt$something", "$argon2id$v=19$broken"} {
		_, err := CompareHashAndPassword(hash, "password123")
		assert.ErrorIs(t, err, ErrInvalidHash)
	}
}
