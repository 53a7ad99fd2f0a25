package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateNumericCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateNumericCode(6)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "non-digit in %q", code)
		}
	}

	_, err := GenerateNumericCode(0)
	assert.Error(t, err)
}

func TestGenerateSecureRandomString(t *testing.T) {
	a, err := GenerateSecureRandomString(16)
	require.NoError(t, err)
	b, err := GenerateSecureRandomString(16)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "=")
}
