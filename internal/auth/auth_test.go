package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashKey_StableAndSalted(t *testing.T) {
	a := HashKey("gp_abc", "salt1")
	assert.Equal(t, a, HashKey("gp_abc", "salt1"))
	assert.NotEqual(t, a, HashKey("gp_abc", "salt2"))
	assert.NotEqual(t, a, HashKey("gp_abd", "salt1"))
	assert.Len(t, a, 64)
}

func TestFingerprintPrompt_Stable(t *testing.T) {
	fp := FingerprintPrompt("What is 2+2?")
	assert.Equal(t, fp, FingerprintPrompt("What is 2+2?"))
	assert.NotEqual(t, fp, FingerprintPrompt("What is 3+3?"))
	assert.Len(t, fp, 64)
}

func TestGenerateKey(t *testing.T) {
	key := GenerateKey()
	assert.True(t, strings.HasPrefix(key, "gp_"))
	assert.Len(t, key, 3+32)
	assert.NotEqual(t, key, GenerateKey())
}
