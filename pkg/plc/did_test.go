package plc

import (
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSuffixFixedWidth(t *testing.T) {
	var zeros [32]byte
	assert.Equal(t, strings.Repeat("a", SuffixLen), EncodeSuffix(zeros[:]))

	ones := make([]byte, 32)
	for i := range ones {
		ones[i] = 0xff
	}
	assert.Equal(t, strings.Repeat("7", SuffixLen), EncodeSuffix(ones[:]))
}

func TestFormatDID(t *testing.T) {
	var digest [32]byte
	digest[0] = 0x01

	did := FormatDID(digest)
	require.True(t, strings.HasPrefix(did, DIDPrefix))
	suffix := strings.TrimPrefix(did, DIDPrefix)
	assert.Len(t, suffix, SuffixLen)
	for _, c := range suffix {
		assert.Contains(t, "abcdefghijklmnopqrstuvwxyz234567", string(c))
	}
}

func TestDeriveDID(t *testing.T) {
	payload := []byte("signed operation bytes")
	assert.Equal(t, FormatDID(sha256.Sum256(payload)), DeriveDID(payload))

	// Deterministic across calls, distinct across inputs.
	assert.Equal(t, DeriveDID(payload), DeriveDID(payload))
	assert.NotEqual(t, DeriveDID(payload), DeriveDID([]byte("other bytes")))
}
