package search

import (
	"crypto/sha256"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plchunter/plchunter/pkg/plc"
)

// Incremental finalization must agree with hashing the whole message from
// scratch, for every prefix/suffix split around a block boundary.
func TestPrefixHasherMatchesFullHash(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, tc := range []struct {
		name      string
		prefixLen int
		sigLen    int
		suffixLen int
	}{
		{"short prefix", 5, 86, 30},
		{"no prefix", 0, 86, 12},
		{"exact block", 64, 86, 0},
		{"partial block", 100, 86, 40},
		{"many blocks", 517, 86, 64},
		{"tiny sig", 200, 1, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			template := make([]byte, tc.prefixLen+tc.sigLen+tc.suffixLen)
			rng.Read(template)
			span := plc.SigSpan{Offset: tc.prefixLen, Length: tc.sigLen}

			hasher, err := NewPrefixHasher(template, span)
			require.NoError(t, err)
			fin := hasher.Fork()

			var digest [32]byte
			for i := 0; i < 200; i++ {
				sig := make([]byte, tc.sigLen)
				rng.Read(sig)

				require.NoError(t, fin.Sum(sig, &digest))

				full := append([]byte(nil), template[:tc.prefixLen]...)
				full = append(full, sig...)
				full = append(full, template[tc.prefixLen+tc.sigLen:]...)
				assert.Equal(t, sha256.Sum256(full), digest)
			}
		})
	}
}

func TestPrefixHasherSharedAcrossForks(t *testing.T) {
	template := make([]byte, 300)
	rand.New(rand.NewSource(2)).Read(template)
	span := plc.SigSpan{Offset: 150, Length: 86}

	hasher, err := NewPrefixHasher(template, span)
	require.NoError(t, err)

	sig := make([]byte, 86)
	var a, b [32]byte
	require.NoError(t, hasher.Fork().Sum(sig, &a))
	require.NoError(t, hasher.Fork().Sum(sig, &b))
	assert.Equal(t, a, b)
}

func TestNewPrefixHasherRejectsBadSpan(t *testing.T) {
	template := make([]byte, 100)

	for name, span := range map[string]plc.SigSpan{
		"negative offset": {Offset: -1, Length: 10},
		"zero length":     {Offset: 10, Length: 0},
		"past the end":    {Offset: 90, Length: 20},
	} {
		_, err := NewPrefixHasher(template, span)
		assert.Error(t, err, name)
	}
}
