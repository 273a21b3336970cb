package plc

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The secp256k1 generator point's did:key form is pinned: it is the weak
// rotation key published alongside every mined identifier.
const weakKeyDID = "did:key:zQ3shVc2UkAfJCdc1TR8E66J85h48P43r93q8jGPkPpjF9Ef9"

func TestFormatDIDKeyGenerator(t *testing.T) {
	point, err := hex.DecodeString(k256GeneratorHex)
	require.NoError(t, err)

	did, err := FormatDIDKey(CurveK256, point)
	require.NoError(t, err)
	assert.Equal(t, weakKeyDID, did)
}

func TestParseDIDKeyRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		curve    Curve
		pointHex string
	}{
		{CurveK256, k256GeneratorHex},
		{CurveP256, p256GeneratorHex},
	} {
		point, err := hex.DecodeString(tc.pointHex)
		require.NoError(t, err)

		did, err := FormatDIDKey(tc.curve, point)
		require.NoError(t, err)

		curve, parsed, err := ParseDIDKey(did)
		require.NoError(t, err, "curve %s", tc.curve)
		assert.Equal(t, tc.curve, curve)
		assert.Equal(t, point, parsed)
	}
}

func TestParseDIDKeyErrors(t *testing.T) {
	point, err := hex.DecodeString(k256GeneratorHex)
	require.NoError(t, err)
	valid, err := FormatDIDKey(CurveK256, point)
	require.NoError(t, err)

	for name, did := range map[string]string{
		"not a did:key":  "did:plc:aaaaaaaaaaaaaaaaaaaaaaaa",
		"no multibase":   "did:key:Q3shVc2UkAfJCdc1TR8E66J85h48P43r93q8jGPkPpjF9Ef9",
		"bad base58":     "did:key:z0OIl",
		"truncated":      valid[:len(valid)-4],
		"empty":          "",
		"prefix only":    "did:key:",
		"multibase only": "did:key:z",
	} {
		_, _, err := ParseDIDKey(did)
		assert.Error(t, err, name)
	}
}

func TestParseDIDKeyRejectsOffCurvePoint(t *testing.T) {
	// Valid length and codec, x coordinate not on secp256k1.
	bad := make([]byte, 33)
	bad[0] = 0x02
	for i := 1; i < 33; i++ {
		bad[i] = 0xff
	}
	did, err := FormatDIDKey(CurveK256, bad)
	require.NoError(t, err)

	_, _, err = ParseDIDKey(did)
	assert.Error(t, err)
}

func TestFormatDIDKeyRejectsBadInput(t *testing.T) {
	_, err := FormatDIDKey(CurveK256, []byte{0x02, 0x03})
	assert.Error(t, err)

	point, err := hex.DecodeString(k256GeneratorHex)
	require.NoError(t, err)
	_, err = FormatDIDKey(Curve(99), point)
	assert.Error(t, err)
}

func TestParseCurve(t *testing.T) {
	for name, want := range map[string]Curve{
		"k256":      CurveK256,
		"secp256k1": CurveK256,
		"P256":      CurveP256,
		"secp256r1": CurveP256,
	} {
		got, err := ParseCurve(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got)
	}

	_, err := ParseCurve("ed25519")
	assert.Error(t, err)
}
