package plc

import (
	"bytes"
	"crypto/elliptic"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/mr-tron/base58"
)

// Curve tags the elliptic curve a textual key identifier encodes.
type Curve int

const (
	CurveK256 Curve = iota // secp256k1
	CurveP256              // NIST P-256
)

// String returns the curve name.
func (c Curve) String() string {
	switch c {
	case CurveK256:
		return "k256"
	case CurveP256:
		return "p256"
	default:
		return "unknown"
	}
}

// ParseCurve maps a curve name to its tag. Accepted spellings follow the
// common multicodec aliases.
func ParseCurve(name string) (Curve, error) {
	switch strings.ToLower(name) {
	case "k256", "secp256k1":
		return CurveK256, nil
	case "p256", "secp256r1":
		return CurveP256, nil
	default:
		return 0, fmt.Errorf("plc: unsupported curve %q", name)
	}
}

const didKeyPrefix = "did:key:"

// Multicodec varint prefixes for compressed public keys.
var (
	codecK256 = []byte{0xe7, 0x01}
	codecP256 = []byte{0x80, 0x24}
)

const compressedPointLen = 33

// FormatDIDKey renders a compressed public key as a did:key identifier
// (multibase base58btc over multicodec || point).
func FormatDIDKey(c Curve, compressed []byte) (string, error) {
	if len(compressed) != compressedPointLen {
		return "", fmt.Errorf("plc: compressed key must be %d bytes, got %d", compressedPointLen, len(compressed))
	}
	var codec []byte
	switch c {
	case CurveK256:
		codec = codecK256
	case CurveP256:
		codec = codecP256
	default:
		return "", fmt.Errorf("plc: unsupported curve tag %d", c)
	}
	raw := make([]byte, 0, len(codec)+compressedPointLen)
	raw = append(raw, codec...)
	raw = append(raw, compressed...)
	return didKeyPrefix + "z" + base58.Encode(raw), nil
}

// ParseDIDKey decodes a did:key identifier into its curve tag and compressed
// public key, validating that the bytes name a point on that curve.
func ParseDIDKey(did string) (Curve, []byte, error) {
	rest, ok := strings.CutPrefix(did, didKeyPrefix)
	if !ok {
		return 0, nil, fmt.Errorf("plc: %q is not a did:key identifier", did)
	}
	if len(rest) == 0 || rest[0] != 'z' {
		return 0, nil, fmt.Errorf("plc: did:key %q is not multibase base58btc", did)
	}
	raw, err := base58.Decode(rest[1:])
	if err != nil {
		return 0, nil, fmt.Errorf("plc: malformed did:key: %w", err)
	}

	var c Curve
	switch {
	case bytes.HasPrefix(raw, codecK256):
		c = CurveK256
	case bytes.HasPrefix(raw, codecP256):
		c = CurveP256
	default:
		return 0, nil, fmt.Errorf("plc: did:key %q has an unsupported key type", did)
	}
	compressed := raw[2:]
	if len(compressed) != compressedPointLen {
		return 0, nil, fmt.Errorf("plc: did:key %q has a malformed point", did)
	}
	if err := validatePoint(c, compressed); err != nil {
		return 0, nil, fmt.Errorf("plc: did:key %q: %w", did, err)
	}
	return c, compressed, nil
}

func validatePoint(c Curve, compressed []byte) error {
	switch c {
	case CurveK256:
		if _, err := btcec.ParsePubKey(compressed); err != nil {
			return fmt.Errorf("invalid secp256k1 point: %w", err)
		}
	case CurveP256:
		x, y := elliptic.UnmarshalCompressed(elliptic.P256(), compressed)
		if x == nil || y == nil {
			return fmt.Errorf("invalid p256 point")
		}
	}
	return nil
}
