// Package sign implements ECDSA signing specialized around the deliberately
// weak private scalar 1. With that key the scalar multiplication that
// dominates normal signing cost disappears, leaving a modular inverse and a
// few modular multiplications per signature. The key is published and meant
// to be revoked immediately after the identifier it mined is claimed.
package sign

import (
	"errors"
	"fmt"

	"github.com/plchunter/plchunter/pkg/plc"
)

// WeakPrivateScalar is the private key every signer in this package holds.
// Its secrecy is irrelevant; it exists only to make signing cheap.
const WeakPrivateScalar = 1

// CompactSigLen is the byte width of a compact r||s signature on both
// supported curves.
const CompactSigLen = 64

// ErrArithmetic reports a degenerate value inside the signing arithmetic
// (zero r or s, or a non-invertible nonce). The arithmetic is total over its
// expected domain, so hitting this signals an implementation bug and is
// fatal; it is never retried with a different nonce.
var ErrArithmetic = errors.New("sign: degenerate arithmetic result")

// Signer produces compact ECDSA signatures over 32-byte digests with the
// weak private scalar. Implementations are not safe for concurrent use;
// give each worker its own instance.
type Signer interface {
	// Sign signs a digest. Repeated calls on the same digest yield distinct
	// signatures because every call consumes a fresh nonce.
	Sign(digest [32]byte) ([CompactSigLen]byte, error)

	// Verify checks a signature against the weak public key under standard
	// ECDSA verification rules.
	Verify(digest [32]byte, sig [CompactSigLen]byte) bool

	// PublicKey returns the compressed weak public key, the curve's
	// generator point.
	PublicKey() []byte

	// Curve reports which curve the signer operates on.
	Curve() plc.Curve
}

// NewWeakSigner returns a signer for the given curve. A nil nonce source
// selects the production mode: a randomly seeded nonce walked by one per
// signature, advancing the nonce point with a single point addition. A
// non-nil source (such as CounterNonces) supplies exact nonce scalars and
// pays a full scalar-base multiplication per call; tests use it for
// reproducible signatures.
func NewWeakSigner(c plc.Curve, nonces NonceSource) (Signer, error) {
	switch c {
	case plc.CurveK256:
		return newK256Signer(nonces)
	case plc.CurveP256:
		return newP256Signer(nonces)
	default:
		return nil, fmt.Errorf("sign: unsupported curve tag %d", c)
	}
}
