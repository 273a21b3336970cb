package sign

import (
	stdecdsa "crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/plchunter/plchunter/pkg/plc"
)

// p256Signer is the NIST P-256 counterpart of k256Signer. The standard
// library hides nonce selection inside crypto/ecdsa, so the scalar math is
// done directly on math/big with point arithmetic from crypto/elliptic.
// This path exists for the alternate curve selection; it is not tuned as
// aggressively as the secp256k1 one.
type p256Signer struct {
	curve elliptic.Curve
	n     *big.Int
	halfN *big.Int
	pub   *stdecdsa.PublicKey

	nonces NonceSource

	k  *big.Int
	rx *big.Int
	ry *big.Int
}

func newP256Signer(nonces NonceSource) (*p256Signer, error) {
	curve := elliptic.P256()
	params := curve.Params()
	s := &p256Signer{
		curve: curve,
		n:     params.N,
		halfN: new(big.Int).Rsh(params.N, 1),
		pub: &stdecdsa.PublicKey{
			Curve: curve,
			X:     params.Gx,
			Y:     params.Gy,
		},
		nonces: nonces,
	}
	if nonces == nil {
		if err := s.reseed(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *p256Signer) reseed() error {
	for {
		var b [32]byte
		if _, err := rand.Read(b[:]); err != nil {
			return fmt.Errorf("sign: nonce seed: %w", err)
		}
		k := new(big.Int).SetBytes(b[:])
		k.Mod(k, s.n)
		if k.Sign() != 0 {
			s.k = k
			break
		}
	}
	s.rx, s.ry = s.curve.ScalarBaseMult(s.k.Bytes())
	return nil
}

func (s *p256Signer) nextNonce() (*big.Int, *big.Int, *big.Int, error) {
	if s.nonces != nil {
		b, err := s.nonces.Next()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("sign: nonce source: %w", err)
		}
		k := new(big.Int).SetBytes(b[:])
		k.Mod(k, s.n)
		if k.Sign() == 0 {
			return nil, nil, nil, fmt.Errorf("%w: zero nonce", ErrArithmetic)
		}
		x, y := s.curve.ScalarBaseMult(k.Bytes())
		return k, x, y, nil
	}

	k, x, y := s.k, s.rx, s.ry
	s.k = new(big.Int).Add(k, big.NewInt(1))
	if s.k.Cmp(s.n) >= 0 {
		if err := s.reseed(); err != nil {
			return nil, nil, nil, err
		}
	} else {
		params := s.curve.Params()
		s.rx, s.ry = s.curve.Add(x, y, params.Gx, params.Gy)
	}
	return k, x, y, nil
}

func (s *p256Signer) Sign(digest [32]byte) ([CompactSigLen]byte, error) {
	var sig [CompactSigLen]byte

	z := new(big.Int).SetBytes(digest[:])
	z.Mod(z, s.n)

	k, x, _, err := s.nextNonce()
	if err != nil {
		return sig, err
	}

	r := new(big.Int).Mod(x, s.n)
	if r.Sign() == 0 {
		return sig, fmt.Errorf("%w: zero r", ErrArithmetic)
	}
	kinv := new(big.Int).ModInverse(k, s.n)
	if kinv == nil {
		return sig, fmt.Errorf("%w: non-invertible nonce", ErrArithmetic)
	}

	// s = k^-1 * (z + r*d) with d = 1.
	sv := new(big.Int).Add(z, r)
	sv.Mul(sv, kinv)
	sv.Mod(sv, s.n)
	if sv.Sign() == 0 {
		return sig, fmt.Errorf("%w: zero s", ErrArithmetic)
	}
	if sv.Cmp(s.halfN) > 0 {
		sv.Sub(s.n, sv)
	}

	r.FillBytes(sig[:32])
	sv.FillBytes(sig[32:])
	return sig, nil
}

func (s *p256Signer) Verify(digest [32]byte, sig [CompactSigLen]byte) bool {
	r := new(big.Int).SetBytes(sig[:32])
	sv := new(big.Int).SetBytes(sig[32:])
	if r.Sign() == 0 || sv.Sign() == 0 {
		return false
	}
	return stdecdsa.Verify(s.pub, digest[:], r, sv)
}

func (s *p256Signer) PublicKey() []byte {
	return elliptic.MarshalCompressed(s.curve, s.pub.X, s.pub.Y)
}

func (s *p256Signer) Curve() plc.Curve {
	return plc.CurveP256
}
