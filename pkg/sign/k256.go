package sign

import (
	"crypto/rand"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/plchunter/plchunter/pkg/plc"
)

// Package-level secp256k1 generator state. genPoint is kept in affine form
// (Z = 1) so it can feed point additions directly.
var (
	scalarOne btcec.ModNScalar
	genPoint  btcec.JacobianPoint
	genPub    *btcec.PublicKey
)

func init() {
	scalarOne.SetInt(1)
	btcec.ScalarBaseMultNonConst(&scalarOne, &genPoint)
	genPoint.ToAffine()
	genPub = btcec.NewPublicKey(&genPoint.X, &genPoint.Y)
}

// k256Signer signs with private scalar 1 on secp256k1. In walk mode it keeps
// the current nonce k and its point kG, advancing both per signature with a
// scalar increment and a point addition.
type k256Signer struct {
	nonces NonceSource

	k  btcec.ModNScalar
	kG btcec.JacobianPoint
}

func newK256Signer(nonces NonceSource) (*k256Signer, error) {
	s := &k256Signer{nonces: nonces}
	if nonces == nil {
		if err := s.reseed(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *k256Signer) reseed() error {
	for {
		var b [32]byte
		if _, err := rand.Read(b[:]); err != nil {
			return fmt.Errorf("sign: nonce seed: %w", err)
		}
		s.k.SetByteSlice(b[:])
		if !s.k.IsZero() {
			break
		}
	}
	btcec.ScalarBaseMultNonConst(&s.k, &s.kG)
	return nil
}

// nextNonce returns the nonce scalar and its point for one signature and
// advances the internal walk.
func (s *k256Signer) nextNonce() (btcec.ModNScalar, btcec.JacobianPoint, error) {
	if s.nonces != nil {
		b, err := s.nonces.Next()
		if err != nil {
			return btcec.ModNScalar{}, btcec.JacobianPoint{}, fmt.Errorf("sign: nonce source: %w", err)
		}
		var k btcec.ModNScalar
		k.SetBytes(&b)
		if k.IsZero() {
			return btcec.ModNScalar{}, btcec.JacobianPoint{}, fmt.Errorf("%w: zero nonce", ErrArithmetic)
		}
		var p btcec.JacobianPoint
		btcec.ScalarBaseMultNonConst(&k, &p)
		return k, p, nil
	}

	k, p := s.k, s.kG
	s.k.Add(&scalarOne)
	if s.k.IsZero() {
		// Wrapped the group order; restart the walk from a fresh seed.
		if err := s.reseed(); err != nil {
			return btcec.ModNScalar{}, btcec.JacobianPoint{}, err
		}
	} else {
		var next btcec.JacobianPoint
		btcec.AddNonConst(&s.kG, &genPoint, &next)
		s.kG = next
	}
	return k, p, nil
}

func (s *k256Signer) Sign(digest [32]byte) ([CompactSigLen]byte, error) {
	var sig [CompactSigLen]byte

	var z btcec.ModNScalar
	z.SetBytes(&digest)

	k, kG, err := s.nextNonce()
	if err != nil {
		return sig, err
	}
	kG.ToAffine()

	var r btcec.ModNScalar
	r.SetBytes(kG.X.Bytes())
	if r.IsZero() {
		return sig, fmt.Errorf("%w: zero r", ErrArithmetic)
	}

	// s = k^-1 * (z + r*d) with d = 1.
	kinv := new(btcec.ModNScalar).InverseValNonConst(&k)
	sv := new(btcec.ModNScalar).Set(&z)
	sv.Add(&r)
	sv.Mul(kinv)
	if sv.IsZero() {
		return sig, fmt.Errorf("%w: zero s", ErrArithmetic)
	}
	if sv.IsOverHalfOrder() {
		sv.Negate()
	}

	var buf [32]byte
	r.PutBytes(&buf)
	copy(sig[:32], buf[:])
	sv.PutBytes(&buf)
	copy(sig[32:], buf[:])
	return sig, nil
}

func (s *k256Signer) Verify(digest [32]byte, sig [CompactSigLen]byte) bool {
	var r, sv btcec.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow || r.IsZero() {
		return false
	}
	if overflow := sv.SetByteSlice(sig[32:]); overflow || sv.IsZero() {
		return false
	}
	return ecdsa.NewSignature(&r, &sv).Verify(digest[:], genPub)
}

func (s *k256Signer) PublicKey() []byte {
	return genPub.SerializeCompressed()
}

func (s *k256Signer) Curve() plc.Curve {
	return plc.CurveK256
}
