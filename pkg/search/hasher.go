package search

import (
	"bytes"
	"crypto/sha256"
	"encoding"
	"fmt"
	"hash"

	"github.com/plchunter/plchunter/pkg/plc"
)

// PrefixHasher holds the SHA-256 engine state captured after the invariant
// prefix of a signed operation's canonical bytes. Finalizing a candidate
// then only has to absorb the signature text and the invariant suffix
// instead of re-hashing the whole message on every attempt.
//
// The precomputed state is immutable after construction and may be shared
// by any number of workers; each worker finalizes through its own Finalizer.
type PrefixHasher struct {
	state  []byte
	suffix []byte
}

// NewPrefixHasher snapshots the hash state over template[:span.Offset] and
// records the invariant bytes following the signature value.
func NewPrefixHasher(template []byte, span plc.SigSpan) (*PrefixHasher, error) {
	if span.Offset < 0 || span.Length <= 0 || span.Offset+span.Length > len(template) {
		return nil, fmt.Errorf("search: signature span %+v out of range for %d-byte template", span, len(template))
	}

	h := sha256.New()
	h.Write(template[:span.Offset])
	state, err := h.(encoding.BinaryMarshaler).MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("search: snapshot hash state: %w", err)
	}

	return &PrefixHasher{
		state:  state,
		suffix: bytes.Clone(template[span.Offset+span.Length:]),
	}, nil
}

// Fork returns a finalizer with its own hash engine. Finalizers are not
// safe for concurrent use.
func (p *PrefixHasher) Fork() *Finalizer {
	h := sha256.New()
	return &Finalizer{
		h:      h,
		un:     h.(encoding.BinaryUnmarshaler),
		state:  p.state,
		suffix: p.suffix,
	}
}

// Finalizer computes sha256(prefix || sig || suffix) by restoring the
// shared prefix state into a reused engine.
type Finalizer struct {
	h      hash.Hash
	un     encoding.BinaryUnmarshaler
	state  []byte
	suffix []byte
}

// Sum writes the digest for the given signature text into digest.
func (f *Finalizer) Sum(sig []byte, digest *[32]byte) error {
	if err := f.un.UnmarshalBinary(f.state); err != nil {
		return fmt.Errorf("search: restore hash state: %w", err)
	}
	f.h.Write(sig)
	f.h.Write(f.suffix)
	f.h.Sum(digest[:0])
	return nil
}
