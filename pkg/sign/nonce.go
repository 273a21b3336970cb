package sign

import (
	"crypto/rand"
	"encoding/binary"
)

// NonceSource supplies ECDSA nonces as 32-byte big-endian scalars. Values
// are reduced modulo the curve order by the consuming signer; a source must
// never yield a value that reduces to zero.
type NonceSource interface {
	Next() ([32]byte, error)
}

// RandomNonces returns a source backed by crypto/rand.
func RandomNonces() NonceSource {
	return randomNonces{}
}

type randomNonces struct{}

func (randomNonces) Next() ([32]byte, error) {
	var b [32]byte
	_, err := rand.Read(b[:])
	return b, err
}

// CounterNonces returns a deterministic source yielding seed, seed+1, ...
// in the scalar's low 64 bits. Intended for tests that need reproducible
// signatures; a zero seed is bumped to one.
func CounterNonces(seed uint64) NonceSource {
	if seed == 0 {
		seed = 1
	}
	return &counterNonces{next: seed}
}

type counterNonces struct {
	next uint64
}

func (c *counterNonces) Next() ([32]byte, error) {
	var b [32]byte
	binary.BigEndian.PutUint64(b[24:], c.next)
	c.next++
	if c.next == 0 {
		c.next = 1
	}
	return b, nil
}
