// Package plc implements the did:plc genesis operation: its canonical
// byte encoding, the textual key identifiers carried in it, and the
// identifier derived from its hash.
package plc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// OpTypeCreate is the operation type of a genesis operation.
const OpTypeCreate = "plc_operation"

// Service is a service entry in an operation's services map.
type Service struct {
	Type     string `json:"type"`
	Endpoint string `json:"endpoint"`
}

// Operation is an unsigned genesis operation. Its canonical encoding is a
// pure function of its logical value; see CanonicalBytes.
type Operation struct {
	Type                string             `json:"type"`
	RotationKeys        []string           `json:"rotationKeys"`
	VerificationMethods map[string]string  `json:"verificationMethods"`
	AlsoKnownAs         []string           `json:"alsoKnownAs"`
	Services            map[string]Service `json:"services"`
	Prev                *string            `json:"prev"`
}

// SignedOperation is an Operation plus its signature: the base64url
// (unpadded) encoding of the 64-byte compact ECDSA signature.
type SignedOperation struct {
	Operation
	Sig string `json:"sig"`
}

// GenesisParams configures NewGenesisOperation.
type GenesisParams struct {
	RotationKey         string // the user's did:key rotation key
	WeakKeyDID          string // appended after the user's key
	VerificationMethods map[string]string
	AlsoKnownAs         []string
	Services            map[string]Service
}

// NewGenesisOperation assembles an unsigned genesis operation with
// rotationKeys = [user key, weak key]. The user key must be a well-formed
// did:key on a supported curve.
func NewGenesisOperation(p GenesisParams) (*Operation, error) {
	if _, _, err := ParseDIDKey(p.RotationKey); err != nil {
		return nil, fmt.Errorf("rotation key: %w", err)
	}
	if _, _, err := ParseDIDKey(p.WeakKeyDID); err != nil {
		return nil, fmt.Errorf("weak key: %w", err)
	}

	op := &Operation{
		Type:                OpTypeCreate,
		RotationKeys:        []string{p.RotationKey, p.WeakKeyDID},
		VerificationMethods: p.VerificationMethods,
		AlsoKnownAs:         p.AlsoKnownAs,
		Services:            p.Services,
	}
	if op.VerificationMethods == nil {
		op.VerificationMethods = map[string]string{}
	}
	if op.AlsoKnownAs == nil {
		op.AlsoKnownAs = []string{}
	}
	if op.Services == nil {
		op.Services = map[string]Service{}
	}
	return op, nil
}

// Signed pairs the operation with a signature string.
func (op *Operation) Signed(sig string) *SignedOperation {
	return &SignedOperation{Operation: *op, Sig: sig}
}

// canonicalMode encodes with RFC 8949 core deterministic rules: map keys in
// bytewise lexicographic order, definite lengths, shortest-form integers.
// The identifier is a direct function of these bytes, so any deviation here
// changes every derived DID.
var canonicalMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Sort: cbor.SortCoreDeterministic}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// canonicalFields lowers the operation into plain maps so the encoder's
// deterministic key sort applies uniformly. Empty collections stay empty
// rather than becoming null.
func (op *Operation) canonicalFields() map[string]any {
	services := make(map[string]any, len(op.Services))
	for name, svc := range op.Services {
		services[name] = map[string]any{
			"type":     svc.Type,
			"endpoint": svc.Endpoint,
		}
	}
	methods := op.VerificationMethods
	if methods == nil {
		methods = map[string]string{}
	}
	aka := op.AlsoKnownAs
	if aka == nil {
		aka = []string{}
	}
	var prev any
	if op.Prev != nil {
		prev = *op.Prev
	}
	return map[string]any{
		"type":                op.Type,
		"rotationKeys":        op.RotationKeys,
		"verificationMethods": methods,
		"alsoKnownAs":         aka,
		"services":            services,
		"prev":                prev,
	}
}

// CanonicalBytes returns the canonical encoding of the unsigned operation.
// This is the message the rotation key signs.
func (op *Operation) CanonicalBytes() ([]byte, error) {
	return canonicalMode.Marshal(op.canonicalFields())
}

// CanonicalBytes returns the canonical encoding of the signed operation,
// the preimage of the operation's identifier.
func (s *SignedOperation) CanonicalBytes() ([]byte, error) {
	fields := s.canonicalFields()
	fields["sig"] = s.Sig
	return canonicalMode.Marshal(fields)
}

// SigSpan locates the signature value inside a signed operation's canonical
// encoding. Carrying the position explicitly keeps suffix hashing correct
// should the signature width ever change.
type SigSpan struct {
	Offset int
	Length int
}

// sentinelByte fills the placeholder signature in CanonicalTemplate. The
// base64url alphabet never produces it, so the needle cannot collide with a
// real signature.
const sentinelByte = '\x01'

// CanonicalTemplate encodes the operation with a sentinel signature of
// sigLen text bytes and reports where that signature sits. Patching real
// signature text into the span reproduces, byte for byte, the canonical
// encoding of the corresponding signed operation.
func (op *Operation) CanonicalTemplate(sigLen int) ([]byte, SigSpan, error) {
	if sigLen <= 0 {
		return nil, SigSpan{}, fmt.Errorf("plc: invalid signature length %d", sigLen)
	}
	signed := op.Signed(strings.Repeat(string(sentinelByte), sigLen))
	buf, err := signed.CanonicalBytes()
	if err != nil {
		return nil, SigSpan{}, err
	}

	needle := bytes.Repeat([]byte{sentinelByte}, sigLen)
	idx := bytes.Index(buf, needle)
	if idx < 0 || bytes.LastIndex(buf, needle) != idx {
		return nil, SigSpan{}, fmt.Errorf("plc: signature sentinel not uniquely located")
	}
	return buf, SigSpan{Offset: idx, Length: sigLen}, nil
}
