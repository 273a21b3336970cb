package plc

import (
	"crypto/sha256"
	"encoding/base32"
)

// DIDPrefix is the literal prefix of every did:plc identifier.
const DIDPrefix = "did:plc:"

// SuffixLen is the fixed width of the identifier's base32 portion.
const SuffixLen = 24

// Encoding is the method's lowercase base32 alphabet, unpadded.
var Encoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// EncodeSuffix maps a 32-byte digest to the identifier's 24-character
// textual form.
func EncodeSuffix(digest []byte) string {
	return Encoding.EncodeToString(digest)[:SuffixLen]
}

// FormatDID renders the full identifier for a digest.
func FormatDID(digest [32]byte) string {
	return DIDPrefix + EncodeSuffix(digest[:])
}

// DeriveDID computes the identifier of a signed operation's canonical bytes.
func DeriveDID(signedBytes []byte) string {
	return FormatDID(sha256.Sum256(signedBytes))
}
