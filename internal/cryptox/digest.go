// Package cryptox contains the small cryptographic helpers used to compare
// shared secrets.
package cryptox

import (
	"crypto/subtle"

	"golang.org/x/crypto/blake2b"
)

// Digest is a fixed-size fingerprint of a secret.
type Digest [blake2b.Size256]byte

// DigestOf returns the BLAKE2b-256 digest of s.
func DigestOf(s string) Digest {
	return blake2b.Sum256([]byte(s))
}

// Matches reports whether candidate hashes to d. Both sides have the same
// length, so the comparison time does not depend on the candidate's length
// or on how many leading bytes match.
func (d Digest) Matches(candidate string) bool {
	c := DigestOf(candidate)
	return subtle.ConstantTimeCompare(d[:], c[:]) == 1
}
