// Package merkle verifies whitelist membership proofs. A whitelist is
// distributed as a single keccak-256 Merkle root; a prover submits the
// sibling hashes along the path from their leaf to the root. Pair
// hashing sorts the two children byte-wise before combining, which
// makes proofs side-independent. The package holds no state.
package merkle

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/sha3"
)

type Hash [32]byte

var ErrMalformedHash = errors.New("merkle: malformed hash string")

func Keccak256(data ...[]byte) Hash {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// LeafForAddress hashes a 0x-prefixed 20-byte account address into its
// whitelist leaf.
func LeafForAddress(address string) (Hash, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(address), "0x"))
	if err != nil {
		return Hash{}, ErrMalformedHash
	}
	if len(raw) != 20 {
		return Hash{}, ErrMalformedHash
	}
	return Keccak256(raw), nil
}

// ParseHash decodes a 0x-prefixed 32-byte hex string.
func ParseHash(s string) (Hash, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(s), "0x"))
	if err != nil || len(raw) != 32 {
		return Hash{}, ErrMalformedHash
	}
	var out Hash
	copy(out[:], raw)
	return out, nil
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func hashPair(a, b Hash) Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return Keccak256(a[:], b[:])
}

// Verify folds leaf with each sibling in proof order and compares the
// result to root.
func Verify(proof []Hash, root, leaf Hash) bool {
	computed := leaf
	for _, sibling := range proof {
		computed = hashPair(computed, sibling)
	}
	return computed == root
}

// VerifyStrings is Verify over 0x-hex encoded siblings, the form proofs
// arrive in over the API.
func VerifyStrings(proof []string, root string, leaf Hash) (bool, error) {
	r, err := ParseHash(root)
	if err != nil {
		return false, err
	}
	siblings := make([]Hash, 0, len(proof))
	for _, p := range proof {
		s, err := ParseHash(p)
		if err != nil {
			return false, err
		}
		siblings = append(siblings, s)
	}
	return Verify(siblings, r, leaf), nil
}
