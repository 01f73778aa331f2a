// Package drillx implements the proof-of-work puzzle primitive: a keyed hash
// over (challenge, nonce) scored by the number of leading zero bits.
package drillx

import (
	"encoding/binary"
	"hash"
	"math/bits"

	"golang.org/x/crypto/sha3"
)

const (
	challengeLen = 32
	nonceLen     = 8
	digestLen    = 16
)

// Hash is one puzzle evaluation. D is the digest submitted on-chain, H is the
// full hash the difficulty is scored on.
type Hash struct {
	D [digestLen]byte
	H [32]byte
}

// Difficulty returns the number of leading zero bits of H. Higher is better.
func (h Hash) Difficulty() uint32 {
	var d uint32
	for _, b := range h.H {
		if b == 0 {
			d += 8
			continue
		}
		d += uint32(bits.LeadingZeros8(b))
		break
	}
	return d
}

// Solution is the (digest, nonce) pair consumed by the mine instruction. The
// nonce is little-endian.
type Solution struct {
	Digest [digestLen]byte
	Nonce  [nonceLen]byte
}

// NewSolution pairs a hash with the nonce that produced it.
func NewSolution(h Hash, nonce uint64) Solution {
	var s Solution
	s.Digest = h.D
	binary.LittleEndian.PutUint64(s.Nonce[:], nonce)
	return s
}

// Solver owns the hashing workspace for one worker. It is not safe for
// concurrent use; each worker keeps its own.
type Solver struct {
	keccak hash.Hash
	buf    [challengeLen + nonceLen]byte
	sum    [32]byte
}

func NewSolver() *Solver {
	return &Solver{keccak: sha3.NewLegacyKeccak256()}
}

// Solve evaluates the puzzle for one (challenge, nonce) pair.
func (s *Solver) Solve(challenge [32]byte, nonce uint64) Hash {
	var out Hash

	copy(s.buf[:challengeLen], challenge[:])
	binary.LittleEndian.PutUint64(s.buf[challengeLen:], nonce)

	s.keccak.Reset()
	s.keccak.Write(s.buf[:])
	copy(out.D[:], s.keccak.Sum(s.sum[:0])[:digestLen])

	s.keccak.Reset()
	s.keccak.Write(out.D[:])
	s.keccak.Write(s.buf[challengeLen:])
	copy(out.H[:], s.keccak.Sum(s.sum[:0]))

	return out
}
