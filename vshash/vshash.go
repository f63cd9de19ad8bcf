// Package vshash maps text to the digest chunks consumed by tinydsa.
//
// Text is read over a 36-symbol alphabet: digits '0'-'9' have codes 0 to
// 9, uppercase letters 'A'-'Z' have codes 10 to 35, and every other
// character is skipped. Codes are grouped in chunks of five, the last
// chunk being padded with zeros, and each chunk is folded into one small
// integer: a chunk (v0, v1, v2, v3, v4) folds to
//
//	v0 + v1^2 + v2^3 + v3^4 + v4^5
//
// This is not a cryptographic hash. Distinct chunks easily fold to the
// same value, so anyone can find other text with the same digest; it is
// only meant to drive the educational signature scheme.
//
// [Sum] returns one digest value per chunk, so that a signature carries
// one pair per chunk. [Collapsed] XORs all chunk values into a single
// value, for a single-pair signature; this binds the signature much more
// weakly to the text. [Shake256] keeps one value per chunk but mixes the
// chunk position and count into each value.
package vshash

import (
	"encoding/binary"

	sha3 "golang.org/x/crypto/sha3"

	"github.com/pornin/go-tiny-dsa/tinydsa"
)

// ChunkSize is the number of codes per digest chunk.
const ChunkSize = 5

// Radix is the size of the alphabet.
const Radix = 36

// Compile-time checks that the digest functions fit tinydsa.HashFunc.
var (
	_ tinydsa.HashFunc = Sum
	_ tinydsa.HashFunc = CollapsedSum
	_ tinydsa.HashFunc = Shake256
)

// EncodeCode returns the character for code v, or false if v is not in
// [0, 35].
func EncodeCode(v int) (byte, bool) {
	switch {
	case 0 <= v && v < 10:
		return byte(v + '0'), true
	case 10 <= v && v < Radix:
		return byte(v - 10 + 'A'), true
	default:
		return 0, false
	}
}

// DecodeChar returns the code of character c, or false if c is outside
// the alphabet.
func DecodeChar(c byte) (int, bool) {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0'), true
	case 'A' <= c && c <= 'Z':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

// Codes returns the codes of the characters of text, skipping the
// characters outside the alphabet.
func Codes(text []byte) []int {
	codes := make([]int, 0, len(text))
	for _, c := range text {
		if v, ok := DecodeChar(c); ok {
			codes = append(codes, v)
		}
	}
	return codes
}

// Text returns the characters for codes; codes outside [0, 35] are
// dropped.
func Text(codes []int) []byte {
	text := make([]byte, 0, len(codes))
	for _, v := range codes {
		if c, ok := EncodeCode(v); ok {
			text = append(text, c)
		}
	}
	return text
}

// Split codes into zero-padded chunks. There is always at least one
// chunk, so that empty input still has a digest. A chunk holding a code
// outside [0, 35] is reported in the bad slice.
func split(codes []int) (chunks [][ChunkSize]uint64, bad []bool) {
	n := (len(codes) + ChunkSize - 1) / ChunkSize
	if n == 0 {
		n = 1
	}
	chunks = make([][ChunkSize]uint64, n)
	bad = make([]bool, n)
	for i, v := range codes {
		if v < 0 || v >= Radix {
			bad[i/ChunkSize] = true
			continue
		}
		chunks[i/ChunkSize][i%ChunkSize] = uint64(v)
	}
	return chunks, bad
}

// Fold returns the folded value of one chunk: the sum of v^(i+1) for
// the code v at position i.
func Fold(chunk [ChunkSize]uint64) uint64 {
	sum := uint64(0)
	for i, v := range chunk {
		t := v
		for j := 0; j < i; j++ {
			t *= v
		}
		sum += t
	}
	return sum
}

// Sum returns one digest value per chunk of text.
func Sum(text []byte) []uint64 {
	return SumCodes(Codes(text))
}

// SumCodes returns one digest value per chunk of pre-encoded codes.
// Negative codes are skipped, like characters outside the alphabet; a
// chunk holding a code of 36 or more gets the null digest value.
func SumCodes(codes []int) []uint64 {
	kept := make([]int, 0, len(codes))
	for _, v := range codes {
		if v >= 0 {
			kept = append(kept, v)
		}
	}
	chunks, bad := split(kept)
	digest := make([]uint64, len(chunks))
	for i := range chunks {
		if bad[i] {
			digest[i] = tinydsa.NullDigest
			continue
		}
		digest[i] = Fold(chunks[i])
	}
	return digest
}

// Collapse XORs the per-chunk digest values into a single value. If any
// chunk is null, so is the result.
func Collapse(digest []uint64) []uint64 {
	acc := uint64(0)
	for _, h := range digest {
		if h == tinydsa.NullDigest {
			return []uint64{tinydsa.NullDigest}
		}
		acc ^= h
	}
	return []uint64{acc}
}

// Collapsed wraps a digest function so that it yields a single value.
func Collapsed(hash tinydsa.HashFunc) tinydsa.HashFunc {
	return func(message []byte) []uint64 {
		return Collapse(hash(message))
	}
}

// CollapsedSum is Sum collapsed into a single value: whatever the length
// of the text, the signature then has a single pair.
func CollapsedSum(text []byte) []uint64 {
	return Collapse(Sum(text))
}

// Shake256 returns one digest value per chunk of text, each computed as
// the first 32 bits of SHAKE256 over the chunk index, the chunk count and
// the chunk codes. Unlike Sum, reordering, dropping or duplicating
// chunks changes every digest value.
func Shake256(text []byte) []uint64 {
	chunks, _ := split(Codes(text))
	digest := make([]uint64, len(chunks))
	var buf [8 + ChunkSize]byte
	var out [4]byte
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(chunks)))
	for i, c := range chunks {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(i))
		for j, v := range c {
			buf[8+j] = byte(v)
		}
		sha3.ShakeSum256(out[:], buf[:])
		digest[i] = uint64(binary.LittleEndian.Uint32(out[:]))
	}
	return digest
}
