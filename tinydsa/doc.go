// This package implements a small-integer variant of the Digital
// Signature Algorithm (DSA).
//
// WARNING: this is an educational implementation. Parameters are a few
// tens of bits wide (moduli of roughly 17 to 23 bits are typical), the
// random source is not required to be secure, and the message digest is
// produced by a caller-supplied, usually non-cryptographic, hash
// function. It MUST NOT be used to protect anything.
//
// Domain parameters (P, Q, G) are shared by all participants. They are
// created with [GenerateParameters], which takes its candidate moduli from
// an ascending table of primes supplied by the caller (see the primes
// package), picks a prime factor Q of P-1, and derives a generator G of
// the order-Q subgroup. A key pair is created with [GenerateKey].
//
// Messages are not signed as a whole: the caller's [HashFunc] maps a
// message to an ordered sequence of digest chunks, and [Sign] produces one
// (r,s) pair per chunk, each with its own random nonce. [Verify] accepts
// a signature only if it has exactly one pair per chunk and every pair
// verifies. The vshash package provides suitable hash functions.
//
// All modular arithmetic ([ModPow], [ModInverse], [MulOrder]) works on
// uint64 values with exact 128-bit intermediate products, so no
// operation can overflow. Every randomized search (modulus, generator,
// key, per-chunk nonce) is bounded by [Config.MaxAttempts]; reaching the
// ceiling is reported as an error rather than looping forever.
//
// A [Config] selects the random source, the attempt ceiling and an
// optional zerolog logger. A nil *Config selects the OS RNG and the
// defaults. For reproducible runs, [Config.WithSeed] and
// [NewSeededReader] provide a deterministic SHAKE256-based source.
package tinydsa
