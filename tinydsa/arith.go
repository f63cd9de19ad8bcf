package tinydsa

import (
	"math/bits"

	"github.com/pkg/errors"
)

// Modular arithmetic on 64-bit words. Products are computed over 128 bits
// and reduced with a 128-by-64 division, so results are exact for any
// modulus m >= 1; nothing wraps around silently.

// Return (a*b) mod m. m MUST be non-zero.
func mul_mod(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return bits.Rem64(hi, lo, m)
}

// Return (a+b) mod m, for a and b already reduced modulo m.
func add_mod(a, b, m uint64) uint64 {
	s, carry := bits.Add64(a, b, 0)
	if carry != 0 || s >= m {
		s -= m
	}
	return s
}

// Return (a-b) mod m, for a and b already reduced modulo m.
func sub_mod(a, b, m uint64) uint64 {
	d, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		d += m
	}
	return d
}

// ModPow returns base^exponent mod modulus, using iterative binary
// (square-and-multiply) exponentiation. modulus MUST be non-zero. For any
// modulus greater than 1, ModPow(b, 0, m) is 1; ModPow(b, e, 1) is 0.
func ModPow(base, exponent, modulus uint64) uint64 {
	if modulus == 1 {
		return 0
	}
	result := uint64(1)
	base %= modulus
	for exponent > 0 {
		if (exponent & 1) == 1 {
			result = mul_mod(result, base, modulus)
		}
		exponent >>= 1
		base = mul_mod(base, base, modulus)
	}
	return result
}

// ModInverse returns k^(q-2) mod q. By Fermat's little theorem this is the
// multiplicative inverse of k when q is prime and k is not a multiple of
// q; for a composite q the result is meaningless, and callers must ensure
// that q is prime. A zero result means that no inverse exists.
func ModInverse(k, q uint64) uint64 {
	if q < 2 {
		return 0
	}
	return ModPow(k, q-2, q)
}

// MulOrder returns the multiplicative order of base modulo modulus, i.e.
// the smallest i in [1, max-1] such that base^i = 1 mod modulus. It
// returns 0 if no such i exists below max.
func MulOrder(base, modulus, max uint64) uint64 {
	if modulus < 2 {
		return 0
	}
	base %= modulus
	acc := uint64(1)
	for i := uint64(1); i < max; i++ {
		acc = mul_mod(acc, base, modulus)
		if acc == 1 {
			return i
		}
	}
	return 0
}

// Factorize trial-divides n by the ascending primes of table, and calls
// visit once per prime factor occurrence (a factor of multiplicity 3 is
// visited three times), in ascending order.
//
// Division stops as soon as the square of the current table prime exceeds
// the remaining cofactor, which is then prime. If the table runs out
// before that point, the factorization is incomplete: the factors found
// so far have been visited, and ErrTableExhausted is returned.
func Factorize(n uint64, table []uint64, visit func(p uint64)) error {
	if n < 2 {
		return nil
	}
	for _, p := range table {
		if p < 2 {
			continue
		}
		if hi, lo := bits.Mul64(p, p); hi == 0 && lo > n {
			break
		}
		for n%p == 0 {
			n /= p
			visit(p)
		}
		if n == 1 {
			return nil
		}
	}
	if n == 1 {
		return nil
	}
	if len(table) == 0 || !covers(table[len(table)-1], n) {
		return errors.Wrapf(ErrTableExhausted,
			"cofactor %d, largest table prime %d", n, last_or_zero(table))
	}
	visit(n)
	return nil
}

// Report whether the largest table prime p is enough to certify that
// cofactor n is prime, i.e. p*p >= n (or the table reaches n itself).
func covers(p, n uint64) bool {
	hi, lo := bits.Mul64(p, p)
	return hi != 0 || lo >= n
}

func last_or_zero(table []uint64) uint64 {
	if len(table) == 0 {
		return 0
	}
	return table[len(table)-1]
}

// FactorizeHash returns the prime factors of n with their multiplicities.
func FactorizeHash(n uint64, table []uint64) (map[uint64]int, error) {
	factors := make(map[uint64]int)
	err := Factorize(n, table, func(p uint64) {
		factors[p]++
	})
	return factors, err
}

// FactorizeList returns the prime factors of n in ascending order, each
// repeated according to its multiplicity.
func FactorizeList(n uint64, table []uint64) ([]uint64, error) {
	var factors []uint64
	err := Factorize(n, table, func(p uint64) {
		factors = append(factors, p)
	})
	return factors, err
}

// Report whether n is prime, by trial division. This is meant for the
// small values handled by this package (up to about 2^40 it stays cheap).
func is_prime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n < 4 {
		return true
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}
	for d := uint64(5); d <= n/d; d += 6 {
		if n%d == 0 || n%(d+2) == 0 {
			return false
		}
	}
	return true
}
