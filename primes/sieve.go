// Package primes builds the ascending prime tables from which tinydsa
// draws its moduli.
package primes

import (
	"math/bits"
	"sort"
)

// Sieve returns all primes up to and including max, in ascending order,
// using the sieve of Eratosthenes. Memory use is one byte per integer up
// to max.
func Sieve(max uint64) []uint64 {
	if max < 2 {
		return nil
	}
	composite := make([]bool, max+1)
	for i := uint64(2); i*i <= max; i++ {
		if composite[i] {
			continue
		}
		for j := i * i; j <= max; j += i {
			composite[j] = true
		}
	}
	table := make([]uint64, 0, estimate(max))
	for i := uint64(2); i <= max; i++ {
		if !composite[i] {
			table = append(table, i)
		}
	}
	return table
}

// Rough upper estimate of the number of primes up to n, used to size
// the table.
func estimate(n uint64) int {
	if n < 100 {
		return 25
	}
	// pi(n) < 1.26 n / ln(n), and ln(n) > 0.69 * (bits.Len64(n) - 1).
	l := uint64(bits.Len64(n) - 1)
	return int(n * 126 / (69 * l))
}

// IndexRange returns the half-open index range [from, to) of the table
// primes p with lo <= p < hi. The table MUST be sorted.
func IndexRange(table []uint64, lo, hi uint64) (from, to int) {
	from = sort.Search(len(table), func(i int) bool { return table[i] >= lo })
	to = sort.Search(len(table), func(i int) bool { return table[i] >= hi })
	if to < from {
		to = from
	}
	return from, to
}
