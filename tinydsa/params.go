package tinydsa

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Parameters are the shared DSA domain parameters: a prime modulus P, a
// prime subgroup order Q dividing P-1, and a generator G of the order-Q
// subgroup modulo P. The same parameters are used by all participants.
type Parameters struct {
	P uint64 `json:"p"`
	Q uint64 `json:"q"`
	G uint64 `json:"g"`
}

// Minimal number of distinct prime factors of p-1 for p to be considered
// as a modulus.
const minDistinctFactors = 4

// Upper cap on the subgroup order search: once q reaches it, the modulus
// search stops even if q is still below the derived minimum.
const maxQCap = 502000

// Validate checks the structural invariants of the parameters: P and Q
// are odd primes, Q divides P-1, 1 < G < P and G^Q = 1 mod P. Primality
// is tested by trial division, which is only practical for the small
// widths this package is meant for.
func (pp Parameters) Validate() error {
	if pp.Q < 3 || pp.P < 5 || pp.P <= pp.Q {
		return errors.Wrapf(ErrInvalidParameters, "out of range (p=%d, q=%d)", pp.P, pp.Q)
	}
	if (pp.P-1)%pp.Q != 0 {
		return errors.Wrapf(ErrInvalidParameters, "q=%d does not divide p-1", pp.Q)
	}
	if pp.G <= 1 || pp.G >= pp.P {
		return errors.Wrapf(ErrInvalidParameters, "generator %d out of range", pp.G)
	}
	if !is_prime(pp.Q) || !is_prime(pp.P) {
		return errors.Wrap(ErrInvalidParameters, "p and q must be prime")
	}
	if ModPow(pp.G, pp.Q, pp.P) != 1 {
		return errors.Wrapf(ErrInvalidParameters, "generator %d does not have order q", pp.G)
	}
	return nil
}

// String returns the "p:q:g" text form of the parameters.
func (pp Parameters) String() string {
	return fmt.Sprintf("%d:%d:%d", pp.P, pp.Q, pp.G)
}

// FindQ picks a candidate subgroup order for modulus p: the distinct
// prime factors of p-1 are collected, and one of them is chosen uniformly
// at random. Zero is returned if p-1 has fewer than four distinct prime
// factors. The table MUST cover the square root of p-1.
func FindQ(cfg *Config, table []uint64, p uint64) (uint64, error) {
	return find_q(new_sampler(cfg.rng()), table, p)
}

func find_q(rs *sampler, table []uint64, p uint64) (uint64, error) {
	if p < 3 {
		return 0, nil
	}
	var distinct []uint64
	err := Factorize(p-1, table, func(f uint64) {
		if len(distinct) == 0 || distinct[len(distinct)-1] != f {
			distinct = append(distinct, f)
		}
	})
	if err != nil {
		return 0, err
	}
	if len(distinct) < minDistinctFactors {
		return 0, nil
	}
	i, err := rs.below(uint64(len(distinct)))
	if err != nil {
		return 0, err
	}
	return distinct[i], nil
}

// GenerateParameters produces a new set of domain parameters, taking the
// modulus from the ascending prime table. Candidate moduli are drawn from
// table[minIndex:maxIndex]; a non-positive minIndex selects the middle of
// the table and a non-positive maxIndex selects its end.
//
// The subgroup order must reach a minimum derived from the smallest
// candidate modulus (one twentieth of it), or the fixed cap of 502000.
// Each index is tried at most once, and the search is bounded by the
// configured attempt ceiling; ErrParameterSearch is returned when no
// modulus qualifies.
func GenerateParameters(cfg *Config, table []uint64,
	minIndex, maxIndex int) (Parameters, error) {

	var pp Parameters
	if minIndex <= 0 {
		minIndex = int(math.Round(float64(len(table)) / 2))
	}
	if maxIndex <= 0 || maxIndex > len(table) {
		maxIndex = len(table)
	}
	if minIndex >= maxIndex {
		return pp, errors.Wrapf(ErrEmptyRange, "[%d, %d) in table of %d primes",
			minIndex, maxIndex, len(table))
	}

	log := cfg.logger("params")
	rs := new_sampler(cfg.rng())
	minQ := uint64(math.Round(float64(table[minIndex]) / 20))
	span := uint64(maxIndex - minIndex)
	tried := make(map[uint64]bool)

	var p, q uint64
	n, ok, err := retry(cfg.attempts(), func() (bool, error) {
		if uint64(len(tried)) == span {
			return false, errors.Wrapf(ErrParameterSearch,
				"all %d candidate moduli rejected", span)
		}
		idx, err := rs.below(span)
		if err != nil {
			return false, err
		}
		if tried[idx] {
			return false, nil
		}
		tried[idx] = true
		p = table[minIndex+int(idx)]
		q, err = find_q(rs, table, p)
		if err != nil {
			return false, err
		}
		return q != 0 && (q >= minQ || q >= maxQCap), nil
	})
	if err != nil {
		return pp, err
	}
	if !ok {
		log.Warn().Int("attempts", n).Uint64("min_q", minQ).Msg("modulus search exhausted")
		return pp, errors.Wrapf(ErrParameterSearch, "after %d attempts", n)
	}
	log.Debug().Int("attempts", n).Uint64("p", p).Uint64("q", q).Msg("modulus selected")

	g, err := find_generator(p, q, cfg.attempts())
	if err != nil {
		log.Warn().Uint64("p", p).Uint64("q", q).Msg("generator search exhausted")
		return pp, err
	}
	pp.P = p
	pp.Q = q
	pp.G = g
	return pp, nil
}

// Search h = 2, 3, ... for the first h such that h^((p-1)/q) mod p is not
// 1, and return that power, which has order q. At most limit values of h
// are tried (and never beyond p-2).
func find_generator(p, q uint64, limit int) (uint64, error) {
	if q == 0 || p < 4 || (p-1)%q != 0 {
		return 0, errors.Wrapf(ErrInvalidParameters, "q=%d does not divide p-1 (p=%d)", q, p)
	}
	e := (p - 1) / q
	h := uint64(2)
	var g uint64
	_, ok, err := retry(limit, func() (bool, error) {
		if h >= p-1 {
			return false, errors.Wrapf(ErrGeneratorSearch, "every h below p-1 fails (p=%d, q=%d)", p, q)
		}
		g = ModPow(h, e, p)
		h++
		return g != 1, nil
	})
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.Wrapf(ErrGeneratorSearch, "p=%d, q=%d", p, q)
	}
	return g, nil
}
