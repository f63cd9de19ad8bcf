package tinydsa

import (
	"math"

	"github.com/pkg/errors"
)

// HashFunc maps a message to its ordered sequence of digest chunks. One
// signature pair is produced per chunk. A chunk equal to NullDigest marks
// unusable material: it cannot be signed, and it makes verification fail.
type HashFunc func(message []byte) []uint64

// NullDigest is the null chunk sentinel.
const NullDigest uint64 = math.MaxUint64

// Pair is the signature of a single digest chunk.
type Pair struct {
	R uint64 `json:"r"`
	S uint64 `json:"s"`
}

// Signature is the ordered sequence of per-chunk pairs.
type Signature []Pair

// Sign a message with private key x.
//
//   - cfg provides the random source and attempt ceiling (nil for defaults)
//   - params are the shared domain parameters
//   - x is the private key, in (0,Q)
//   - message is hashed with hash into digest chunks
//
// Each chunk is signed independently, with a fresh per-chunk nonce. An
// error is returned if the digest is empty or contains a null chunk, if
// the key is out of range, or if the nonce search for some chunk exceeds
// the attempt ceiling (ErrNonceSearch).
func Sign(cfg *Config, params Parameters, x uint64,
	message []byte, hash HashFunc) (Signature, error) {

	return SignDigest(cfg, params, x, hash(message))
}

// SignDigest signs precomputed digest chunks; see Sign.
func SignDigest(cfg *Config, params Parameters, x uint64,
	digest []uint64) (Signature, error) {

	if err := check_params(params); err != nil {
		return nil, err
	}
	if x == 0 || x >= params.Q {
		return nil, errors.Wrapf(ErrInvalidKey, "private key %d not in (0,q)", x)
	}
	if len(digest) == 0 {
		return nil, ErrEmptyDigest
	}
	log := cfg.logger("sign")
	rs := new_sampler(cfg.rng())
	sig := make(Signature, len(digest))
	for i, h := range digest {
		if h == NullDigest {
			return nil, errors.Wrapf(ErrNullDigest, "chunk %d", i)
		}
		p, n, err := sign_chunk(rs, params, x, h, cfg.attempts())
		if err != nil {
			log.Warn().Int("chunk", i).Int("attempts", n).Err(err).Msg("chunk signing failed")
			return nil, errors.Wrapf(err, "chunk %d", i)
		}
		if n > 1 {
			log.Debug().Int("chunk", i).Int("attempts", n).Msg("nonce retried")
		}
		sig[i] = p
	}
	return sig, nil
}

// Sign a single digest chunk h:
//
//	k uniform in [1, q-1]
//	r = (g^k mod p) mod q, retried if zero
//	kinv = k^(q-2) mod q, retried if zero
//	s = ((h + 1) + x*r) * kinv mod q, retried if zero
//
// The chunk value is offset by one so that an all-zero chunk still
// contributes to s. The number of nonces drawn is returned.
func sign_chunk(rs *sampler, params Parameters, x, h uint64,
	limit int) (Pair, int, error) {

	q := params.Q
	hm := add_mod(h%q, 1%q, q)
	xm := x % q
	var pair Pair
	n, ok, err := retry(limit, func() (bool, error) {
		k, err := rs.between(1, q-1)
		if err != nil {
			return false, err
		}
		r := ModPow(params.G, k, params.P) % q
		if r == 0 {
			return false, nil
		}
		kinv := ModInverse(k, q)
		if kinv == 0 {
			return false, nil
		}
		s := mul_mod(add_mod(hm, mul_mod(xm, r, q), q), kinv, q)
		if s == 0 {
			return false, nil
		}
		pair = Pair{R: r, S: s}
		return true, nil
	})
	if err != nil {
		return Pair{}, n, err
	}
	if !ok {
		return Pair{}, n, errors.Wrapf(ErrNonceSearch, "after %d attempts", n)
	}
	return pair, n, nil
}
