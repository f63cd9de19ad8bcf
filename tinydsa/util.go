package tinydsa

import (
	"crypto/rand"
	"io"
	"math/bits"

	"github.com/pkg/errors"
	sha3 "golang.org/x/crypto/sha3"
)

// Utility functions: random sampling and bounded retries.

// A deterministic random source based on four parallel SHAKE256
// instances, with interleaved outputs. It is used for reproducible runs
// (tests, stress trials replayed from a seed); it is not safe for
// concurrent use.
type shake256x4 struct {
	state [4]sha3.ShakeHash
	buf   [4 * 136]byte
	ptr   int
}

// NewSeededReader returns a deterministic random source derived from the
// provided seed. Two readers created with the same seed produce the same
// byte stream.
func NewSeededReader(seed []byte) io.Reader {
	return newSHAKE256x4(seed)
}

// Create a new SHAKE256x4 instance, initialized with the provided seed.
func newSHAKE256x4(seed []byte) *shake256x4 {
	r := new(shake256x4)
	for i := 0; i < 4; i++ {
		var tmp [1]byte
		tmp[0] = byte(i)
		r.state[i] = sha3.NewShake256()
		r.state[i].Write(seed)
		r.state[i].Write(tmp[:])
	}
	r.ptr = len(r.buf)
	return r
}

// Read fills p with the next bytes of the stream; it never fails.
func (r *shake256x4) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if r.ptr == len(r.buf) {
			r.refill()
		}
		k := copy(p[n:], r.buf[r.ptr:])
		r.ptr += k
		n += k
	}
	return n, nil
}

// Refill a SHAKE256x4 instance.
func (r *shake256x4) refill() {
	var tmp [136]byte
	for i := 0; i < 4; i++ {
		r.state[i].Read(tmp[:])
		for j := 0; j < 17; j++ {
			u := (i << 3) + (j << 5)
			v := j << 3
			copy(r.buf[u:u+8], tmp[v:v+8])
		}
	}
	r.ptr = 0
}

// Buffered uniform sampler over an arbitrary random source.
type sampler struct {
	rng io.Reader
	buf [256]byte
	ptr int
}

// Create a sampler; a nil source means the OS RNG.
func new_sampler(rng io.Reader) *sampler {
	if rng == nil {
		rng = rand.Reader
	}
	s := &sampler{rng: rng}
	s.ptr = len(s.buf)
	return s
}

// Get next 64-bit value.
func (s *sampler) next_u64() (uint64, error) {
	if s.ptr > len(s.buf)-8 {
		if _, err := io.ReadFull(s.rng, s.buf[:]); err != nil {
			return 0, errors.Wrap(err, "tinydsa: random source failed")
		}
		s.ptr = 0
	}
	x := uint64(0)
	for i := 0; i < 8; i++ {
		x |= uint64(s.buf[s.ptr+i]) << (i << 3)
	}
	s.ptr += 8
	return x, nil
}

// Get a uniform value in [0, n-1]. n MUST be non-zero. Rejection sampling
// on the top bits keeps the distribution exact.
func (s *sampler) below(n uint64) (uint64, error) {
	if n == 1 {
		return 0, nil
	}
	shift := uint(bits.LeadingZeros64(n - 1))
	for {
		x, err := s.next_u64()
		if err != nil {
			return 0, err
		}
		x >>= shift
		if x < n {
			return x, nil
		}
	}
}

// Get a uniform value in [lo, hi]; lo MUST NOT exceed hi, and the range
// MUST NOT be the whole 64-bit space.
func (s *sampler) between(lo, hi uint64) (uint64, error) {
	x, err := s.below(hi - lo + 1)
	if err != nil {
		return 0, err
	}
	return lo + x, nil
}

// Run step until it reports completion, at most limit times. The number
// of calls made is returned along with the completion status; an error
// from step stops the loop immediately.
func retry(limit int, step func() (bool, error)) (int, bool, error) {
	for i := 1; i <= limit; i++ {
		done, err := step()
		if err != nil {
			return i, false, err
		}
		if done {
			return i, true, nil
		}
	}
	return limit, false, nil
}
