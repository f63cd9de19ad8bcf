// Package stress runs repeated sign-and-verify trials against one set of
// domain parameters and reports how often valid signatures are rejected
// (never expected) and how often a signature also verifies for an
// unrelated random message of the same length.
package stress

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"io"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pornin/go-tiny-dsa/tinydsa"
	"github.com/pornin/go-tiny-dsa/vshash"
)

// Defaults for Options fields left at zero.
const (
	DefaultMinLength = 11
	DefaultLengths   = 8
)

// Options select the shape of a stress run.
type Options struct {
	Params tinydsa.Parameters

	// Keys is the number of key pairs generated; for each key, Messages
	// random messages are signed for each of Lengths message lengths,
	// starting at MinLength codes.
	Keys      int
	Messages  int
	MinLength int
	Lengths   int

	// Workers is the number of keys processed concurrently.
	Workers int

	// Hash defaults to vshash.Sum.
	Hash tinydsa.HashFunc

	MaxAttempts int

	// Seed makes the run reproducible: each key draws from its own
	// stream derived from Seed and the key index, so results do not
	// depend on Workers. Without a seed the OS RNG is used.
	Seed []byte

	Logger *zerolog.Logger
}

// Counts are trial outcome counters.
type Counts struct {
	Trials     int `json:"trials"`
	Failures   int `json:"failures"`
	Collisions int `json:"collisions"`
}

func (c *Counts) add(o Counts) {
	c.Trials += o.Trials
	c.Failures += o.Failures
	c.Collisions += o.Collisions
}

// Stats summarize a stress run.
type Stats struct {
	Counts
	Keys int `json:"keys"`

	// ByLength splits the counters by message length, in codes.
	ByLength map[int]Counts `json:"by_length"`

	// Largest values seen in signatures and keys.
	MaxR       uint64 `json:"max_r"`
	MaxS       uint64 `json:"max_s"`
	MaxPublic  uint64 `json:"max_public"`
	MaxPrivate uint64 `json:"max_private"`

	// PublicKeys counts key pairs per public key value.
	PublicKeys map[uint64]int `json:"-"`
}

// DuplicateKeys returns the number of key pairs whose public key was
// already produced earlier in the run.
func (s *Stats) DuplicateKeys() int {
	n := 0
	for _, c := range s.PublicKeys {
		n += c - 1
	}
	return n
}

func (s *Stats) merge(o *Stats) {
	s.Counts.add(o.Counts)
	s.Keys += o.Keys
	for l, c := range o.ByLength {
		cur := s.ByLength[l]
		cur.add(c)
		s.ByLength[l] = cur
	}
	s.MaxR = max(s.MaxR, o.MaxR)
	s.MaxS = max(s.MaxS, o.MaxS)
	s.MaxPublic = max(s.MaxPublic, o.MaxPublic)
	s.MaxPrivate = max(s.MaxPrivate, o.MaxPrivate)
	for y, c := range o.PublicKeys {
		s.PublicKeys[y] += c
	}
}

func newStats() *Stats {
	return &Stats{
		ByLength:   make(map[int]Counts),
		PublicKeys: make(map[uint64]int),
	}
}

func (o *Options) setDefaults() error {
	if o.Keys <= 0 || o.Messages <= 0 {
		return errors.New("stress: keys and messages must be positive")
	}
	if o.MinLength <= 0 {
		o.MinLength = DefaultMinLength
	}
	if o.Lengths <= 0 {
		o.Lengths = DefaultLengths
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.Hash == nil {
		o.Hash = vshash.Sum
	}
	return nil
}

// Run performs the stress run. Metrics may be nil. The run stops at the
// first generation or signing error, or when ctx is cancelled.
func Run(ctx context.Context, opts Options, m *Metrics) (Stats, error) {
	if err := opts.setDefaults(); err != nil {
		return Stats{}, err
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "stress").Logger()
	}
	log.Info().Stringer("params", opts.Params).Int("keys", opts.Keys).
		Int("messages", opts.Messages).Int("workers", opts.Workers).Msg("stress run started")

	total := newStats()
	var mu sync.Mutex

	jobs := make(chan int)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < opts.Keys; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < opts.Workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				st, err := runKey(gctx, &opts, i, m)
				if err != nil {
					return errors.Wrapf(err, "key %d", i)
				}
				mu.Lock()
				total.merge(st)
				mu.Unlock()
				log.Debug().Int("key", i).Int("failures", st.Failures).
					Int("collisions", st.Collisions).Msg("key done")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	ev := log.Info()
	if total.Failures > 0 {
		ev = log.Error()
	}
	ev.Int("trials", total.Trials).Int("failures", total.Failures).
		Int("collisions", total.Collisions).Msg("stress run finished")
	return *total, nil
}

// Run all trials for key number idx.
func runKey(ctx context.Context, opts *Options, idx int, m *Metrics) (*Stats, error) {
	rng := io.Reader(rand.Reader)
	if opts.Seed != nil {
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], uint64(idx))
		seed := append(append([]byte(nil), opts.Seed...), tmp[:]...)
		rng = tinydsa.NewSeededReader(seed)
	}
	cfg := &tinydsa.Config{
		Rand:        rng,
		MaxAttempts: opts.MaxAttempts,
		Logger:      opts.Logger,
	}

	st := newStats()
	kp, err := tinydsa.GenerateKey(cfg, opts.Params)
	if err != nil {
		return nil, err
	}
	st.Keys = 1
	st.MaxPublic = kp.Public
	st.MaxPrivate = kp.Private
	st.PublicKeys[kp.Public] = 1
	if m != nil {
		m.Keys.Inc()
	}

	for j := 0; j < opts.Lengths; j++ {
		n := opts.MinLength + j
		var c Counts
		for i := 0; i < opts.Messages; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			msg, err := randomText(rng, n)
			if err != nil {
				return nil, err
			}
			other, err := randomText(rng, n)
			if err != nil {
				return nil, err
			}
			sig, err := tinydsa.Sign(cfg, opts.Params, kp.Private, msg, opts.Hash)
			if err != nil {
				return nil, err
			}
			for _, p := range sig {
				st.MaxR = max(st.MaxR, p.R)
				st.MaxS = max(st.MaxS, p.S)
			}
			c.Trials++
			if !tinydsa.Verify(opts.Params, kp.Public, sig, msg, opts.Hash) {
				c.Failures++
			}
			if tinydsa.Verify(opts.Params, kp.Public, sig, other, opts.Hash) {
				c.Collisions++
			}
		}
		st.ByLength[n] = c
		st.Counts.add(c)
		if m != nil {
			l := strconv.Itoa(n)
			m.Trials.WithLabelValues(l).Add(float64(c.Trials))
			m.Failures.WithLabelValues(l).Add(float64(c.Failures))
			m.Collisions.WithLabelValues(l).Add(float64(c.Collisions))
		}
	}
	return st, nil
}

// Get n uniformly random characters of the 36-symbol alphabet.
func randomText(rng io.Reader, n int) ([]byte, error) {
	codes := make([]int, 0, n)
	var buf [32]byte
	for len(codes) < n {
		if _, err := io.ReadFull(rng, buf[:]); err != nil {
			return nil, errors.Wrap(err, "stress: random source failed")
		}
		for _, b := range buf {
			// 252 = 7 * 36; larger bytes would bias the draw.
			if b < 252 && len(codes) < n {
				codes = append(codes, int(b)%vshash.Radix)
			}
		}
	}
	return vshash.Text(codes), nil
}
