package tinydsa

import (
	"io"

	"github.com/rs/zerolog"
)

// DefaultMaxAttempts bounds every retry loop when Config.MaxAttempts is
// not set. With parameters of the sizes this package targets, a retry
// loop that has not succeeded after that many draws will not succeed.
const DefaultMaxAttempts = 1 << 16

// Config carries the ambient settings of the generation and signing
// operations. A nil *Config is valid and selects all defaults.
type Config struct {
	// Rand is the random source; nil selects crypto/rand.Reader. It need
	// not be cryptographically secure, but it MUST NOT be shared between
	// concurrent calls unless it is safe for concurrent use.
	Rand io.Reader

	// MaxAttempts is the ceiling applied to each retry loop (modulus
	// search, generator search, key search, per-chunk nonce search).
	// Zero or negative selects DefaultMaxAttempts.
	MaxAttempts int

	// Logger receives retry diagnostics; nil disables logging.
	Logger *zerolog.Logger
}

// DefaultConfig returns a configuration using the OS RNG, the default
// attempt ceiling and no logging.
func DefaultConfig() *Config {
	return &Config{MaxAttempts: DefaultMaxAttempts}
}

// WithSeed returns a copy of the configuration whose random source is a
// deterministic stream derived from seed.
func (c *Config) WithSeed(seed []byte) *Config {
	d := Config{}
	if c != nil {
		d = *c
	}
	d.Rand = NewSeededReader(seed)
	return &d
}

func (c *Config) attempts() int {
	if c == nil || c.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return c.MaxAttempts
}

func (c *Config) rng() io.Reader {
	if c == nil {
		return nil
	}
	return c.Rand
}

// Get a logger tagged with the given component name.
func (c *Config) logger(component string) zerolog.Logger {
	if c == nil || c.Logger == nil {
		return zerolog.Nop()
	}
	return c.Logger.With().Str("component", component).Logger()
}
