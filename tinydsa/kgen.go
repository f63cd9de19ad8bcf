package tinydsa

import (
	"github.com/pkg/errors"
)

// KeyPair is a participant's key pair: the private key X in (0,Q) and
// the public key Y = G^X mod P.
type KeyPair struct {
	Private uint64 `json:"private"`
	Public  uint64 `json:"public"`
}

// Public keys below this bound are rejected during generation.
const minPublicKey = 100

// GenerateKey creates a new key pair for the given domain parameters.
//
// The private key is drawn from the upper three quarters of (0,Q), and
// the draw is repeated while the public key is below 100. The loop is
// bounded by the configured attempt ceiling; ErrKeySearch is returned if
// no acceptable key was found, which in practice means that P is too
// small for a public key of at least 100 to exist.
func GenerateKey(cfg *Config, params Parameters) (KeyPair, error) {
	var kp KeyPair
	if err := check_params(params); err != nil {
		return kp, err
	}
	log := cfg.logger("keygen")
	rs := new_sampler(cfg.rng())

	// x = q - 1 - u, with u uniform in [0, span-1]; span is about 3q/4
	// and never exceeds q-1, which keeps x in [1, q-1].
	span := params.Q - params.Q/4 - 1
	n, ok, err := retry(cfg.attempts(), func() (bool, error) {
		u, err := rs.below(span)
		if err != nil {
			return false, err
		}
		kp.Private = params.Q - 1 - u
		kp.Public = ModPow(params.G, kp.Private, params.P)
		return kp.Public >= minPublicKey, nil
	})
	if err != nil {
		return KeyPair{}, err
	}
	if !ok {
		log.Warn().Int("attempts", n).Stringer("params", params).Msg("key search exhausted")
		return KeyPair{}, errors.Wrapf(ErrKeySearch, "after %d attempts", n)
	}
	log.Debug().Int("attempts", n).Uint64("public", kp.Public).Msg("key pair generated")
	return kp, nil
}

// PublicKey recomputes the public key matching private key x.
func PublicKey(params Parameters, x uint64) (uint64, error) {
	if err := check_params(params); err != nil {
		return 0, err
	}
	if x == 0 || x >= params.Q {
		return 0, errors.Wrapf(ErrInvalidKey, "private key %d not in (0,q)", x)
	}
	return ModPow(params.G, x, params.P), nil
}

// Cheap sanity checks on parameters, run by every operation that uses
// them (the full Validate() includes primality tests and is left to the
// caller).
func check_params(params Parameters) error {
	if params.Q < 2 || params.P < 3 || params.G < 2 || params.G >= params.P {
		return errors.Wrapf(ErrInvalidParameters, "p=%d, q=%d, g=%d",
			params.P, params.Q, params.G)
	}
	return nil
}
