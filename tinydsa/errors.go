package tinydsa

import (
	"github.com/pkg/errors"
)

// Errors reported by this package. Degenerate intermediate values (r = 0,
// s = 0, a null inverse, g = 1) are never reported; they only cause a
// retry. An error is returned once a retry loop reaches its ceiling, or
// when the inputs cannot work at all.
var (
	ErrInvalidParameters = errors.New("tinydsa: invalid domain parameters")
	ErrInvalidKey        = errors.New("tinydsa: invalid key")
	ErrTableExhausted    = errors.New("tinydsa: prime table too short to factor value")
	ErrEmptyRange        = errors.New("tinydsa: empty prime table index range")
	ErrParameterSearch   = errors.New("tinydsa: no suitable modulus found")
	ErrGeneratorSearch   = errors.New("tinydsa: no generator found")
	ErrKeySearch         = errors.New("tinydsa: no suitable key found")
	ErrNonceSearch       = errors.New("tinydsa: no suitable per-chunk nonce found")
	ErrNullDigest        = errors.New("tinydsa: digest contains a null chunk")
	ErrEmptyDigest       = errors.New("tinydsa: digest is empty")
	ErrEncoding          = errors.New("tinydsa: malformed encoding")
)
