package tinydsa

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Text encodings of parameters, keys and signatures.
//
// A signature is encoded as a string of uppercase base-36 digits (0-9,
// A-Z). Every component (r, then s, for each pair in order) is written
// over the same fixed number of digits, which is the number of base-36
// digits of Q-1; with Q = 1021 each component takes two digits. The
// encoding therefore depends on Q, and decoding needs the same Q.

// Get the number of base-36 digits used per signature component.
func component_width(q uint64) int {
	if q < 2 {
		return 1
	}
	return len(strconv.FormatUint(q-1, 36))
}

// EncodeSignature returns the base-36 text form of sig for subgroup
// order q. Components MUST be lower than q.
func EncodeSignature(q uint64, sig Signature) string {
	w := component_width(q)
	var sb strings.Builder
	sb.Grow(2 * w * len(sig))
	for _, p := range sig {
		put_component(&sb, p.R, w)
		put_component(&sb, p.S, w)
	}
	return sb.String()
}

// Write v over exactly w digits (zero-padded on the left).
func put_component(sb *strings.Builder, v uint64, w int) {
	d := strings.ToUpper(strconv.FormatUint(v, 36))
	for i := len(d); i < w; i++ {
		sb.WriteByte('0')
	}
	sb.WriteString(d)
}

// DecodeSignature parses the base-36 text form produced by
// EncodeSignature. Lowercase digits are accepted. An error is returned if
// the length is not a multiple of the pair width or a digit is invalid;
// range checks on the components are left to verification.
func DecodeSignature(q uint64, text string) (Signature, error) {
	w := component_width(q)
	if len(text) == 0 || len(text)%(2*w) != 0 {
		return nil, errors.Wrapf(ErrEncoding,
			"signature length %d is not a multiple of %d", len(text), 2*w)
	}
	sig := make(Signature, len(text)/(2*w))
	for i := range sig {
		off := i * 2 * w
		r, err := strconv.ParseUint(text[off:off+w], 36, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrEncoding, "pair %d: bad r digits", i)
		}
		s, err := strconv.ParseUint(text[off+w:off+2*w], 36, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrEncoding, "pair %d: bad s digits", i)
		}
		sig[i] = Pair{R: r, S: s}
	}
	return sig, nil
}

// ParseParameters parses the "p:q:g" form returned by Parameters.String.
// The result is not validated.
func ParseParameters(text string) (Parameters, error) {
	var pp Parameters
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != 3 {
		return pp, errors.Wrapf(ErrEncoding, "parameters %q: want p:q:g", text)
	}
	var vals [3]uint64
	for i, s := range parts {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return pp, errors.Wrapf(ErrEncoding, "parameters %q: %v", text, err)
		}
		vals[i] = v
	}
	pp.P, pp.Q, pp.G = vals[0], vals[1], vals[2]
	return pp, nil
}
