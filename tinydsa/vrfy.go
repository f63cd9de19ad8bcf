package tinydsa

// Verify a signature.
//
//   - params are the shared domain parameters
//   - y is the signer's public key
//   - sig is the signature to verify
//   - message is hashed with hash into digest chunks
//
// Returned value is true if and only if the signature has exactly one
// pair per digest chunk and every pair is valid for its chunk. A pair
// with r or s outside (0,Q), or a null digest chunk, makes the whole
// signature invalid. Malformed parameters also yield false; this
// function never fails otherwise.
func Verify(params Parameters, y uint64, sig Signature,
	message []byte, hash HashFunc) bool {

	return VerifyDigest(params, y, sig, hash(message))
}

// VerifyDigest verifies a signature against precomputed digest chunks;
// see Verify.
func VerifyDigest(params Parameters, y uint64, sig Signature,
	digest []uint64) bool {

	if check_params(params) != nil {
		return false
	}
	if len(sig) != len(digest) || len(sig) == 0 {
		return false
	}
	for i, pair := range sig {
		if !verify_chunk(params, y, pair, digest[i]) {
			return false
		}
	}
	return true
}

// Verify one pair against one digest chunk:
//
//	w = s^(-1) mod q
//	u1 = (h + 1)*w mod q
//	u2 = r*w mod q
//	v = ((g^u1 * y^u2) mod p) mod q
//
// The pair is valid if and only if v = r.
func verify_chunk(params Parameters, y uint64, pair Pair, h uint64) bool {
	q := params.Q
	p := params.P
	if pair.R == 0 || pair.R >= q || pair.S == 0 || pair.S >= q {
		return false
	}
	if h == NullDigest {
		return false
	}
	w := ModInverse(pair.S, q)
	if w == 0 {
		return false
	}
	u1 := mul_mod(add_mod(h%q, 1%q, q), w, q)
	u2 := mul_mod(pair.R, w, q)
	v := mul_mod(ModPow(params.G, u1, p), ModPow(y, u2, p), p) % q
	return v == pair.R
}
