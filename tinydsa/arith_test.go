package tinydsa

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"

	"github.com/pornin/go-tiny-dsa/primes"
)

func TestModPow(t *testing.T) {
	var cases = []struct {
		b, e, m, want uint64
	}{
		{4, 1, 7, 4},
		{4, 2, 7, 2},
		{4, 3, 7, 1},
		{4, 4, 7, 4},
		{12345, 0, 97, 1},
		{0, 0, 97, 1},
		{12345, 678, 1, 0},
		{2, 150, 153151, 45535},
		{45535, 1021, 153151, 1},
	}
	for _, c := range cases {
		if r := ModPow(c.b, c.e, c.m); r != c.want {
			t.Fatalf("ERR: %d^%d mod %d -> %d (exp: %d)\n", c.b, c.e, c.m, r, c.want)
		}
	}
}

func TestModPowWide(t *testing.T) {
	// Moduli close to 2^64 would overflow any single-word product.
	var moduli = []uint64{
		0xFFFFFFFFFFFFFFC5, 0xFFFFFFFB, 0x8000000000000001, 1000000007,
	}
	bases := []uint64{2, 3, 0xFFFFFFFFFFFFFFFF, 0x123456789ABCDEF}
	exps := []uint64{0, 1, 2, 65537, 0xFFFFFFFFFFFFFFFF}
	for _, m := range moduli {
		for _, b := range bases {
			for _, e := range exps {
				r := ModPow(b, e, m)
				ref := new(big.Int).Exp(new(big.Int).SetUint64(b),
					new(big.Int).SetUint64(e), new(big.Int).SetUint64(m))
				if r != ref.Uint64() {
					t.Fatalf("ERR: %d^%d mod %d -> %d (exp: %s)\n", b, e, m, r, ref)
				}
			}
		}
	}
}

func TestModArith(t *testing.T) {
	m := uint64(0xFFFFFFFFFFFFFFC5)
	if r := add_mod(m-1, m-2, m); r != m-3 {
		t.Fatalf("ERR: add_mod wrapped -> %d", r)
	}
	if r := sub_mod(1, 2, m); r != m-1 {
		t.Fatalf("ERR: sub_mod -> %d", r)
	}
	if r := mul_mod(m-1, m-1, m); r != 1 {
		t.Fatalf("ERR: mul_mod -> %d", r)
	}
}

func TestModInverse(t *testing.T) {
	for _, q := range []uint64{2, 3, 1021, 4093} {
		for k := uint64(1); k < q; k++ {
			inv := ModInverse(k, q)
			if mul_mod(inv, k, q) != 1 {
				t.Fatalf("ERR: %d^-1 mod %d -> %d\n", k, q, inv)
			}
		}
	}
	if ModInverse(0, 1021) != 0 || ModInverse(1021, 1021) != 0 {
		t.Fatal("ERR: inverse of a multiple of q should be 0")
	}
}

func TestMulOrder(t *testing.T) {
	if r := MulOrder(4, 7, 20); r != 3 {
		t.Fatalf("ERR: order of 4 mod 7 -> %d", r)
	}
	if r := MulOrder(45535, 153151, 2000); r != 1021 {
		t.Fatalf("ERR: order of g -> %d", r)
	}
	// Order is 1021; a bound at or below it finds nothing.
	if r := MulOrder(45535, 153151, 1021); r != 0 {
		t.Fatalf("ERR: bounded order search -> %d", r)
	}
	if r := MulOrder(0, 7, 100); r != 0 {
		t.Fatalf("ERR: order of 0 -> %d", r)
	}
}

func TestFactorize(t *testing.T) {
	table := primes.Sieve(1000)
	f, err := FactorizeList(153150, table)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint64{2, 3, 5, 5, 1021}
	if len(f) != len(want) {
		t.Fatalf("ERR: factors of 153150 -> %v", f)
	}
	for i := range want {
		if f[i] != want[i] {
			t.Fatalf("ERR: factors of 153150 -> %v", f)
		}
	}

	h, err := FactorizeHash(153150, table)
	if err != nil {
		t.Fatal(err)
	}
	if len(h) != 4 || h[2] != 1 || h[3] != 1 || h[5] != 2 || h[1021] != 1 {
		t.Fatalf("ERR: factor counts of 153150 -> %v", h)
	}

	for _, n := range []uint64{0, 1} {
		f, err = FactorizeList(n, table)
		if err != nil || len(f) != 0 {
			t.Fatalf("ERR: factors of %d -> %v, %v", n, f, err)
		}
	}

	// 1021 * 1031 has no factor below 100.
	_, err = FactorizeList(1021*1031, primes.Sieve(100))
	if !errors.Is(err, ErrTableExhausted) {
		t.Fatalf("ERR: expected ErrTableExhausted, got %v", err)
	}
	f, err = FactorizeList(1021*1031, primes.Sieve(1100))
	if err != nil || len(f) != 2 || f[0] != 1021 || f[1] != 1031 {
		t.Fatalf("ERR: factors of 1021*1031 -> %v, %v", f, err)
	}
}

func TestIsPrime(t *testing.T) {
	table := primes.Sieve(5000)
	j := 0
	for n := uint64(0); n <= 5000; n++ {
		exp := j < len(table) && table[j] == n
		if exp {
			j++
		}
		if is_prime(n) != exp {
			t.Fatalf("ERR: is_prime(%d) -> %v", n, !exp)
		}
	}
}
