package words

import (
	"strings"
	"testing"

	"github.com/ncw/gmp"
)

func TestFromIntToIntRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		bits int
	}{
		{"zero", "0", 512},
		{"one", "1", 512},
		{"single word", "deadbeef", 512},
		{"word boundary", "100000000", 512},
		{"full low width", "f" + strings.Repeat("f", 127), 512},
		{"high width value", "123456789abcdef0" + strings.Repeat("5a", 120), 1024},
		{"total width value", "1" + strings.Repeat("0f", 191), 1536},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, ok := new(gmp.Int).SetString(tt.hex, 16)
			if !ok {
				t.Fatalf("bad test literal %q", tt.hex)
			}
			w := FromInt(x, tt.bits)
			if len(w) != tt.bits/32 {
				t.Fatalf("FromInt returned %d words, want %d", len(w), tt.bits/32)
			}
			back := ToInt(w)
			if back.Cmp(x) != 0 {
				t.Errorf("round trip mismatch: got %s, want %s", back.String(), x.String())
			}
		})
	}
}

func TestFromIntTruncatesOverWideInput(t *testing.T) {
	// 2^512 does not fit 512 bits; only the low words survive.
	x := new(gmp.Int).Lsh(gmp.NewInt(1), 512)
	x.Add(x, gmp.NewInt(5))
	w := FromInt(x, 512)
	if got := ToInt(w); got.Cmp(gmp.NewInt(5)) != 0 {
		t.Errorf("expected truncation to 5, got %s", got.String())
	}
}

func TestHex(t *testing.T) {
	w := []uint32{0xdeadbeef, 0x00000001}
	if got, want := Hex(w), "0x00000001deadbeef"; got != want {
		t.Errorf("Hex = %q, want %q", got, want)
	}
}

func TestEqual(t *testing.T) {
	a := []uint32{1, 2, 3}
	if !Equal(a, []uint32{1, 2, 3}) {
		t.Error("identical arrays should compare equal")
	}
	if Equal(a, []uint32{1, 2}) {
		t.Error("different lengths should not compare equal")
	}
	if Equal(a, []uint32{1, 2, 4}) {
		t.Error("different words should not compare equal")
	}
}

func TestRandomOdd(t *testing.T) {
	for _, bits := range []int{512, 1024, 1536} {
		x, err := RandomOdd(bits)
		if err != nil {
			t.Fatalf("RandomOdd(%d): %v", bits, err)
		}
		if x.BitLen() != bits {
			t.Errorf("RandomOdd(%d).BitLen() = %d, want %d", bits, x.BitLen(), bits)
		}
		if b := x.Bytes(); b[len(b)-1]&1 != 1 {
			t.Errorf("RandomOdd(%d) returned an even value", bits)
		}
	}
}
