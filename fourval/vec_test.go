package fourval

import "testing"

func TestFromU64Roundtrip(t *testing.T) {
	v := FromU64(8, 0xAB)
	got, ok := v.ToU64()
	if !ok || got != 0xAB {
		t.Fatalf("roundtrip: got (%d, %v), want (171, true)", got, ok)
	}
}

func TestToU64UnknownBit(t *testing.T) {
	v := FromU64(4, 0)
	v.SetBit(2, X)
	if _, ok := v.ToU64(); ok {
		t.Fatal("ToU64 should report ok=false when a bit is X")
	}
}

func TestAllConstructors(t *testing.T) {
	if !AllZero(4).Equal(FromU64(4, 0)) {
		t.Fatal("AllZero mismatch")
	}
	if !AllOne(4).Equal(FromU64(4, 0xF)) {
		t.Fatal("AllOne mismatch")
	}
	x := AllX(3)
	for i := 0; i < 3; i++ {
		if x.Bit(i) != X {
			t.Fatal("AllX should be all-X")
		}
	}
}

func TestSliceAndConcat(t *testing.T) {
	v := FromU64(8, 0xAB) // 1010 1011
	hi := v.Slice(7, 4)
	lo := v.Slice(3, 0)
	if val, _ := hi.ToU64(); val != 0xA {
		t.Fatalf("hi slice = %x, want a", val)
	}
	if val, _ := lo.ToU64(); val != 0xB {
		t.Fatalf("lo slice = %x, want b", val)
	}
	cat := Concat(hi, lo)
	if val, _ := cat.ToU64(); val != 0xAB {
		t.Fatalf("concat = %x, want ab", val)
	}
}

func TestRepeat(t *testing.T) {
	v := FromU64(2, 0b10)
	r := Repeat(v, 3)
	if r.Width() != 6 {
		t.Fatalf("width = %d, want 6", r.Width())
	}
	val, ok := r.ToU64()
	if !ok || val != 0b101010 {
		t.Fatalf("repeat = %b, want 101010", val)
	}
}

func TestBinOpZeroExtendsShorterOperand(t *testing.T) {
	a := FromU64(4, 0xF)
	b := FromU64(8, 0x0F)
	got := a.And(b)
	if got.Width() != 8 {
		t.Fatalf("width = %d, want 8", got.Width())
	}
	val, _ := got.ToU64()
	if val != 0x0F {
		t.Fatalf("got = %x, want f", val)
	}
}

func TestStringMSBFirst(t *testing.T) {
	v := FromU64(4, 0b0110)
	v.SetBit(3, X)
	if got, want := v.String(), "x110"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestMinWidthForValue(t *testing.T) {
	cases := []struct {
		v    uint64
		want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{255, 8},
		{256, 9},
	}
	for _, c := range cases {
		if got := MinWidthForValue(c.v); got != c.want {
			t.Errorf("MinWidthForValue(%d) = %d, want %d", c.v, got, c.want)
		}
	}
}

func TestSlicePanicsOnInvalidBounds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on invalid slice bounds")
		}
	}()
	v := FromU64(4, 0)
	_ = v.Slice(1, 2)
}
