package numeric

import "testing"

func TestMinMax(t *testing.T) {
	if got := Min(3, 7); got != 3 {
		t.Errorf("Min(3,7) = %d, want 3", got)
	}
	if got := Max(3, 7); got != 7 {
		t.Errorf("Max(3,7) = %d, want 7", got)
	}
}

func TestRoundupRounddown(t *testing.T) {
	if got := Roundup(13, 8); got != 16 {
		t.Errorf("Roundup(13,8) = %d, want 16", got)
	}
	if got := Rounddown(13, 8); got != 8 {
		t.Errorf("Rounddown(13,8) = %d, want 8", got)
	}
	if got := Roundup(16, 8); got != 16 {
		t.Errorf("Roundup(16,8) = %d, want 16 (already aligned)", got)
	}
}

func TestIsPow2(t *testing.T) {
	for _, v := range []uint64{1, 2, 4, 1024} {
		if !IsPow2(v) {
			t.Errorf("IsPow2(%d) = false, want true", v)
		}
	}
	for _, v := range []uint64{0, 3, 5, 1023} {
		if IsPow2(v) {
			t.Errorf("IsPow2(%d) = true, want false", v)
		}
	}
}

func TestLog2(t *testing.T) {
	cases := map[uint64]uint{1: 0, 2: 1, 8: 3, 1024: 10}
	for v, want := range cases {
		if got := Log2(v); got != want {
			t.Errorf("Log2(%d) = %d, want %d", v, got, want)
		}
	}
}

func TestLog2PanicsOnZero(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Log2(0) did not panic")
		}
	}()
	Log2(uint64(0))
}

func TestNextPow2(t *testing.T) {
	cases := map[uint64]uint64{
		0:    1,
		1:    1,
		2:    2,
		3:    4,
		1000: 1024,
		1024: 1024,
		1025: 2048,
	}
	for v, want := range cases {
		if got := NextPow2(v); got != want {
			t.Errorf("NextPow2(%d) = %d, want %d", v, got, want)
		}
	}
}

func TestNextPow2Overflow(t *testing.T) {
	if got := NextPow2(^uint64(0)); got != 0 {
		t.Errorf("NextPow2(max uint64) = %d, want 0 (overflow sentinel)", got)
	}
}
