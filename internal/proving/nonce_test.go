package proving

import "testing"

func TestCalcNonceGroup(t *testing.T) {
	cases := []struct {
		n, perAES uint32
		want      uint32
	}{
		{0, 16, 0},
		{15, 16, 0},
		{16, 16, 1},
		{31, 16, 1},
		{32, 16, 2},
	}
	for _, c := range cases {
		if got := CalcNonceGroup(c.n, c.perAES); got != c.want {
			t.Errorf("CalcNonceGroup(%d, %d) = %d, want %d", c.n, c.perAES, got, c.want)
		}
	}
}

func TestCalcNonce(t *testing.T) {
	cases := []struct {
		group, perAES, offset uint32
		want                  uint32
	}{
		{0, 16, 0, 0},
		{0, 16, 15, 15},
		{1, 16, 0, 16},
		{1, 16, 17, 17}, // offset wraps mod perAES: 17 % 16 = 1, so nonce = 16 + 1
	}
	for _, c := range cases {
		if got := CalcNonce(c.group, c.perAES, c.offset); got != c.want {
			t.Errorf("CalcNonce(%d, %d, %d) = %d, want %d", c.group, c.perAES, c.offset, got, c.want)
		}
	}
}

func TestNonceGroupRange(t *testing.T) {
	cases := []struct {
		a, b, perAES       uint32
		wantStart, wantEnd uint32
	}{
		{0, 1, 16, 0, 1},
		{0, 16, 16, 0, 1},
		{0, 17, 16, 0, 2},
		{15, 17, 16, 0, 2},
		{16, 17, 16, 1, 2},
		{30, 48, 16, 1, 3},
		{47, 48, 16, 2, 3},
	}
	for _, c := range cases {
		start, end := NonceGroupRange(c.a, c.b, c.perAES)
		if start != c.wantStart || end != c.wantEnd {
			t.Errorf("NonceGroupRange(%d, %d, %d) = (%d, %d), want (%d, %d)",
				c.a, c.b, c.perAES, start, end, c.wantStart, c.wantEnd)
		}
	}
}
