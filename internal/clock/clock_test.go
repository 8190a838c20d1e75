package clock

import "testing"

func TestFixedClock(t *testing.T) {
	c := NewFixed(100)
	if got := c.NowNs(); got != 100 {
		t.Errorf("NowNs() = %v, want 100", got)
	}

	c.Set(500)
	if got := c.NowNs(); got != 500 {
		t.Errorf("after Set, NowNs() = %v, want 500", got)
	}

	c.Advance(50)
	if got := c.NowNs(); got != 550 {
		t.Errorf("after Advance, NowNs() = %v, want 550", got)
	}
}

func TestMonotonicNonDecreasing(t *testing.T) {
	m := NewMonotonic()
	a := m.NowNs()
	b := m.NowNs()
	if b < a {
		t.Errorf("NowNs went backwards: %v then %v", a, b)
	}
}
