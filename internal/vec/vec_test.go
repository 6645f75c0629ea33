package vec

import (
	"math"
	"testing"
)

func TestV2_Arithmetic(t *testing.T) {
	a := New(1, 2)
	b := New(4, 6)

	if got := a.Add(b); got != New(5, 8) {
		t.Errorf("Add failed: got %v", got)
	}
	if got := b.Sub(a); got != New(3, 4) {
		t.Errorf("Sub failed: got %v", got)
	}
	if got := a.Neg(); got != New(-1, -2) {
		t.Errorf("Neg failed: got %v", got)
	}
	if got := a.Scale(3); got != New(3, 6) {
		t.Errorf("Scale failed: got %v", got)
	}
	if got := b.Div(2); got != New(2, 3) {
		t.Errorf("Div failed: got %v", got)
	}
	if got := New(-1, 2).Abs(); got != New(1, 2) {
		t.Errorf("Abs failed: got %v", got)
	}
	if got := Splat(7); got != New(7, 7) {
		t.Errorf("Splat failed: got %v", got)
	}
}

func TestV2_Mag(t *testing.T) {
	tests := []struct {
		v        V2
		expected float64
	}{
		{New(3, 4), 5},
		{New(0, 0), 0},
		{New(-3, -4), 5},
		{New(1, 0), 1},
	}

	for _, tt := range tests {
		if got := tt.v.Mag(); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("Mag(%v) = %v, want %v", tt.v, got, tt.expected)
		}
	}
}

func TestDist(t *testing.T) {
	if got := Dist(New(1, 1), New(4, 5)); math.Abs(got-5) > 1e-12 {
		t.Errorf("Dist = %v, want 5", got)
	}
	if Dist(New(2, 3), New(2, 3)) != 0 {
		t.Error("distance to self should be zero")
	}
}

func TestV2_Normalize(t *testing.T) {
	n := New(3, 4).Normalize()
	if math.Abs(n.Mag()-1) > 1e-12 {
		t.Errorf("expected unit vector, got %v", n)
	}

	if Zero.Normalize().IsFinite() {
		t.Error("normalizing the zero vector should not be finite")
	}
}

func TestV2_InPlace(t *testing.T) {
	v := New(1, 1)
	v.AddAssign(New(2, 3))
	v.SubAssign(New(1, 1))
	v.ScaleAssign(2)
	if v != New(4, 6) {
		t.Errorf("in-place ops failed: got %v", v)
	}
}

func TestV2_IsFinite(t *testing.T) {
	tests := []struct {
		name  string
		v     V2
		valid bool
	}{
		{"zero", Zero, true},
		{"normal", New(1.5, -2), true},
		{"NaN x", New(math.NaN(), 0), false},
		{"+Inf y", New(0, math.Inf(1)), false},
		{"div by zero", New(1, 1).Div(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsFinite(); got != tt.valid {
				t.Errorf("IsFinite() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestV2_Lerp(t *testing.T) {
	mid := New(0, 0).Lerp(New(10, -4), 0.5)
	if mid != New(5, -2) {
		t.Errorf("Lerp midpoint = %v", mid)
	}
}

func TestV2_String(t *testing.T) {
	if s := New(1, 2.5).String(); s != "(1, 2.5)" {
		t.Errorf("String() = %q", s)
	}
}
