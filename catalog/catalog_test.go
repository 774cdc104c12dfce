package catalog

import (
	"math"
	"testing"
)

func TestLoad(t *testing.T) {
	r, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(r.TypeIDs()) == 0 {
		t.Fatal("no scrap types loaded")
	}
	if len(r.MutatorIDs()) == 0 {
		t.Fatal("no mutators loaded")
	}
}

func TestValue(t *testing.T) {
	r := MustLoad()
	tests := []struct {
		name     string
		typeID   string
		mutators []string
		want     int
	}{
		{"plain metal", "metal", nil, 2},
		{"gilded metal", "metal", []string{"gilded"}, 6},
		{"corroded metal", "metal", []string{"corroded"}, 1},
		{"two multipliers", "chip", []string{"magnetized", "fragile"}, 30},
		{"multiplier order is irrelevant", "chip", []string{"fragile", "magnetized"}, 30},
		{"half rounds up", "bolt", []string{"corroded"}, 1},
		{"rounds down", "bolt", []string{"corroded", "corroded"}, 0},
		{"unknown type is worthless", "slag", nil, 0},
		{"unknown mutator is identity", "metal", []string{"shiny"}, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Value(tc.typeID, tc.mutators); got != tc.want {
				t.Errorf("Value(%q, %v) = %d, want %d", tc.typeID, tc.mutators, got, tc.want)
			}
		})
	}
}

func TestValueDeterministic(t *testing.T) {
	r := MustLoad()
	first := r.Value("core", []string{"radioactive", "polished"})
	for i := 0; i < 10; i++ {
		if got := r.Value("core", []string{"radioactive", "polished"}); got != first {
			t.Fatalf("Value changed between calls: %d then %d", first, got)
		}
	}
}

func TestMass(t *testing.T) {
	r := MustLoad()
	tests := []struct {
		name     string
		typeID   string
		mutators []string
		want     float64
	}{
		{"base mass", "metal", nil, 1.0},
		{"additive modifier", "metal", []string{"dense"}, 3.0},
		{"negative modifier", "metal", []string{"hollow"}, 0.5},
		{"floored at minimum", "chip", []string{"hollow"}, MinMass},
		{"floor holds under stacking", "wire", []string{"hollow", "fragile"}, MinMass},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Mass(tc.typeID, tc.mutators); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Mass(%q, %v) = %g, want %g", tc.typeID, tc.mutators, got, tc.want)
			}
		})
	}
}

func TestAppearance(t *testing.T) {
	r := MustLoad()
	if got := r.Appearance("metal", nil); got != "▪" {
		t.Errorf("Appearance(metal) = %q, want %q", got, "▪")
	}
	if got := r.Appearance("metal", []string{"gilded", "corroded"}); got != "▪✦▒" {
		t.Errorf("Appearance(metal, gilded+corroded) = %q, want %q", got, "▪✦▒")
	}
}

func TestMutatorDefaults(t *testing.T) {
	r := MustLoad()
	// Empty multiplier columns parse as zero and must become identity.
	for _, id := range r.MutatorIDs() {
		m := r.Mutator(id)
		if m.CreditMultiplier == 0 || m.DragSpeedMult == 0 || m.GravityMult == 0 || m.MomentumMult == 0 {
			t.Errorf("mutator %q has a zero multiplier after load", id)
		}
	}
}

func TestDragSpeedMult(t *testing.T) {
	r := MustLoad()
	got := r.DragSpeedMult([]string{"dense", "hollow"})
	want := 0.6 * 1.2
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("DragSpeedMult = %g, want %g", got, want)
	}
}

func TestAirborneMults(t *testing.T) {
	r := MustLoad()
	g, m := r.AirborneMults([]string{"dense", "hollow"})
	if math.Abs(g-1.3*0.7) > 1e-9 {
		t.Errorf("gravity mult = %g, want %g", g, 1.3*0.7)
	}
	if math.Abs(m-1.15*0.85) > 1e-9 {
		t.Errorf("momentum mult = %g, want %g", m, 1.15*0.85)
	}
}

func TestUnknownIDFallbacks(t *testing.T) {
	r := MustLoad()
	tp := r.ScrapType("no_such_type")
	if tp.BaseMass != 1.0 || tp.BaseValue != 0 {
		t.Errorf("fallback type = %+v", tp)
	}
	m := r.Mutator("no_such_mutator")
	if m.CreditMultiplier != 1.0 || m.GravityMult != 1.0 {
		t.Errorf("fallback mutator = %+v", m)
	}
}

func TestSplitIDs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a;b", []string{"a", "b"}},
		{" a ; b ;", []string{"a", "b"}},
	}
	for _, tc := range tests {
		got := splitIDs(tc.in)
		if len(got) != len(tc.want) {
			t.Errorf("splitIDs(%q) = %v, want %v", tc.in, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("splitIDs(%q) = %v, want %v", tc.in, got, tc.want)
				break
			}
		}
	}
}
