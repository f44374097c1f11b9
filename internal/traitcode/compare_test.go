package traitcode

import "testing"

func TestEquals(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"IRC", "IRC", true},
		{"IRC", "ICR", false},
		{"", "", false},
		{"IRC", "", false},
		{"", "IRC", false},
	}
	for _, tt := range tests {
		if got := Equals(tt.a, tt.b); got != tt.want {
			t.Errorf("Equals(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestArePermutations(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"RIA", "AIR", true},
		{"RIA", "RIA", true},
		{"RIA", "RIAS", false},
		{"RIA", "RIS", false},
		{"AAR", "ARR", false},
		{"", "", false},
		{"R", "", false},
	}
	for _, tt := range tests {
		if got := ArePermutations(tt.a, tt.b); got != tt.want {
			t.Errorf("ArePermutations(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMatchShortCode(t *testing.T) {
	tests := []struct {
		short, long string
		want        bool
	}{
		{"R", "RIA", true},
		{"A", "RIA", false},
		{"IR", "RIA", true},
		{"RI", "RIA", true},
		{"RA", "RIA", false},
		{"RIA", "AIR", true},
		{"RIAS", "RIA", false},
		{"", "RIA", false},
		{"R", "", false},
	}
	for _, tt := range tests {
		if got := MatchShortCode(tt.short, tt.long); got != tt.want {
			t.Errorf("MatchShortCode(%q, %q) = %v, want %v", tt.short, tt.long, got, tt.want)
		}
	}
}
