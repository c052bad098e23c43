package services

import "testing"

func TestNormalizeTeamName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dinamo zagreb", "Dinamo Zagreb"},
		{"  dinamo   ZAGREB ", "Dinamo Zagreb"},
		{"Münster", "Munster"},
		{"São Paulo\tVôlei", "Sao Paulo Volei"},
		{"ŁKS Łódź", "Lks Lodz"},
	}
	for _, tt := range tests {
		if got := NormalizeTeamName(tt.in); got != tt.want {
			t.Errorf("NormalizeTeamName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
