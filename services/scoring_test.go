package services

import (
	"testing"

	"volley-predict-system/models"
)

func TestComputePoints(t *testing.T) {
	// Final result used throughout: 3-1 with these sets.
	actualSets := []models.SetScore{{Home: 25, Away: 20}, {Home: 23, Away: 25}, {Home: 25, Away: 23}, {Home: 26, Away: 24}}

	tests := []struct {
		name     string
		predHome int
		predAway int
		predSets []models.SetScore
		risky    bool
		want     int
	}{
		{
			name:     "exact summary",
			predHome: 3, predAway: 1,
			want: 3,
		},
		{
			name:     "exact summary with exact sets",
			predHome: 3, predAway: 1,
			predSets: []models.SetScore{{Home: 25, Away: 20}, {Home: 23, Away: 25}, {Home: 25, Away: 23}, {Home: 26, Away: 24}},
			want:     5,
		},
		{
			name:     "exact summary, sets differ in points",
			predHome: 3, predAway: 1,
			predSets: []models.SetScore{{Home: 25, Away: 20}, {Home: 23, Away: 25}, {Home: 25, Away: 23}, {Home: 25, Away: 23}},
			want:     3,
		},
		{
			name:     "risky exact summary",
			predHome: 3, predAway: 1,
			risky: true,
			want:  6,
		},
		{
			name:     "risky exact summary with exact sets",
			predHome: 3, predAway: 1,
			predSets: []models.SetScore{{Home: 25, Away: 20}, {Home: 23, Away: 25}, {Home: 25, Away: 23}, {Home: 26, Away: 24}},
			risky:    true,
			want:     10,
		},
		{
			name:     "correct winner only",
			predHome: 3, predAway: 0,
			want: 1,
		},
		{
			name:     "risky correct winner",
			predHome: 3, predAway: 2,
			risky: true,
			want:  2,
		},
		{
			name:     "wrong winner",
			predHome: 1, predAway: 3,
			want: 0,
		},
		{
			name:     "risky wrong winner",
			predHome: 0, predAway: 3,
			risky: true,
			want:  -2,
		},
		{
			name:     "exact sets without exact summary earns no bonus",
			predHome: 3, predAway: 0,
			predSets: []models.SetScore{{Home: 25, Away: 20}, {Home: 23, Away: 25}, {Home: 25, Away: 23}, {Home: 26, Away: 24}},
			want:     1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePoints(3, 1, actualSets, tt.predHome, tt.predAway, tt.predSets, tt.risky)
			if got != tt.want {
				t.Errorf("ComputePoints() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComputePointsNoBonusWithoutActualDetail(t *testing.T) {
	// Exact summary but the source never published per-set scores: no bonus
	// can be earned, even if the prediction carried sets.
	got := ComputePoints(3, 0, nil, 3, 0, []models.SetScore{{Home: 25, Away: 20}, {Home: 25, Away: 23}, {Home: 25, Away: 18}}, false)
	if got != 3 {
		t.Errorf("ComputePoints() = %d, want 3", got)
	}
}
