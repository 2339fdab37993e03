package game

import "testing"

func TestClassifyScore(t *testing.T) {
	tests := []struct {
		strokes, par int
		want         ScoreResult
		points       int
	}{
		{1, 3, ScoreAce, PointsAce},
		{1, 5, ScoreAce, PointsAce},
		{2, 5, ScoreAlbatross, PointsEagle},
		{2, 4, ScoreEagle, PointsEagle},
		{3, 4, ScoreBirdie, PointsBirdie},
		{4, 4, ScorePar, PointsPar},
		{5, 4, ScoreBogey, PointsBogey},
		{6, 4, ScoreDoubleBogey, PointsDoubleBogey},
		{9, 4, ScoreWorse, 0},
	}
	for _, tt := range tests {
		got := ClassifyScore(tt.strokes, tt.par)
		if got != tt.want {
			t.Errorf("ClassifyScore(%d, %d) = %s, want %s", tt.strokes, tt.par, got, tt.want)
		}
		if p := ScorePoints(got); p != tt.points {
			t.Errorf("ScorePoints(%s) = %d, want %d", got, p, tt.points)
		}
	}
}
