package game

// ScoreResult names a hole score relative to par.
type ScoreResult string

const (
	ScoreAce         ScoreResult = "ACE"
	ScoreAlbatross   ScoreResult = "ALBATROSS"
	ScoreEagle       ScoreResult = "EAGLE"
	ScoreBirdie      ScoreResult = "BIRDIE"
	ScorePar         ScoreResult = "PAR"
	ScoreBogey       ScoreResult = "BOGEY"
	ScoreDoubleBogey ScoreResult = "DOUBLE_BOGEY"
	ScoreWorse       ScoreResult = "WORSE"
)

// ClassifyScore names strokes against par. A hole-in-one is always an ace.
func ClassifyScore(strokes, par int) ScoreResult {
	if strokes == 1 {
		return ScoreAce
	}
	switch diff := strokes - par; {
	case diff <= -3:
		return ScoreAlbatross
	case diff == -2:
		return ScoreEagle
	case diff == -1:
		return ScoreBirdie
	case diff == 0:
		return ScorePar
	case diff == 1:
		return ScoreBogey
	case diff == 2:
		return ScoreDoubleBogey
	}
	return ScoreWorse
}

// ScorePoints is the point award for a result.
func ScorePoints(r ScoreResult) int {
	switch r {
	case ScoreAce:
		return PointsAce
	case ScoreAlbatross, ScoreEagle:
		return PointsEagle
	case ScoreBirdie:
		return PointsBirdie
	case ScorePar:
		return PointsPar
	case ScoreBogey:
		return PointsBogey
	case ScoreDoubleBogey:
		return PointsDoubleBogey
	}
	return 0
}
