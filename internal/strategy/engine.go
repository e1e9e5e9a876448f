package strategy

import (
	"errors"

	"BRVMSentinel/internal/model"
)

// MaxScore bounds the absolute recommendation score.
const MaxScore = 10

// ErrDataUnavailable is returned when neither technical nor fundamental data can be scored.
var ErrDataUnavailable = errors.New("insufficient data")

// Levels defines the 5-level mapping, checked top-down.
var Levels = []struct {
	MinScore int
	Level    model.Level
	Label    string
}{
	{6, model.LevelStrongBuy, "Strong Buy"},
	{3, model.LevelBuy, "Buy"},
	{-2, model.LevelHold, "Hold"},
	{-5, model.LevelSell, "Sell"},
}

// DefaultLevel applies to scores below -5.
var DefaultLevel = struct {
	Level model.Level
	Label string
}{model.LevelStrongSell, "Strong Sell"}

// mapLevel maps a total score to its level and display label.
func mapLevel(score int) (model.Level, string) {
	for _, l := range Levels {
		if score >= l.MinScore {
			return l.Level, l.Label
		}
	}
	return DefaultLevel.Level, DefaultLevel.Label
}

// Score aggregates the technical and fundamental contributions into a recommendation.
// Either half may be nil. ErrDataUnavailable is returned when neither half holds a
// scorable input.
func Score(tech *model.TechnicalSnapshot, fund *model.FundamentalSnapshot) (model.Recommendation, error) {
	if !tech.Scorable() && fund.IsEmpty() {
		return model.Recommendation{}, ErrDataUnavailable
	}

	var contributions []contribution
	if tech.Scorable() {
		contributions = append(contributions, technicalFactors(tech)...)
	}
	if !fund.IsEmpty() {
		contributions = append(contributions, fundamentalFactors(fund)...)
	}

	total := 0
	reasons := make([]string, 0, len(contributions))
	for _, c := range contributions {
		total += c.Points
		reasons = append(reasons, c.Reason)
	}
	if total > MaxScore {
		total = MaxScore
	}
	if total < -MaxScore {
		total = -MaxScore
	}

	level, label := mapLevel(total)
	return model.Recommendation{
		Recommendation: label,
		Level:          level,
		Score:          total,
		MaxScore:       MaxScore,
		Reasons:        reasons,
	}, nil
}
