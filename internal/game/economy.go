package game

// moneyTiers map a minimum tower count to the money paid per kill, highest first.
var moneyTiers = []struct {
	towers int
	reward int
}{
	{70, 3},
	{50, 5},
	{30, 7},
	{20, 8},
}

// MoneyReward returns the money credited for a kill worth base when the player owns
// towers towers. Large tower counts earn less per kill.
func MoneyReward(base, towers int) int {
	for _, tier := range moneyTiers {
		if towers >= tier.towers {
			return tier.reward
		}
	}
	return base
}

// minScoreReward is the floor of the per-kill score.
const minScoreReward = 5

// ScoreReward returns the score credited for a kill worth base at the given
// cumulative score: one point less for every 500 points already earned.
func ScoreReward(base, score int) int {
	return max(minScoreReward, base-score/500)
}
