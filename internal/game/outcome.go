package game

type BattleOutcome int

const (
	OutcomeInconclusive BattleOutcome = iota
	OutcomeRedVictory
	OutcomeBlueVictory
	OutcomeDraw
)

func (o BattleOutcome) String() string {
	switch o {
	case OutcomeRedVictory:
		return "red_victory"
	case OutcomeBlueVictory:
		return "blue_victory"
	case OutcomeDraw:
		return "draw"
	case OutcomeInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

type BattleOutcomeReason struct {
	Outcome       BattleOutcome
	RedSurvivors  int
	RedTotal      int
	BlueSurvivors int
	BlueTotal     int
	// Squads with no members left, per side.
	RedSquadsLost  int
	BlueSquadsLost int
	Description    string
}

// DetermineBattleOutcome grades a finished skirmish from the survivors of
// each side. redTotal and blueTotal are the starting headcounts; squadTeam
// maps each squad to the side it fought for.
func DetermineBattleOutcome(w *World, redTotal, blueTotal int, squadTeam map[SquadID]Team) BattleOutcomeReason {
	r := BattleOutcomeReason{
		RedSurvivors:  w.CountAlive(TeamRed),
		RedTotal:      redTotal,
		BlueSurvivors: w.CountAlive(TeamBlue),
		BlueTotal:     blueTotal,
	}
	for id, team := range squadTeam {
		sq, ok := w.Squad(id)
		if ok && sq.Size() > 0 {
			continue
		}
		switch team {
		case TeamRed:
			r.RedSquadsLost++
		case TeamBlue:
			r.BlueSquadsLost++
		}
	}

	redCasualtyRate := 0.0
	blueCasualtyRate := 0.0
	if redTotal > 0 {
		redCasualtyRate = float64(redTotal-r.RedSurvivors) / float64(redTotal)
	}
	if blueTotal > 0 {
		blueCasualtyRate = float64(blueTotal-r.BlueSurvivors) / float64(blueTotal)
	}

	switch {
	case r.RedSurvivors == 0 && r.BlueSurvivors > 0:
		r.Outcome, r.Description = OutcomeBlueVictory, "decisive_blue_victory_red_eliminated"
	case r.BlueSurvivors == 0 && r.RedSurvivors > 0:
		r.Outcome, r.Description = OutcomeRedVictory, "decisive_red_victory_blue_eliminated"
	case r.RedSurvivors == 0 && r.BlueSurvivors == 0:
		r.Outcome, r.Description = OutcomeDraw, "mutual_annihilation"
	case blueCasualtyRate-redCasualtyRate > 0.30 && redCasualtyRate < 0.50:
		r.Outcome, r.Description = OutcomeRedVictory, "marginal_red_victory_casualty_advantage"
	case redCasualtyRate-blueCasualtyRate > 0.30 && blueCasualtyRate < 0.50:
		r.Outcome, r.Description = OutcomeBlueVictory, "marginal_blue_victory_casualty_advantage"
	case blueCasualtyRate-redCasualtyRate <= 0.20 && redCasualtyRate-blueCasualtyRate <= 0.20 &&
		(redCasualtyRate > 0.30 || blueCasualtyRate > 0.30):
		r.Outcome, r.Description = OutcomeDraw, "draw_similar_casualties"
	default:
		r.Outcome, r.Description = OutcomeInconclusive, "inconclusive_insufficient_resolution"
	}
	return r
}
