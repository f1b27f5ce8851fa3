package game

import (
	"math"
	"math/rand"
)

// FormationType identifies the shape of a squad formation.
type FormationType int

const (
	FormationLine      FormationType = iota // single row, centred on x
	FormationBox                            // near-square grid
	FormationColumn                         // single file, centred on y
	FormationWedge                          // triangle, point toward -y
	FormationCircle                         // ring around the centre
	FormationScattered                      // random jitter, no shape
	FormationFlank                          // two wings and a centre file
	FormationPhalanx                        // four files deep
	FormationSkirmish                       // loose box, 2-cell spacing
	formationTypeCount                      // sentinel
)

// AllFormations lists every formation in declaration order.
func AllFormations() []FormationType {
	out := make([]FormationType, 0, formationTypeCount)
	for ft := FormationType(0); ft < formationTypeCount; ft++ {
		out = append(out, ft)
	}
	return out
}

func (ft FormationType) String() string {
	switch ft {
	case FormationLine:
		return "line"
	case FormationBox:
		return "box"
	case FormationColumn:
		return "column"
	case FormationWedge:
		return "wedge"
	case FormationCircle:
		return "circle"
	case FormationScattered:
		return "scattered"
	case FormationFlank:
		return "flank"
	case FormationPhalanx:
		return "phalanx"
	case FormationSkirmish:
		return "skirmish"
	default:
		return "unknown"
	}
}

// ParseFormation maps a formation name back to its type.
func ParseFormation(name string) (FormationType, bool) {
	for _, ft := range AllFormations() {
		if ft.String() == name {
			return ft, true
		}
	}
	return FormationLine, false
}

const (
	phalanxFiles    = 4   // phalanx frontage
	flankWingOffset = 2   // x distance of each wing from the centre file
	skirmishSpacing = 2   // cells between skirmishers
	scatterRange    = 3   // max jitter per axis for scattered
	minCircleRadius = 2.0 // ring never collapses below this radius
)

// ComputePositions returns count target cells for the formation centred on
// center. All positions share center.Z. rng is only consulted by
// FormationScattered; nil falls back to the global source.
func ComputePositions(ft FormationType, count int, center Position, rng *rand.Rand) []Position {
	if count <= 0 {
		return []Position{}
	}
	switch ft {
	case FormationLine:
		return lineFormation(count, center)
	case FormationBox:
		return gridFormation(count, center, 1)
	case FormationColumn:
		return columnFormation(count, center)
	case FormationWedge:
		return wedgeFormation(count, center)
	case FormationCircle:
		return circleFormation(count, center)
	case FormationScattered:
		return scatteredFormation(count, center, rng)
	case FormationFlank:
		return flankFormation(count, center)
	case FormationPhalanx:
		return phalanxFormation(count, center)
	case FormationSkirmish:
		return gridFormation(count, center, skirmishSpacing)
	default:
		return lineFormation(count, center)
	}
}

func lineFormation(n int, c Position) []Position {
	out := make([]Position, n)
	startX := c.X - n/2
	for i := range out {
		out[i] = Position{X: startX + i, Y: c.Y, Z: c.Z}
	}
	return out
}

func columnFormation(n int, c Position) []Position {
	out := make([]Position, n)
	startY := c.Y - n/2
	for i := range out {
		out[i] = Position{X: c.X, Y: startY + i, Z: c.Z}
	}
	return out
}

// gridSide is ceil(sqrt(n)), the side of the smallest square holding n slots.
func gridSide(n int) int {
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// gridFormation covers both Box (spacing 1) and Skirmish (spacing 2).
func gridFormation(n int, c Position, spacing int) []Position {
	out := make([]Position, n)
	side := gridSide(n)
	half := (side * spacing) / 2
	for i := range out {
		row := i / side
		col := i % side
		out[i] = Position{
			X: c.X - half + col*spacing,
			Y: c.Y - half + row*spacing,
			Z: c.Z,
		}
	}
	return out
}

func wedgeFormation(n int, c Position) []Position {
	out := make([]Position, 0, n)
	for row := 0; len(out) < n; row++ {
		startX := c.X - row/2
		for col := 0; col <= row && len(out) < n; col++ {
			out = append(out, Position{X: startX + col, Y: c.Y - row, Z: c.Z})
		}
	}
	return out
}

func circleRadius(n int) float64 {
	return math.Max(float64(n)/(2*math.Pi), minCircleRadius)
}

func circleFormation(n int, c Position) []Position {
	out := make([]Position, n)
	radius := circleRadius(n)
	for i := range out {
		angle := 2 * math.Pi * float64(i) / float64(n)
		out[i] = Position{
			X: c.X + int(math.Round(radius*math.Cos(angle))),
			Y: c.Y + int(math.Round(radius*math.Sin(angle))),
			Z: c.Z,
		}
	}
	return out
}

func phalanxFormation(n int, c Position) []Position {
	out := make([]Position, n)
	ranks := (n + phalanxFiles - 1) / phalanxFiles
	for i := range out {
		rank := i / phalanxFiles
		file := i % phalanxFiles
		out[i] = Position{
			X: c.X - phalanxFiles/2 + file,
			Y: c.Y + rank - ranks/2,
			Z: c.Z,
		}
	}
	return out
}

// flankFormation emits the left wing, then the centre, then the right wing.
// The centre absorbs the remainder of n/3.
func flankFormation(n int, c Position) []Position {
	out := make([]Position, 0, n)
	wing := n / 3
	for i := 0; i < wing; i++ {
		out = append(out, Position{X: c.X - flankWingOffset, Y: c.Y + i, Z: c.Z})
	}
	for i := 0; i < n-2*wing; i++ {
		out = append(out, Position{X: c.X, Y: c.Y + i, Z: c.Z})
	}
	for i := 0; i < wing; i++ {
		out = append(out, Position{X: c.X + flankWingOffset, Y: c.Y + i, Z: c.Z})
	}
	return out
}

func scatteredFormation(n int, c Position, rng *rand.Rand) []Position {
	intn := rand.Intn // #nosec G404 -- formation jitter, not security sensitive
	if rng != nil {
		intn = rng.Intn
	}
	out := make([]Position, n)
	for i := range out {
		out[i] = Position{
			X: c.X + intn(2*scatterRange+1) - scatterRange,
			Y: c.Y + intn(2*scatterRange+1) - scatterRange,
			Z: c.Z,
		}
	}
	return out
}

// --- Formation combat modifiers ---

// FormationAttackMul is the attack multiplier a formation grants its members.
func FormationAttackMul(ft FormationType) float64 {
	switch ft {
	case FormationWedge:
		return 1.2
	case FormationPhalanx:
		return 0.9
	case FormationFlank:
		return 1.15
	default:
		return 1.0
	}
}

// FormationDefenseMul is the defense multiplier a formation grants its members.
func FormationDefenseMul(ft FormationType) float64 {
	switch ft {
	case FormationPhalanx:
		return 1.3
	case FormationCircle:
		return 1.2
	case FormationBox:
		return 1.1
	case FormationScattered:
		return 0.9
	default:
		return 1.0
	}
}

// FormationSpeedMul is the movement speed multiplier for a formation.
func FormationSpeedMul(ft FormationType) float64 {
	switch ft {
	case FormationColumn:
		return 1.2
	case FormationScattered:
		return 1.15
	case FormationPhalanx:
		return 0.8
	case FormationBox:
		return 0.9
	default:
		return 1.0
	}
}
