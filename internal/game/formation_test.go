package game

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePositions_LineOfSixAroundTenTen(t *testing.T) {
	got := ComputePositions(FormationLine, 6, Position{X: 10, Y: 10}, nil)

	want := []Position{
		{X: 7, Y: 10}, {X: 8, Y: 10}, {X: 9, Y: 10},
		{X: 10, Y: 10}, {X: 11, Y: 10}, {X: 12, Y: 10},
	}
	assert.Equal(t, want, got)
}

func TestComputePositions_CountAndLayer(t *testing.T) {
	center := Position{X: 20, Y: 20, Z: 3}
	for _, ft := range AllFormations() {
		for _, n := range []int{0, 1, 2, 5, 9, 13} {
			got := ComputePositions(ft, n, center, rand.New(rand.NewSource(1)))
			require.Lenf(t, got, n, "%s n=%d", ft, n)
			for _, p := range got {
				assert.Equalf(t, 3, p.Z, "%s n=%d", ft, n)
			}
		}
	}
}

func TestComputePositions_ZeroUnitsIsEmptyNotNil(t *testing.T) {
	got := ComputePositions(FormationScattered, 0, Pos(0, 0), nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestComputePositions_LineAndColumnAxes(t *testing.T) {
	center := Pos(4, -2)
	for _, p := range ComputePositions(FormationLine, 7, center, nil) {
		assert.Equal(t, center.Y, p.Y)
	}
	col := ComputePositions(FormationColumn, 7, center, nil)
	for _, p := range col {
		assert.Equal(t, center.X, p.X)
	}
	assert.Equal(t, center.Y-3, col[0].Y)
	assert.Equal(t, center.Y+3, col[6].Y)
}

func TestComputePositions_BoxEmitsFirstSlotsOfSquare(t *testing.T) {
	c := Pos(10, 10)
	got := ComputePositions(FormationBox, 5, c, nil)

	// side = 3, half = 1
	want := []Position{
		{X: 9, Y: 9}, {X: 10, Y: 9}, {X: 11, Y: 9},
		{X: 9, Y: 10}, {X: 10, Y: 10},
	}
	assert.Equal(t, want, got)
}

func TestComputePositions_SkirmishDoublesSpacing(t *testing.T) {
	c := Pos(10, 10)
	got := ComputePositions(FormationSkirmish, 4, c, nil)

	// side = 2, half = 2
	want := []Position{
		{X: 8, Y: 8}, {X: 10, Y: 8},
		{X: 8, Y: 10}, {X: 10, Y: 10},
	}
	assert.Equal(t, want, got)
}

func TestComputePositions_Wedge(t *testing.T) {
	c := Pos(10, 10)
	got := ComputePositions(FormationWedge, 6, c, nil)

	want := []Position{
		{X: 10, Y: 10},
		{X: 10, Y: 9}, {X: 11, Y: 9},
		{X: 9, Y: 8}, {X: 10, Y: 8}, {X: 11, Y: 8},
	}
	assert.Equal(t, want, got)
}

func TestComputePositions_WedgePartialLastRow(t *testing.T) {
	got := ComputePositions(FormationWedge, 4, Pos(0, 0), nil)
	require.Len(t, got, 4)
	assert.Equal(t, Position{X: -1, Y: -2}, got[3])
}

func TestComputePositions_CircleOnRadius(t *testing.T) {
	c := Pos(50, 50)
	for _, n := range []int{3, 8, 12, 20, 40} {
		radius := math.Max(float64(n)/(2*math.Pi), 2.0)
		for i, p := range ComputePositions(FormationCircle, n, c, nil) {
			d := c.Distance(p)
			// rounding each axis moves a point at most sqrt(0.5) cells
			assert.InDeltaf(t, radius, d, math.Sqrt2/2+1e-9, "n=%d i=%d", n, i)
		}
	}
}

func TestComputePositions_CircleFirstSlotOnPositiveX(t *testing.T) {
	got := ComputePositions(FormationCircle, 4, Pos(0, 0), nil)
	assert.Equal(t, Position{X: 2, Y: 0}, got[0])
	assert.Equal(t, Position{X: 0, Y: 2}, got[1])
}

func TestComputePositions_PhalanxFourFiles(t *testing.T) {
	c := Pos(10, 10)
	got := ComputePositions(FormationPhalanx, 8, c, nil)

	// two ranks, centred: rank 0 at y-1, rank 1 at y
	for i, p := range got {
		assert.Equal(t, c.X-2+i%4, p.X, "file of %d", i)
		assert.Equal(t, c.Y+i/4-1, p.Y, "rank of %d", i)
	}
}

func TestComputePositions_FlankWingsThenCentre(t *testing.T) {
	c := Pos(10, 10)
	got := ComputePositions(FormationFlank, 7, c, nil)

	want := []Position{
		{X: 8, Y: 10}, {X: 8, Y: 11}, // left
		{X: 10, Y: 10}, {X: 10, Y: 11}, {X: 10, Y: 12}, // centre
		{X: 12, Y: 10}, {X: 12, Y: 11}, // right
	}
	assert.Equal(t, want, got)
}

func TestComputePositions_FlankSmallCountAllCentre(t *testing.T) {
	got := ComputePositions(FormationFlank, 2, Pos(0, 0), nil)
	assert.Equal(t, []Position{{X: 0, Y: 0}, {X: 0, Y: 1}}, got)
}

func TestComputePositions_ScatteredBoundedAndSeeded(t *testing.T) {
	c := Pos(0, 0)
	a := ComputePositions(FormationScattered, 30, c, rand.New(rand.NewSource(9)))
	b := ComputePositions(FormationScattered, 30, c, rand.New(rand.NewSource(9)))
	assert.Equal(t, a, b)
	for _, p := range a {
		assert.GreaterOrEqual(t, p.X, -3)
		assert.LessOrEqual(t, p.X, 3)
		assert.GreaterOrEqual(t, p.Y, -3)
		assert.LessOrEqual(t, p.Y, 3)
	}
}

func TestComputePositions_UnknownTypeFallsBackToLine(t *testing.T) {
	got := ComputePositions(FormationType(99), 3, Pos(5, 5), nil)
	assert.Equal(t, ComputePositions(FormationLine, 3, Pos(5, 5), nil), got)
}

func TestFormationModifiers_DefinedForEveryType(t *testing.T) {
	for _, ft := range AllFormations() {
		assert.Positive(t, FormationAttackMul(ft), ft.String())
		assert.Positive(t, FormationDefenseMul(ft), ft.String())
		assert.Positive(t, FormationSpeedMul(ft), ft.String())
	}
	assert.Equal(t, 1.2, FormationAttackMul(FormationWedge))
	assert.Equal(t, 1.3, FormationDefenseMul(FormationPhalanx))
	assert.Equal(t, 1.2, FormationSpeedMul(FormationColumn))
	assert.Equal(t, 1.0, FormationAttackMul(FormationLine))
}

func TestParseFormation(t *testing.T) {
	for _, ft := range AllFormations() {
		got, ok := ParseFormation(ft.String())
		require.True(t, ok, ft.String())
		assert.Equal(t, ft, got)
	}
	_, ok := ParseFormation("testudo")
	assert.False(t, ok)
}
