package engine

import (
	"math"
	"testing"

	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreshold(t *testing.T) {
	want := []int64{50, 100, 200, 350, 500, 700, 1000, 1500, 2100, 3000}
	for i, w := range want {
		assert.Equal(t, w, Threshold(i+1), "threshold(%d)", i+1)
	}
	assert.Equal(t, int64(2883), Threshold(11))
	assert.Equal(t, int64(4325), Threshold(12))
}

func TestThresholdSaturates(t *testing.T) {
	assert.Equal(t, int64(9034692834115893248), Threshold(99))
	assert.Equal(t, int64(math.MaxInt64), Threshold(100))
	assert.Equal(t, int64(math.MaxInt64), Threshold(1000))

	prev := Threshold(1)
	for n := 2; n <= 300; n++ {
		cur := Threshold(n)
		require.Positive(t, cur, "threshold(%d)", n)
		require.GreaterOrEqual(t, cur, prev, "threshold(%d)", n)
		prev = cur
	}

	e := newTestEngine(t)
	pet := e.NewPet("u", testNow)
	pet.Level = 120
	assert.Empty(t, e.AddXP(pet, 1_000_000))
	assert.Equal(t, 120, pet.Level)
	assert.Equal(t, int64(1_000_000), pet.XP)
}

func TestStageForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  model.Stage
	}{
		{1, model.StageBaby},
		{9, model.StageBaby},
		{10, model.StageTeen},
		{24, model.StageTeen},
		{25, model.StageAdult},
		{49, model.StageAdult},
		{50, model.StageElder},
		{80, model.StageElder},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StageForLevel(tt.level), "level %d", tt.level)
	}
}

func TestDailyCoinBonus(t *testing.T) {
	assert.Equal(t, 1, DailyCoinBonus(1))
	assert.Equal(t, 2, DailyCoinBonus(2))
	assert.Equal(t, 3, DailyCoinBonus(3))
	assert.Equal(t, 7, DailyCoinBonus(10))
}

func TestAddXPLevelNineToTen(t *testing.T) {
	e := newTestEngine(t)
	pet := e.NewPet("u", testNow)
	pet.Level = 9
	pet.XP = 2099
	refreshDerived(pet)
	require.Equal(t, model.StageBaby, pet.Stage)

	ups := e.AddXP(pet, 901)

	require.Len(t, ups, 1)
	assert.Equal(t, LevelUp{Level: 10, Evolved: true, Stage: model.StageTeen, Unlocks: []string{"Evolution: Teen"}}, ups[0])
	assert.Equal(t, 10, pet.Level)
	assert.Equal(t, int64(0), pet.XP)
	assert.Equal(t, model.StageTeen, pet.Stage)
	assert.Contains(t, pet.Unlocks, "Evolution: Teen")
	assert.Equal(t, Threshold(11), pet.XPToNext)
	assert.Equal(t, 7, pet.DailyCoinBonus)
}

func TestAddXPMultipleLevels(t *testing.T) {
	e := newTestEngine(t)
	pet := e.NewPet("u", testNow)
	require.Equal(t, int64(100), pet.XPToNext)

	ups := e.AddXP(pet, 100+200+350+10)

	require.Len(t, ups, 3)
	assert.Equal(t, 4, pet.Level)
	assert.Equal(t, int64(10), pet.XP)
	assert.Equal(t, int64(660), pet.TotalXP)
	assert.Equal(t, []string{"Accessory: Bow", "Toy: Ball"}, pet.Unlocks)
	for _, up := range ups {
		assert.False(t, up.Evolved)
	}
}

func TestAddXPIgnoresNonPositive(t *testing.T) {
	e := newTestEngine(t)
	pet := e.NewPet("u", testNow)
	assert.Nil(t, e.AddXP(pet, 0))
	assert.Nil(t, e.AddXP(pet, -50))
	assert.Equal(t, int64(0), pet.XP)
	assert.Equal(t, 1, pet.Level)
}

func TestAddXPMonotonicAndStageForwardOnly(t *testing.T) {
	e := newTestEngine(t)
	pet := e.NewPet("u", testNow)
	prevLevel, prevRank := pet.Level, pet.Stage.Rank()
	for i := 0; i < 200; i++ {
		e.AddXP(pet, int64(37*i+1))
		assert.GreaterOrEqual(t, pet.Level, prevLevel)
		assert.GreaterOrEqual(t, pet.Stage.Rank(), prevRank)
		assert.Less(t, pet.XP, Threshold(pet.Level+1))
		assert.Equal(t, Threshold(pet.Level+1), pet.XPToNext)
		prevLevel, prevRank = pet.Level, pet.Stage.Rank()
	}
}

func TestUnlocksDeduplicated(t *testing.T) {
	e := newTestEngine(t)
	pet := e.NewPet("u", testNow)
	pet.Unlocks = []string{"Accessory: Bow"}

	e.AddXP(pet, 100)
	assert.Equal(t, []string{"Accessory: Bow"}, pet.Unlocks)
}
