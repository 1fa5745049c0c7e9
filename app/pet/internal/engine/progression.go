package engine

import (
	"math"
	"time"

	"github.com/lk2023060901/petlink/app/pet/internal/model"
)

// thresholds[n-1] 为 threshold(n)
var thresholds = [...]int64{50, 100, 200, 350, 500, 700, 1000, 1500, 2100, 3000}

// maxLevelUpsPerGrant 单次加经验最多升级次数
const maxLevelUpsPerGrant = 1000

// Threshold 从 n-1 级升到 n 级所需经验
func Threshold(n int) int64 {
	if n < 1 {
		n = 1
	}
	if n <= len(thresholds) {
		return thresholds[n-1]
	}
	v := math.Round(50 * math.Pow(1.5, float64(n-1)))
	// 超出 int64 范围时封顶
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

// StageForLevel 等级对应的进化阶段
func StageForLevel(level int) model.Stage {
	switch {
	case level >= 50:
		return model.StageElder
	case level >= 25:
		return model.StageAdult
	case level >= 10:
		return model.StageTeen
	default:
		return model.StageBaby
	}
}

// DailyCoinBonus 1 + floor(level / 1.5)
func DailyCoinBonus(level int) int {
	return 1 + int(math.Floor(float64(level)/1.5))
}

// LevelUp 一次升级
type LevelUp struct {
	Level   int         `json:"level"`
	Evolved bool        `json:"evolved"`
	Stage   model.Stage `json:"stage"`
	Unlocks []string    `json:"unlocks,omitempty"`
}

// refreshDerived 刷新等级派生字段
func refreshDerived(pet *model.Pet) {
	pet.XPToNext = Threshold(pet.Level + 1)
	pet.DailyCoinBonus = DailyCoinBonus(pet.Level)
	if stage := StageForLevel(pet.Level); stage.Rank() > pet.Stage.Rank() {
		pet.Stage = stage
	}
	if pet.Unlocks == nil {
		pet.Unlocks = []string{}
	}
}

// AddXP 增加经验并处理连续升级，非正数忽略
func (e *Engine) AddXP(pet *model.Pet, amount int64) []LevelUp {
	if amount <= 0 {
		return nil
	}
	pet.XP += amount
	pet.TotalXP += amount

	var ups []LevelUp
	for i := 0; i < maxLevelUpsPerGrant && pet.XP >= Threshold(pet.Level+1); i++ {
		pet.XP -= Threshold(pet.Level + 1)
		pet.Level++

		prev := pet.Stage
		refreshDerived(pet)

		var gained []string
		for _, u := range e.Tables().UnlocksAt(pet.Level) {
			if !pet.HasUnlock(u) {
				pet.Unlocks = append(pet.Unlocks, u)
				gained = append(gained, u)
			}
		}
		ups = append(ups, LevelUp{
			Level:   pet.Level,
			Evolved: pet.Stage != prev,
			Stage:   pet.Stage,
			Unlocks: gained,
		})
	}
	refreshDerived(pet)
	return ups
}

// grantXP 加经验并记录升级事件
func (e *Engine) grantXP(out *Outcome, pet *model.Pet, amount int64, now time.Time) {
	for _, up := range e.AddXP(pet, amount) {
		out.LevelUps = append(out.LevelUps, up)
		out.emit(pet.UserID, model.EventLevelUp, now, model.LevelUpPayload{
			Level:   up.Level,
			Evolved: up.Evolved,
			Stage:   up.Stage,
			Unlocks: up.Unlocks,
		})
	}
}
