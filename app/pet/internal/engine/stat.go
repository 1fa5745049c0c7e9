package engine

import (
	"time"

	"github.com/lk2023060901/petlink/app/pet/internal/model"
)

const (
	statMin = 0
	statMax = 100
)

// 每个时间单位的衰减量
const (
	hungerDecay      = 0.8
	cleanlinessDecay = 0.3
	energyDecay      = 0.4
	happinessDecay   = 0.5
)

// 心情阈值
const (
	sickBelow   = 30
	tiredBelow  = 20
	hungryBelow = 30
	dirtyBelow  = 30
	sadBelow    = 30
)

func clamp(v float64) float64 {
	if v < statMin {
		return statMin
	}
	if v > statMax {
		return statMax
	}
	return v
}

// Decay 按经过的时间单位衰减属性，下限为 0
func Decay(s *model.Stats, elapsedUnits float64) {
	if elapsedUnits <= 0 {
		return
	}
	s.Hunger = clamp(s.Hunger - hungerDecay*elapsedUnits)
	s.Cleanliness = clamp(s.Cleanliness - cleanlinessDecay*elapsedUnits)
	s.Energy = clamp(s.Energy - energyDecay*elapsedUnits)
	s.Happiness = clamp(s.Happiness - happinessDecay*elapsedUnits)
}

// ApplyDelta 叠加增量并截断到 [0, 100]
func ApplyDelta(s *model.Stats, d model.StatDelta) {
	s.Hunger = clamp(s.Hunger + d.Hunger)
	s.Happiness = clamp(s.Happiness + d.Happiness)
	s.Energy = clamp(s.Energy + d.Energy)
	s.Cleanliness = clamp(s.Cleanliness + d.Cleanliness)
	s.Health = clamp(s.Health + d.Health)
}

// DeriveMood 按优先级推导心情
func DeriveMood(s model.Stats) model.Mood {
	switch {
	case s.Health < sickBelow:
		return model.MoodSick
	case s.Energy < tiredBelow:
		return model.MoodTired
	case s.Hunger < hungryBelow:
		return model.MoodHungry
	case s.Cleanliness < dirtyBelow:
		return model.MoodDirty
	case s.Happiness < sadBelow:
		return model.MoodSad
	default:
		return model.MoodHappy
	}
}

// CatchUp 把属性衰减补算到 now，时钟回拨时不衰减也不回退锚点
func (e *Engine) CatchUp(pet *model.Pet, now time.Time) {
	if now.After(pet.StatsUpdatedAt) {
		elapsed := now.Sub(pet.StatsUpdatedAt)
		Decay(&pet.Stats, float64(elapsed)/float64(e.config.DecayUnit))
		pet.StatsUpdatedAt = now
	}
	pet.Mood = DeriveMood(pet.Stats)
}

// applyStats 叠加增量并刷新心情
func applyStats(pet *model.Pet, d model.StatDelta) {
	ApplyDelta(&pet.Stats, d)
	pet.Mood = DeriveMood(pet.Stats)
}
