package model

import (
	"time"

	"github.com/google/uuid"
)

// Stage 进化阶段
type Stage string

const (
	StageBaby  Stage = "baby"
	StageTeen  Stage = "teen"
	StageAdult Stage = "adult"
	StageElder Stage = "elder"
)

// Rank 阶段序号，用于保证只能向前进化
func (s Stage) Rank() int {
	switch s {
	case StageTeen:
		return 1
	case StageAdult:
		return 2
	case StageElder:
		return 3
	default:
		return 0
	}
}

// Mood 心情标签，由属性推导
type Mood string

const (
	MoodHappy  Mood = "happy"
	MoodSad    Mood = "sad"
	MoodDirty  Mood = "dirty"
	MoodHungry Mood = "hungry"
	MoodTired  Mood = "tired"
	MoodSick   Mood = "sick"
)

// Stats 宠物属性，取值范围 [0, 100]
type Stats struct {
	Hunger      float64 `json:"hunger" db:"hunger"`
	Happiness   float64 `json:"happiness" db:"happiness"`
	Energy      float64 `json:"energy" db:"energy"`
	Cleanliness float64 `json:"cleanliness" db:"cleanliness"`
	Health      float64 `json:"health" db:"health"`
}

// StatDelta 属性增量，可为负
type StatDelta struct {
	Hunger      float64 `json:"hunger,omitempty" mapstructure:"hunger"`
	Happiness   float64 `json:"happiness,omitempty" mapstructure:"happiness"`
	Energy      float64 `json:"energy,omitempty" mapstructure:"energy"`
	Cleanliness float64 `json:"cleanliness,omitempty" mapstructure:"cleanliness"`
	Health      float64 `json:"health,omitempty" mapstructure:"health"`
}

// 新宠物默认值
const (
	DefaultPetName     = "Buddy"
	DefaultSpecies     = "blob"
	DefaultHunger      = 60
	DefaultHappiness   = 80
	DefaultEnergy      = 85
	DefaultCleanliness = 70
	DefaultHealth      = 100
)

// Pet 宠物聚合根，对应 pets 表
type Pet struct {
	ID      string `json:"id" db:"id"`
	UserID  string `json:"user_id" db:"user_id"`
	Name    string `json:"name" db:"name"`
	Species string `json:"species" db:"species"`
	Mood    Mood   `json:"mood" db:"mood"`

	// 等级成长
	Level          int      `json:"level" db:"level"`
	XP             int64    `json:"xp" db:"xp"`
	XPToNext       int64    `json:"xp_to_next" db:"xp_to_next"`
	TotalXP        int64    `json:"total_xp" db:"total_xp"`
	Stage          Stage    `json:"evolution_stage" db:"evolution_stage"`
	DailyCoinBonus int      `json:"daily_coin_bonus" db:"daily_coin_bonus"`
	Unlocks        []string `json:"unlocks" db:"unlocks"`

	Stats       Stats `json:"stats"`
	CoinBalance int64 `json:"coin_balance" db:"coin_balance"`

	// Version 乐观锁版本号，0 表示尚未持久化
	Version int64 `json:"version" db:"version"`

	StatsUpdatedAt time.Time `json:"stats_updated_at" db:"stats_updated_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// NewPet 创建默认宠物（未持久化），等级相关派生字段由引擎填充
func NewPet(userID string, now time.Time) *Pet {
	return &Pet{
		ID:      uuid.NewString(),
		UserID:  userID,
		Name:    DefaultPetName,
		Species: DefaultSpecies,
		Mood:    MoodHappy,
		Level:   1,
		Stage:   StageBaby,
		Unlocks: []string{},
		Stats: Stats{
			Hunger:      DefaultHunger,
			Happiness:   DefaultHappiness,
			Energy:      DefaultEnergy,
			Cleanliness: DefaultCleanliness,
			Health:      DefaultHealth,
		},
		StatsUpdatedAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Clone 深拷贝
func (p *Pet) Clone() *Pet {
	if p == nil {
		return nil
	}
	c := *p
	if p.Unlocks != nil {
		c.Unlocks = append(make([]string, 0, len(p.Unlocks)), p.Unlocks...)
	}
	return &c
}

// HasUnlock 是否已解锁
func (p *Pet) HasUnlock(name string) bool {
	for _, u := range p.Unlocks {
		if u == name {
			return true
		}
	}
	return false
}
