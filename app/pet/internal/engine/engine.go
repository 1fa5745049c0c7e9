package engine

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petlink/app/pet/internal/gameconfig"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/lk2023060901/petlink/pkg/config"
)

// ErrInvalidConfig 引擎配置无效
var ErrInvalidConfig = errors.New("engine: invalid config")

// Config 引擎配置
type Config struct {
	// DecayUnit 属性衰减的时间单位
	DecayUnit time.Duration `mapstructure:"decay_unit"`
	// MaxRetries 冲突重试次数
	MaxRetries int `mapstructure:"max_retries"`
	// MissionsPerDay 每日任务数量
	MissionsPerDay int `mapstructure:"missions_per_day"`
	// Timezone 计算“今天”的时区
	Timezone string `mapstructure:"timezone"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		DecayUnit:      time.Hour,
		MaxRetries:     3,
		MissionsPerDay: 3,
		Timezone:       "UTC",
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.DecayUnit <= 0 || c.MaxRetries < 0 || c.MissionsPerDay < 1 {
		return ErrInvalidConfig
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "timezone %q: %v", c.Timezone, err)
	}
	return nil
}

// TableSource 配置表来源
type TableSource interface {
	Tables() *gameconfig.Tables
}

// Engine 宠物规则引擎，只做内存计算，不做任何 I/O
type Engine struct {
	config *Config
	loc    *time.Location
	tables TableSource
}

// New 创建引擎
func New(cfg *Config, tables TableSource) (*Engine, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	loc, _ := time.LoadLocation(merged.Timezone)
	return &Engine{config: merged, loc: loc, tables: tables}, nil
}

// Config 获取配置
func (e *Engine) Config() *Config {
	return e.config
}

// Tables 当前配置表
func (e *Engine) Tables() *gameconfig.Tables {
	return e.tables.Tables()
}

// Day 返回 now 在配置时区下的日历日，以 UTC 零点表示
func (e *Engine) Day(now time.Time) time.Time {
	y, m, d := now.In(e.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Aggregate 单个用户的聚合快照
type Aggregate struct {
	Pet       *model.Pet
	Inventory map[string]*model.InventoryItem
	Catalog   map[string]*model.ShopItem
	// Missions 仅包含 Today 的任务
	Missions []*model.Mission
	// Carried 往日任务，只用于领取奖励，不再推进进度
	Carried []*model.Mission
	Streak   *model.Streak
	Today    time.Time
}

// NewAggregate 创建空聚合
func NewAggregate(pet *model.Pet, today time.Time) *Aggregate {
	return &Aggregate{
		Pet:       pet,
		Inventory: make(map[string]*model.InventoryItem),
		Catalog:   make(map[string]*model.ShopItem),
		Streak:    &model.Streak{UserID: pet.UserID},
		Today:     today,
	}
}

// Holding 持有数量
func (a *Aggregate) Holding(itemID string) int {
	if item, ok := a.Inventory[itemID]; ok {
		return item.Quantity
	}
	return 0
}

// Mission 按 id 查找任务，先查今日再查往日
func (a *Aggregate) Mission(id string) *model.Mission {
	for _, m := range a.Missions {
		if m.ID == id {
			return m
		}
	}
	for _, m := range a.Carried {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// InventoryDelta 道具数量变化
type InventoryDelta struct {
	ItemID string
	Delta  int
}

// MissionProgress 任务进度增量
type MissionProgress struct {
	Action    model.ActionType
	Increment int
}

// EquipChange 装备状态变化
type EquipChange struct {
	ItemID   string
	Equipped bool
}

// Outcome 一次操作产生的变更集，由服务层在同一事务内提交
type Outcome struct {
	Transactions    []*model.Transaction
	Activities      []*model.ActivityEntry
	InventoryDeltas []InventoryDelta
	MissionProgress []MissionProgress
	Equip           *EquipChange
	// ClaimedMission 需在存储层翻转领取标记的任务
	ClaimedMission string
	// StreakClaim 需在存储层写入签到记录
	StreakClaim bool

	CompletedMissions []*model.Mission
	LevelUps          []LevelUp
	Events            []model.Event
}

func (o *Outcome) emit(userID string, t model.EventType, at time.Time, payload any) {
	o.Events = append(o.Events, model.Event{Type: t, UserID: userID, At: at, Payload: payload})
}

// statChanged 记录一次属性变化事件
func (o *Outcome) statChanged(pet *model.Pet, before model.Stats, now time.Time) {
	o.emit(pet.UserID, model.EventStatChanged, now, model.StatChangedPayload{
		Before: before,
		After:  pet.Stats,
		Mood:   pet.Mood,
		Coins:  pet.CoinBalance,
	})
}
