package model

import "time"

// EventType 领域事件类型
type EventType string

const (
	EventCareAction       EventType = "care_action"
	EventStatChanged      EventType = "stat_changed"
	EventLevelUp          EventType = "level_up"
	EventMissionCompleted EventType = "mission_completed"
	EventMissionClaimed   EventType = "mission_claimed"
	EventStreakClaimed    EventType = "streak_claimed"
	EventPurchase         EventType = "purchase"
)

// Event 领域事件，提交成功后发布
type Event struct {
	Type    EventType `json:"type"`
	UserID  string    `json:"user_id"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}

// CareActionPayload 照料动作
type CareActionPayload struct {
	Action ActionType `json:"action"`
	ItemID string     `json:"item_id,omitempty"`
}

// StatChangedPayload 属性变化
type StatChangedPayload struct {
	Before Stats `json:"before"`
	After  Stats `json:"after"`
	Mood   Mood  `json:"mood"`
	Coins  int64 `json:"coin_balance"`
}

// LevelUpPayload 升级
type LevelUpPayload struct {
	Level   int      `json:"level"`
	Evolved bool     `json:"evolved"`
	Stage   Stage    `json:"stage"`
	Unlocks []string `json:"unlocks,omitempty"`
}

// MissionClaimedPayload 任务奖励领取
type MissionClaimedPayload struct {
	MissionID string `json:"mission_id"`
	Coins     int64  `json:"coins"`
	XP        int64  `json:"xp"`
}

// StreakClaimedPayload 签到
type StreakClaimedPayload struct {
	Streak int          `json:"streak"`
	Reward StreakReward `json:"reward"`
}

// PurchasePayload 购买
type PurchasePayload struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	Cost     int64  `json:"cost"`
}
