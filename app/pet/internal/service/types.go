package service

import (
	"github.com/lk2023060901/petlink/app/pet/internal/engine"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
)

// Result 命令执行后的公共结果
type Result struct {
	Pet               *model.Pet       `json:"pet"`
	LevelUps          []engine.LevelUp `json:"level_ups,omitempty"`
	CompletedMissions []*model.Mission `json:"completed_missions,omitempty"`
	Events            []model.Event    `json:"events"`
}

// CareCommand 照料动作
type CareCommand struct {
	UserID string
	Action model.ActionType
	// ItemID 为空时按默认规则扣金币
	ItemID string
}

// CareResult 照料结果
type CareResult struct {
	Result
	Action model.ActionType `json:"action"`
}

// PurchaseCommand 购买
type PurchaseCommand struct {
	UserID   string
	ItemID   string
	Quantity int
}

// PurchaseResult 购买结果
type PurchaseResult struct {
	Result
	Item *model.InventoryItem `json:"item"`
	Cost int64                `json:"cost"`
}

// ClaimMissionCommand 领取任务奖励
type ClaimMissionCommand struct {
	UserID    string
	MissionID string
}

// ClaimMissionResult 任务领取结果
type ClaimMissionResult struct {
	Result
	Mission *model.Mission `json:"mission"`
}

// ClaimDailyResult 签到结果
type ClaimDailyResult struct {
	Result
	Streak *model.Streak      `json:"streak"`
	Reward model.StreakReward `json:"reward"`
}

// EquipCommand 装备切换
type EquipCommand struct {
	UserID   string
	ItemID   string
	Equipped bool
}

// RenameCommand 改名
type RenameCommand struct {
	UserID string
	Name   string
}

// LedgerCommand 直接入账或扣款
type LedgerCommand struct {
	UserID string
	Amount int64
	Reason string
}
