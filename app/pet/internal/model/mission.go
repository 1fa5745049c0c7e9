package model

import "time"

// MissionState 任务状态
type MissionState string

const (
	MissionAssigned   MissionState = "assigned"
	MissionInProgress MissionState = "in_progress"
	MissionCompleted  MissionState = "completed"
	MissionClaimed    MissionState = "claimed"
)

// Mission 每日任务，对应 missions 表
type Mission struct {
	ID            string     `json:"id" db:"id"`
	UserID        string     `json:"-" db:"user_id"`
	TemplateID    string     `json:"template_id" db:"template_id"`
	Type          ActionType `json:"type" db:"type"`
	Title         string     `json:"title" db:"title"`
	TargetCount   int        `json:"target_count" db:"target_count"`
	Progress      int        `json:"current_progress" db:"progress"`
	RewardCoins   int64      `json:"reward_coins" db:"reward_coins"`
	RewardXP      int64      `json:"reward_xp" db:"reward_xp"`
	Completed     bool       `json:"is_completed" db:"completed"`
	RewardClaimed bool       `json:"reward_claimed" db:"reward_claimed"`
	AssignedDate  time.Time  `json:"assigned_date" db:"assigned_date"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// State 当前所处状态
func (m *Mission) State() MissionState {
	switch {
	case m.RewardClaimed:
		return MissionClaimed
	case m.Completed:
		return MissionCompleted
	case m.Progress > 0:
		return MissionInProgress
	default:
		return MissionAssigned
	}
}

// Clone 拷贝
func (m *Mission) Clone() *Mission {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
