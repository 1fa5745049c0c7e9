package model

import "time"

// Streak 连续签到记录，对应 streaks 表
type Streak struct {
	UserID        string    `json:"-" db:"user_id"`
	CurrentStreak int       `json:"current_streak" db:"current_streak"`
	LongestStreak int       `json:"longest_streak" db:"longest_streak"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	// LastClaimDate 零值表示从未签到
	LastClaimDate time.Time `json:"last_claim_date" db:"last_claim_date"`
}

// StreakReward 签到奖励
type StreakReward struct {
	Day   int    `json:"day" mapstructure:"day"`
	Coins int64  `json:"coins" mapstructure:"coins"`
	XP    int64  `json:"xp" mapstructure:"xp"`
	Label string `json:"label,omitempty" mapstructure:"label"`
}

// Clone 拷贝
func (s *Streak) Clone() *Streak {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
