package engine

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
)

// StreakStatus 签到状态
type StreakStatus struct {
	CanClaim      bool               `json:"can_claim"`
	CurrentStreak int                `json:"current_streak"`
	LongestStreak int                `json:"longest_streak"`
	LastClaimDate *time.Time         `json:"last_claim_date,omitempty"`
	NextStreak    int                `json:"next_streak"`
	NextReward    model.StreakReward `json:"next_reward"`
}

// nextStreak 今天签到后的连续天数
func nextStreak(s *model.Streak, today time.Time) int {
	if !s.LastClaimDate.IsZero() && s.LastClaimDate.Equal(today.AddDate(0, 0, -1)) {
		return s.CurrentStreak + 1
	}
	return 1
}

// CheckStreak 查询签到状态，未领取前保留已存储的连续天数
func (e *Engine) CheckStreak(s *model.Streak, today time.Time) StreakStatus {
	st := StreakStatus{
		CurrentStreak: s.CurrentStreak,
		LongestStreak: s.LongestStreak,
	}
	if !s.LastClaimDate.IsZero() {
		d := s.LastClaimDate
		st.LastClaimDate = &d
	}
	if s.LastClaimDate.IsZero() {
		st.CanClaim = true
		st.CurrentStreak = 0
	} else {
		st.CanClaim = !s.LastClaimDate.Equal(today)
	}
	if st.CanClaim {
		st.NextStreak = nextStreak(s, today)
	} else {
		st.NextStreak = s.CurrentStreak + 1
	}
	st.NextReward = e.Tables().StreakReward(st.NextStreak)
	return st
}

// ClaimDaily 领取每日签到奖励
func (e *Engine) ClaimDaily(agg *Aggregate, now time.Time) (*Outcome, model.StreakReward, error) {
	s := agg.Streak
	today := agg.Today
	if !s.LastClaimDate.IsZero() && s.LastClaimDate.Equal(today) {
		return nil, model.StreakReward{}, errors.Wrapf(model.ErrAlreadyClaimedToday, "claimed on %s", today.Format(dateLayout))
	}

	s.CurrentStreak = nextStreak(s, today)
	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	s.LastClaimDate = today
	s.UpdatedAt = now
	reward := e.Tables().StreakReward(s.CurrentStreak)

	pet := agg.Pet
	e.CatchUp(pet, now)
	out := &Outcome{StreakClaim: true}
	if reward.Coins > 0 {
		earn(out, pet, reward.Coins, model.TxEarn, "daily_reward", now)
	}
	out.emit(pet.UserID, model.EventStreakClaimed, now, model.StreakClaimedPayload{
		Streak: s.CurrentStreak,
		Reward: reward,
	})
	e.grantXP(out, pet, reward.XP, now)
	e.progressMissions(out, agg, model.ActionDailyLogin, 1, now)
	pet.UpdatedAt = now
	return out, reward, nil
}
