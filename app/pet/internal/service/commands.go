package service

import (
	"context"
	"time"

	"github.com/lk2023060901/petlink/app/pet/internal/engine"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
)

// Care 执行照料动作
func (s *PetService) Care(ctx context.Context, cmd CareCommand) (*CareResult, error) {
	agg, out, err := s.execute(ctx, "care", cmd.UserID, func(agg *engine.Aggregate, now time.Time) (*engine.Outcome, error) {
		return s.engine.Care(agg, cmd.Action, cmd.ItemID, now)
	})
	s.metrics.RecordAction(string(cmd.Action), outcomeLabel(err))
	if err != nil {
		return nil, err
	}
	return &CareResult{Result: newResult(agg, out), Action: cmd.Action}, nil
}

// Purchase 购买商店道具
func (s *PetService) Purchase(ctx context.Context, cmd PurchaseCommand) (*PurchaseResult, error) {
	if cmd.Quantity == 0 {
		cmd.Quantity = 1
	}
	var cost int64
	agg, out, err := s.execute(ctx, "purchase", cmd.UserID, func(agg *engine.Aggregate, now time.Time) (*engine.Outcome, error) {
		before := agg.Pet.CoinBalance
		out, err := s.engine.Purchase(agg, cmd.ItemID, cmd.Quantity, now)
		if err == nil {
			cost = before - agg.Pet.CoinBalance
		}
		return out, err
	})
	s.metrics.RecordPurchase(cmd.ItemID, outcomeLabel(err))
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{
		Result: newResult(agg, out),
		Item:   agg.Inventory[cmd.ItemID],
		Cost:   cost,
	}, nil
}

// ClaimMission 领取任务奖励
func (s *PetService) ClaimMission(ctx context.Context, cmd ClaimMissionCommand) (*ClaimMissionResult, error) {
	agg, out, err := s.execute(ctx, "claim_mission", cmd.UserID, func(agg *engine.Aggregate, now time.Time) (*engine.Outcome, error) {
		return s.engine.ClaimMission(agg, cmd.MissionID, now)
	}, withMission(cmd.MissionID))
	s.metrics.RecordClaim("mission", outcomeLabel(err))
	if err != nil {
		return nil, err
	}
	return &ClaimMissionResult{Result: newResult(agg, out), Mission: agg.Mission(cmd.MissionID)}, nil
}

// ClaimDaily 领取每日签到奖励
func (s *PetService) ClaimDaily(ctx context.Context, userID string) (*ClaimDailyResult, error) {
	var reward model.StreakReward
	agg, out, err := s.execute(ctx, "claim_daily", userID, func(agg *engine.Aggregate, now time.Time) (*engine.Outcome, error) {
		out, r, err := s.engine.ClaimDaily(agg, now)
		reward = r
		return out, err
	})
	s.metrics.RecordClaim("daily", outcomeLabel(err))
	if err != nil {
		return nil, err
	}
	return &ClaimDailyResult{Result: newResult(agg, out), Streak: agg.Streak, Reward: reward}, nil
}

// Equip 切换装备
func (s *PetService) Equip(ctx context.Context, cmd EquipCommand) (*Result, error) {
	agg, out, err := s.execute(ctx, "equip", cmd.UserID, func(agg *engine.Aggregate, _ time.Time) (*engine.Outcome, error) {
		return s.engine.Equip(agg, cmd.ItemID, cmd.Equipped)
	})
	if err != nil {
		return nil, err
	}
	r := newResult(agg, out)
	return &r, nil
}

// Rename 宠物改名
func (s *PetService) Rename(ctx context.Context, cmd RenameCommand) (*Result, error) {
	agg, out, err := s.execute(ctx, "rename", cmd.UserID, func(agg *engine.Aggregate, now time.Time) (*engine.Outcome, error) {
		return s.engine.Rename(agg, cmd.Name, now)
	})
	if err != nil {
		return nil, err
	}
	r := newResult(agg, out)
	return &r, nil
}

// Earn 入账金币
func (s *PetService) Earn(ctx context.Context, cmd LedgerCommand) (*Result, error) {
	agg, out, err := s.execute(ctx, "earn", cmd.UserID, func(agg *engine.Aggregate, now time.Time) (*engine.Outcome, error) {
		return s.engine.Earn(agg, cmd.Amount, cmd.Reason, now)
	})
	if err != nil {
		return nil, err
	}
	r := newResult(agg, out)
	return &r, nil
}

// Spend 扣除金币
func (s *PetService) Spend(ctx context.Context, cmd LedgerCommand) (*Result, error) {
	agg, out, err := s.execute(ctx, "spend", cmd.UserID, func(agg *engine.Aggregate, now time.Time) (*engine.Outcome, error) {
		return s.engine.Spend(agg, cmd.Amount, cmd.Reason, now)
	})
	if err != nil {
		return nil, err
	}
	r := newResult(agg, out)
	return &r, nil
}
