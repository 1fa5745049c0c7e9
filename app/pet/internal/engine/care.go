package engine

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
)

// careRule 照料动作的默认规则
type careRule struct {
	Cost     int64
	Effect   model.StatDelta
	XP       int64
	ItemOnly bool
}

var careRules = map[model.ActionType]careRule{
	model.ActionFeed:  {Cost: 5, Effect: model.StatDelta{Hunger: 25, Happiness: 5}, XP: 10},
	model.ActionClean: {Cost: 3, Effect: model.StatDelta{Cleanliness: 30, Happiness: 5}, XP: 8},
	model.ActionPlay:  {Effect: model.StatDelta{Happiness: 25, Energy: -10}, XP: 15},
	model.ActionRest:  {Effect: model.StatDelta{Energy: 50, Happiness: 10}, XP: 5},
	model.ActionHeal:  {XP: 5, ItemOnly: true},
}

// Care 执行照料动作
// 校验全部通过后才修改快照，失败时快照除衰减补算外保持不变
func (e *Engine) Care(agg *Aggregate, action model.ActionType, itemID string, now time.Time) (*Outcome, error) {
	rule, ok := careRules[action]
	if !ok {
		return nil, model.Validationf("unknown action %q", action)
	}

	effect := rule.Effect
	if itemID != "" {
		item, ok := agg.Catalog[itemID]
		if !ok {
			return nil, model.Validationf("unknown item %q", itemID)
		}
		if item.Action != action {
			return nil, model.Validationf("item %q cannot be used to %s", itemID, action)
		}
		if agg.Holding(itemID) < 1 {
			return nil, errors.Wrapf(model.ErrItemNotAvailable, "item %q not held", itemID)
		}
		effect = item.Effect
	} else if rule.ItemOnly {
		return nil, model.Validationf("action %q requires an item", action)
	}

	pet := agg.Pet
	e.CatchUp(pet, now)
	if itemID == "" && rule.Cost > pet.CoinBalance {
		return nil, errors.Wrapf(model.ErrInsufficientFunds, "%s costs %d coins, have %d", action, rule.Cost, pet.CoinBalance)
	}

	out := &Outcome{}
	before := pet.Stats
	if itemID != "" {
		out.InventoryDeltas = append(out.InventoryDeltas, InventoryDelta{ItemID: itemID, Delta: -1})
		adjustHolding(agg, itemID, -1, now)
	} else if rule.Cost > 0 {
		if err := spend(out, pet, rule.Cost, model.TxSpend, "care:"+string(action), now); err != nil {
			return nil, err
		}
	}

	applyStats(pet, effect)
	pet.UpdatedAt = now
	out.Activities = append(out.Activities, model.NewActivity(pet.UserID, action, itemID, now))
	out.emit(pet.UserID, model.EventCareAction, now, model.CareActionPayload{Action: action, ItemID: itemID})
	out.statChanged(pet, before, now)

	e.grantXP(out, pet, rule.XP, now)
	e.progressMissions(out, agg, action, 1, now)
	return out, nil
}

// Rename 修改宠物名字
func (e *Engine) Rename(agg *Aggregate, name string, now time.Time) (*Outcome, error) {
	name = normalizeName(name)
	if n := len([]rune(name)); n < 1 || n > MaxNameLength {
		return nil, model.Validationf("name must be 1-%d characters", MaxNameLength)
	}
	e.CatchUp(agg.Pet, now)
	agg.Pet.Name = name
	agg.Pet.UpdatedAt = now
	return &Outcome{}, nil
}
