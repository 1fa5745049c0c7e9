package engine

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
)

// NewPet 创建带派生字段的默认宠物
func (e *Engine) NewPet(userID string, now time.Time) *model.Pet {
	pet := model.NewPet(userID, now)
	refreshDerived(pet)
	pet.Mood = DeriveMood(pet.Stats)
	return pet
}

// earn 入账并记录流水
func earn(out *Outcome, pet *model.Pet, amount int64, kind model.TransactionKind, reason string, now time.Time) {
	pet.CoinBalance += amount
	out.Transactions = append(out.Transactions,
		model.NewTransaction(pet.UserID, kind, amount, reason, pet.CoinBalance, now))
}

// spend 扣款并记录流水，余额不足时不做任何修改
func spend(out *Outcome, pet *model.Pet, amount int64, kind model.TransactionKind, reason string, now time.Time) error {
	if amount > pet.CoinBalance {
		return errors.Wrapf(model.ErrInsufficientFunds, "need %d coins, have %d", amount, pet.CoinBalance)
	}
	pet.CoinBalance -= amount
	out.Transactions = append(out.Transactions,
		model.NewTransaction(pet.UserID, kind, -amount, reason, pet.CoinBalance, now))
	return nil
}

// Earn 增加金币
func (e *Engine) Earn(agg *Aggregate, amount int64, reason string, now time.Time) (*Outcome, error) {
	if amount <= 0 {
		return nil, model.Validationf("earn amount must be positive, got %d", amount)
	}
	e.CatchUp(agg.Pet, now)
	out := &Outcome{}
	earn(out, agg.Pet, amount, model.TxEarn, reason, now)
	return out, nil
}

// Spend 扣除金币
func (e *Engine) Spend(agg *Aggregate, amount int64, reason string, now time.Time) (*Outcome, error) {
	if amount <= 0 {
		return nil, model.Validationf("spend amount must be positive, got %d", amount)
	}
	e.CatchUp(agg.Pet, now)
	out := &Outcome{}
	if err := spend(out, agg.Pet, amount, model.TxSpend, reason, now); err != nil {
		return nil, err
	}
	return out, nil
}

// Purchase 购买商店道具，扣款与入背包同时生效
func (e *Engine) Purchase(agg *Aggregate, itemID string, quantity int, now time.Time) (*Outcome, error) {
	if quantity < 1 {
		return nil, model.Validationf("quantity must be at least 1, got %d", quantity)
	}
	item, ok := agg.Catalog[itemID]
	if !ok || !item.Available {
		return nil, errors.Wrapf(model.ErrItemNotAvailable, "shop item %q", itemID)
	}

	pet := agg.Pet
	e.CatchUp(pet, now)
	cost := item.Price * int64(quantity)

	out := &Outcome{}
	if err := spend(out, pet, cost, model.TxPurchase, "purchase:"+itemID, now); err != nil {
		return nil, err
	}
	out.InventoryDeltas = append(out.InventoryDeltas, InventoryDelta{ItemID: itemID, Delta: quantity})
	adjustHolding(agg, itemID, quantity, now)

	out.emit(pet.UserID, model.EventPurchase, now, model.PurchasePayload{
		ItemID:   itemID,
		Quantity: quantity,
		Cost:     cost,
	})
	e.progressMissions(out, agg, model.ActionPurchase, 1, now)
	return out, nil
}

// Equip 切换装备状态
func (e *Engine) Equip(agg *Aggregate, itemID string, equipped bool) (*Outcome, error) {
	item, ok := agg.Inventory[itemID]
	if !ok || item.Quantity <= 0 {
		return nil, errors.Wrapf(model.ErrItemNotAvailable, "item %q not held", itemID)
	}
	item.Equipped = equipped
	return &Outcome{Equip: &EquipChange{ItemID: itemID, Equipped: equipped}}, nil
}

// adjustHolding 同步快照中的背包，数量归零时移除
func adjustHolding(agg *Aggregate, itemID string, delta int, now time.Time) {
	item, ok := agg.Inventory[itemID]
	if !ok {
		item = &model.InventoryItem{UserID: agg.Pet.UserID, ItemID: itemID}
		agg.Inventory[itemID] = item
	}
	item.Quantity += delta
	item.UpdatedAt = now
	if item.Quantity <= 0 {
		delete(agg.Inventory, itemID)
	}
}
