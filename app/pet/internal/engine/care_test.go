package engine

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCareFeedWithCoins(t *testing.T) {
	e := newTestEngine(t)
	agg := newTestAggregate(e)
	agg.Pet.Stats.Hunger = 10
	agg.Pet.Stats.Happiness = 50
	agg.Pet.CoinBalance = 10

	out, err := e.Care(agg, model.ActionFeed, "", testNow)
	require.NoError(t, err)

	pet := agg.Pet
	assert.Equal(t, 35.0, pet.Stats.Hunger)
	assert.Equal(t, 55.0, pet.Stats.Happiness)
	assert.Equal(t, int64(5), pet.CoinBalance)
	assert.Equal(t, int64(10), pet.XP)

	require.Len(t, out.Transactions, 1)
	tx := out.Transactions[0]
	assert.Equal(t, model.TxSpend, tx.Kind)
	assert.Equal(t, int64(-5), tx.Amount)
	assert.Equal(t, "care:feed", tx.Reason)
	assert.Equal(t, int64(5), tx.BalanceAfter)

	require.Len(t, out.Activities, 1)
	assert.Equal(t, model.ActionFeed, out.Activities[0].Action)

	types := make([]model.EventType, 0, len(out.Events))
	for _, ev := range out.Events {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []model.EventType{model.EventCareAction, model.EventStatChanged}, types)
}

func TestCareWithItem(t *testing.T) {
	e := newTestEngine(t)
	agg := newTestAggregate(e)
	agg.Pet.CoinBalance = 0
	agg.Pet.Stats.Hunger = 10
	agg.Inventory["kibble"] = &model.InventoryItem{UserID: "user-1", ItemID: "kibble", Quantity: 1}

	out, err := e.Care(agg, model.ActionFeed, "kibble", testNow)
	require.NoError(t, err)

	assert.Equal(t, 30.0, agg.Pet.Stats.Hunger)
	assert.Equal(t, int64(0), agg.Pet.CoinBalance)
	assert.Empty(t, out.Transactions)
	assert.Equal(t, []InventoryDelta{{ItemID: "kibble", Delta: -1}}, out.InventoryDeltas)
	assert.Equal(t, 0, agg.Holding("kibble"))
	_, held := agg.Inventory["kibble"]
	assert.False(t, held)
}

func TestCareFreeActions(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		action model.ActionType
		check  func(t *testing.T, s model.Stats)
		xp     int64
	}{
		{model.ActionPlay, func(t *testing.T, s model.Stats) {
			assert.Equal(t, 100.0, s.Happiness)
			assert.Equal(t, 75.0, s.Energy)
		}, 15},
		{model.ActionRest, func(t *testing.T, s model.Stats) {
			assert.Equal(t, 100.0, s.Energy)
			assert.Equal(t, 90.0, s.Happiness)
		}, 5},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			agg := newTestAggregate(e)
			agg.Pet.CoinBalance = 0

			out, err := e.Care(agg, tt.action, "", testNow)
			require.NoError(t, err)
			assert.Empty(t, out.Transactions)
			assert.Equal(t, tt.xp, agg.Pet.XP)
			tt.check(t, agg.Pet.Stats)
		})
	}
}

func TestCareRejections(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		name    string
		action  model.ActionType
		itemID  string
		coins   int64
		holding map[string]int
		wantErr error
	}{
		{name: "unknown action", action: "dance", wantErr: model.ErrValidation},
		{name: "purchase is not care", action: model.ActionPurchase, wantErr: model.ErrValidation},
		{name: "unknown item", action: model.ActionFeed, itemID: "pizza", wantErr: model.ErrValidation},
		{name: "item for other action", action: model.ActionFeed, itemID: "bubble_soap",
			holding: map[string]int{"bubble_soap": 1}, wantErr: model.ErrValidation},
		{name: "item not held", action: model.ActionFeed, itemID: "kibble", wantErr: model.ErrItemNotAvailable},
		{name: "heal without item", action: model.ActionHeal, coins: 100, wantErr: model.ErrValidation},
		{name: "insufficient coins", action: model.ActionClean, coins: 2, wantErr: model.ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := newTestAggregate(e)
			agg.Pet.CoinBalance = tt.coins
			for id, qty := range tt.holding {
				agg.Inventory[id] = &model.InventoryItem{UserID: "user-1", ItemID: id, Quantity: qty}
			}
			before := agg.Pet.Clone()

			out, err := e.Care(agg, tt.action, tt.itemID, testNow)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, before, agg.Pet)
		})
	}
}

func TestCareHealWithItem(t *testing.T) {
	e := newTestEngine(t)
	agg := newTestAggregate(e)
	agg.Pet.Stats.Health = 20
	agg.Inventory["bandage"] = &model.InventoryItem{UserID: "user-1", ItemID: "bandage", Quantity: 2}

	_, err := e.Care(agg, model.ActionHeal, "bandage", testNow)
	require.NoError(t, err)
	assert.Equal(t, 40.0, agg.Pet.Stats.Health)
	assert.Equal(t, 1, agg.Holding("bandage"))
	assert.Equal(t, model.MoodHappy, agg.Pet.Mood)
}

func TestRename(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "Mochi", want: "Mochi"},
		{name: "trimmed", input: "  Mochi\t", want: "Mochi"},
		{name: "unicode", input: "小团子", want: "小团子"},
		{name: "empty", input: "   ", wantErr: true},
		{name: "too long", input: "abcdefghijklmnopqrstuvwxyz0123456", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := newTestAggregate(e)
			_, err := e.Rename(agg, tt.input, testNow)
			if tt.wantErr {
				assert.True(t, errors.Is(err, model.ErrValidation))
				assert.Equal(t, model.DefaultPetName, agg.Pet.Name)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, agg.Pet.Name)
		})
	}
}
