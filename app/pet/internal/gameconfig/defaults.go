package gameconfig

import "github.com/lk2023060901/petlink/app/pet/internal/model"

// Defaults 内置配置表
func Defaults() *Tables {
	t := &Tables{
		ShopItems: []*model.ShopItem{
			{ID: "kibble", Name: "Kibble", Category: "food", Price: 4, Rarity: model.RarityCommon, Action: model.ActionFeed, Available: true,
				Effect: model.StatDelta{Hunger: 20, Happiness: 3}},
			{ID: "gourmet_meal", Name: "Gourmet Meal", Category: "food", Price: 15, Rarity: model.RarityRare, Action: model.ActionFeed, Available: true,
				Effect: model.StatDelta{Hunger: 50, Happiness: 15}},
			{ID: "bubble_soap", Name: "Bubble Soap", Category: "hygiene", Price: 6, Rarity: model.RarityCommon, Action: model.ActionClean, Available: true,
				Effect: model.StatDelta{Cleanliness: 45, Happiness: 5}},
			{ID: "squeaky_ball", Name: "Squeaky Ball", Category: "toy", Price: 10, Rarity: model.RarityCommon, Action: model.ActionPlay, Available: true,
				Effect: model.StatDelta{Happiness: 35, Energy: -5}},
			{ID: "cozy_bed", Name: "Cozy Bed", Category: "furniture", Price: 30, Rarity: model.RarityRare, Action: model.ActionRest, Available: true,
				Effect: model.StatDelta{Energy: 70, Happiness: 15}},
			{ID: "bandage", Name: "Bandage", Category: "medicine", Price: 8, Rarity: model.RarityCommon, Action: model.ActionHeal, Available: true,
				Effect: model.StatDelta{Health: 20}},
			{ID: "medicine", Name: "Medicine", Category: "medicine", Price: 20, Rarity: model.RarityRare, Action: model.ActionHeal, Available: true,
				Effect: model.StatDelta{Health: 50, Happiness: -5}},
			{ID: "party_hat", Name: "Party Hat", Category: "accessory", Price: 25, Rarity: model.RarityEpic, Available: true},
			{ID: "golden_crown", Name: "Golden Crown", Category: "accessory", Price: 500, Rarity: model.RarityLegendary, Available: false},
		},
		MissionTemplates: []MissionTemplate{
			{ID: "feed_3", Type: model.ActionFeed, Title: "Feed your pet 3 times", Target: 3, RewardCoins: 10, RewardXP: 20},
			{ID: "clean_2", Type: model.ActionClean, Title: "Give your pet 2 baths", Target: 2, RewardCoins: 8, RewardXP: 15},
			{ID: "play_3", Type: model.ActionPlay, Title: "Play with your pet 3 times", Target: 3, RewardCoins: 10, RewardXP: 25},
			{ID: "rest_1", Type: model.ActionRest, Title: "Let your pet rest", Target: 1, RewardCoins: 5, RewardXP: 10},
			{ID: "purchase_1", Type: model.ActionPurchase, Title: "Buy something in the shop", Target: 1, RewardCoins: 5, RewardXP: 15},
			{ID: "daily_login_1", Type: model.ActionDailyLogin, Title: "Claim your daily reward", Target: 1, RewardCoins: 5, RewardXP: 10},
		},
		StreakRewards: []model.StreakReward{
			{Day: 1, Coins: 5, XP: 10},
			{Day: 2, Coins: 7, XP: 15},
			{Day: 3, Coins: 10, XP: 20},
			{Day: 4, Coins: 12, XP: 25},
			{Day: 5, Coins: 15, XP: 30},
			{Day: 6, Coins: 20, XP: 40},
			{Day: 7, Coins: 25, XP: 50, Label: "Weekly Bonus!"},
		},
		LevelUnlocks: []LevelUnlock{
			{Level: 2, Unlocks: []string{"Accessory: Bow"}},
			{Level: 3, Unlocks: []string{"Toy: Ball"}},
			{Level: 5, Unlocks: []string{"Background: Park"}},
			{Level: 10, Unlocks: []string{"Evolution: Teen"}},
			{Level: 15, Unlocks: []string{"Accessory: Hat"}},
			{Level: 20, Unlocks: []string{"Background: Beach"}},
			{Level: 25, Unlocks: []string{"Evolution: Adult"}},
			{Level: 50, Unlocks: []string{"Evolution: Elder"}},
		},
	}
	if err := t.Validate(); err != nil {
		panic(err)
	}
	return t
}
