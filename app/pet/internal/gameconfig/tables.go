package gameconfig

import (
	"fmt"
	"sort"

	"github.com/lk2023060901/petlink/app/pet/internal/model"
)

// MissionTemplate 每日任务模板
type MissionTemplate struct {
	ID          string           `mapstructure:"id"`
	Type        model.ActionType `mapstructure:"type"`
	Title       string           `mapstructure:"title"`
	Target      int              `mapstructure:"target"`
	RewardCoins int64            `mapstructure:"reward_coins"`
	RewardXP    int64            `mapstructure:"reward_xp"`
}

// LevelUnlock 等级解锁内容
type LevelUnlock struct {
	Level   int      `mapstructure:"level"`
	Unlocks []string `mapstructure:"unlocks"`
}

// Tables 游戏配置表
type Tables struct {
	ShopItems        []*model.ShopItem    `mapstructure:"shop_items"`
	MissionTemplates []MissionTemplate    `mapstructure:"mission_templates"`
	StreakRewards    []model.StreakReward `mapstructure:"streak_rewards"`
	LevelUnlocks     []LevelUnlock        `mapstructure:"level_unlocks"`

	unlockIndex map[int][]string
}

// UnlocksAt 指定等级的解锁列表
func (t *Tables) UnlocksAt(level int) []string {
	return t.unlockIndex[level]
}

// StreakReward 按连续天数取奖励，7 天循环
func (t *Tables) StreakReward(streak int) model.StreakReward {
	if streak < 1 {
		streak = 1
	}
	return t.StreakRewards[(streak-1)%len(t.StreakRewards)]
}

// Validate 校验并建立索引
func (t *Tables) Validate() error {
	seen := make(map[string]struct{}, len(t.ShopItems))
	for _, item := range t.ShopItems {
		if item == nil || item.ID == "" {
			return fmt.Errorf("shop item id is required")
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("duplicate shop item %s", item.ID)
		}
		seen[item.ID] = struct{}{}
		if item.Price < 0 {
			return fmt.Errorf("shop item %s has negative price", item.ID)
		}
		if item.Action != "" && !item.Action.IsCare() {
			return fmt.Errorf("shop item %s has invalid action %s", item.ID, item.Action)
		}
	}

	seen = make(map[string]struct{}, len(t.MissionTemplates))
	for _, tpl := range t.MissionTemplates {
		if tpl.ID == "" || !tpl.Type.IsValid() || tpl.Target < 1 {
			return fmt.Errorf("invalid mission template %q", tpl.ID)
		}
		if _, dup := seen[tpl.ID]; dup {
			return fmt.Errorf("duplicate mission template %s", tpl.ID)
		}
		seen[tpl.ID] = struct{}{}
	}

	if len(t.StreakRewards) != 7 {
		return fmt.Errorf("streak rewards must have 7 entries, got %d", len(t.StreakRewards))
	}
	sort.Slice(t.StreakRewards, func(i, j int) bool { return t.StreakRewards[i].Day < t.StreakRewards[j].Day })

	t.unlockIndex = make(map[int][]string, len(t.LevelUnlocks))
	for _, lu := range t.LevelUnlocks {
		if lu.Level < 1 {
			return fmt.Errorf("invalid unlock level %d", lu.Level)
		}
		t.unlockIndex[lu.Level] = append(t.unlockIndex[lu.Level], lu.Unlocks...)
	}
	return nil
}

// Catalog 商店目录索引
func (t *Tables) Catalog() map[string]*model.ShopItem {
	out := make(map[string]*model.ShopItem, len(t.ShopItems))
	for _, item := range t.ShopItems {
		out[item.ID] = item
	}
	return out
}
