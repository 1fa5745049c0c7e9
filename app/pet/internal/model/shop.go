package model

// Rarity 稀有度
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// ShopItem 商店目录条目，对应 shop_items 表
type ShopItem struct {
	ID        string     `json:"id" db:"id" mapstructure:"id"`
	Name      string     `json:"name" db:"name" mapstructure:"name"`
	Category  string     `json:"category" db:"category" mapstructure:"category"`
	Price     int64      `json:"price" db:"price" mapstructure:"price"`
	Rarity    Rarity     `json:"rarity" db:"rarity" mapstructure:"rarity"`
	Effect    StatDelta  `json:"effect" db:"effect" mapstructure:"effect"`
	Available bool       `json:"available" db:"available" mapstructure:"available"`

	// Action 可用于的照料动作，为空表示仅装饰
	Action ActionType `json:"action,omitempty" db:"action" mapstructure:"action"`
}

// ShopFilter 商店查询条件，零值表示不过滤
type ShopFilter struct {
	Category      string
	AvailableOnly bool
	IDs           []string
}

// Match 是否满足条件
func (f ShopFilter) Match(item *ShopItem) bool {
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if f.AvailableOnly && !item.Available {
		return false
	}
	if len(f.IDs) > 0 {
		for _, id := range f.IDs {
			if id == item.ID {
				return true
			}
		}
		return false
	}
	return true
}
