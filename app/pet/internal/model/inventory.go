package model

import "time"

// InventoryItem 背包道具，数量归零时删除，对应 inventory_items 表
type InventoryItem struct {
	UserID    string    `json:"-" db:"user_id"`
	ItemID    string    `json:"item_id" db:"item_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Equipped  bool      `json:"equipped" db:"equipped"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Clone 拷贝
func (i *InventoryItem) Clone() *InventoryItem {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}
