package model

import (
	"time"

	"github.com/google/uuid"
)

// TransactionKind 流水类型
type TransactionKind string

const (
	TxEarn     TransactionKind = "earn"
	TxSpend    TransactionKind = "spend"
	TxPurchase TransactionKind = "purchase"
)

// CurrencyCoins 唯一的货币
const CurrencyCoins = "coins"

// Transaction 货币流水，只追加，对应 transactions 表
type Transaction struct {
	ID           string          `json:"id" db:"id"`
	UserID       string          `json:"-" db:"user_id"`
	Kind         TransactionKind `json:"kind" db:"kind"`
	Amount       int64           `json:"amount" db:"amount"`
	Currency     string          `json:"currency" db:"currency"`
	Reason       string          `json:"reason" db:"reason"`
	BalanceAfter int64           `json:"balance_after" db:"balance_after"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// NewTransaction 创建流水
func NewTransaction(userID string, kind TransactionKind, amount int64, reason string, balanceAfter int64, now time.Time) *Transaction {
	return &Transaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		Kind:         kind,
		Amount:       amount,
		Currency:     CurrencyCoins,
		Reason:       reason,
		BalanceAfter: balanceAfter,
		CreatedAt:    now,
	}
}

// ActivityEntry 照料行为日志，只追加，对应 activities 表
type ActivityEntry struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"-" db:"user_id"`
	Action    ActionType `json:"action" db:"action"`
	ItemID    string     `json:"item_id,omitempty" db:"item_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// NewActivity 创建行为日志
func NewActivity(userID string, action ActionType, itemID string, now time.Time) *ActivityEntry {
	return &ActivityEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		ItemID:    itemID,
		CreatedAt: now,
	}
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank    int64  `json:"rank" db:"-"`
	UserID  string `json:"user_id" db:"user_id"`
	Name    string `json:"name,omitempty" db:"name"`
	TotalXP int64  `json:"total_xp" db:"total_xp"`
}
