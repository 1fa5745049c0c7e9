package model

// ActionType 行为类型，既是照料动作也是任务计数的事件类型
type ActionType string

const (
	ActionFeed       ActionType = "feed"
	ActionClean      ActionType = "clean"
	ActionPlay       ActionType = "play"
	ActionRest       ActionType = "rest"
	ActionHeal       ActionType = "heal"
	ActionPurchase   ActionType = "purchase"
	ActionDailyLogin ActionType = "daily_login"
)

// IsCare 是否为照料动作
func (a ActionType) IsCare() bool {
	switch a {
	case ActionFeed, ActionClean, ActionPlay, ActionRest, ActionHeal:
		return true
	}
	return false
}

// IsValid 是否为已知行为
func (a ActionType) IsValid() bool {
	return a.IsCare() || a == ActionPurchase || a == ActionDailyLogin
}
